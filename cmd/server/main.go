package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ampvending/amp-backend/internal/activity"
	"github.com/ampvending/amp-backend/internal/auth"
	"github.com/ampvending/amp-backend/internal/catalog"
	"github.com/ampvending/amp-backend/internal/config"
	"github.com/ampvending/amp-backend/internal/database"
	"github.com/ampvending/amp-backend/internal/handler"
	"github.com/ampvending/amp-backend/internal/logger"
	"github.com/ampvending/amp-backend/internal/mailer"
	"github.com/ampvending/amp-backend/internal/metrics"
	"github.com/ampvending/amp-backend/internal/oauth"
	"github.com/ampvending/amp-backend/internal/repository"
	"github.com/ampvending/amp-backend/internal/router"
	"github.com/ampvending/amp-backend/internal/service"
	"github.com/ampvending/amp-backend/internal/validator"
	"github.com/ampvending/amp-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Bool("google_oauth", cfg.GoogleEnabled()).
		Msg("Starting AMP Vending admin backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	// The public catalog has a static fallback, so the server starts even
	// when the database is unreachable.
	pool, err := database.NewPostgresPool(ctx, cfg, database.Optional, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, database.Optional, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure Redis")
	}
	defer rdb.Close()

	m := metrics.New()

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create token issuer")
	}
	passwords := auth.NewPasswordVerifier(cfg.BcryptCost)

	static, err := catalog.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load static catalog")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	adminRepo := repository.NewAdminRepository(pool)
	machineRepo := repository.NewMachineRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	emailLogRepo := repository.NewEmailLogRepository(pool)
	businessInfoRepo := repository.NewBusinessInfoRepository(pool)
	seoRepo := repository.NewSEORepository(pool)
	activityRepo := repository.NewActivityLogRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Activity Log Pipeline ─────────────────────────────────────────
	queue := activity.NewRedisQueue(rdb, config.WorkerKey.PersistActivityQueue)
	recorder := activity.NewRecorder(queue, activityRepo, m, log)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, adminRepo, passwords, tokens, m, log)
	emailService := service.NewEmailService(mailer.New(cfg.ResendAPIKey, cfg.EmailFrom), emailLogRepo, contactRepo, recorder, m, log)
	machineService := service.NewMachineService(machineRepo, recorder, log)
	productService := service.NewProductService(productRepo, recorder, log)
	contactService := service.NewContactService(contactRepo, emailService, cfg.NotifyEmailTo, recorder, log)
	businessInfoService := service.NewBusinessInfoService(businessInfoRepo, recorder, log)
	seoService := service.NewSEOService(seoRepo, recorder, log)
	mediaService := service.NewMediaService(cfg, recorder, log)
	dashboardService := service.NewDashboardService(dashboardRepo)
	activityService := service.NewActivityService(activityRepo)
	catalogService := service.NewCatalogService(machineRepo, productRepo, static, m, log)

	// ─── Google Sign-In ────────────────────────────────────────────────
	// Without credentials (or with discovery down) the bridge stays disabled
	// and /auth/google redirects back with oauth_init_failed.
	var provider oauth.Provider
	if cfg.GoogleEnabled() {
		discoveryCtx, discoveryCancel := context.WithTimeout(ctx, 10*time.Second)
		google, err := oauth.NewGoogleProvider(discoveryCtx, oauth.GoogleConfig{
			IssuerURL:    cfg.GoogleIssuerURL,
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
		discoveryCancel()
		if err != nil {
			log.Error().Err(err).Msg("Google sign-in disabled")
		} else {
			provider = google
		}
	}
	bridge := oauth.NewBridge(provider, adminRepo, tokens, cfg.OAuthAccessTTL, cfg.OAuthRefreshTTL, m, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, bridge, cfg),
		Machine:      handler.NewMachineHandler(machineService, mediaService),
		Product:      handler.NewProductHandler(productService),
		Contact:      handler.NewContactHandler(contactService),
		BusinessInfo: handler.NewBusinessInfoHandler(businessInfoService),
		SEO:          handler.NewSEOHandler(seoService),
		Email:        handler.NewEmailHandler(emailService),
		Media:        handler.NewMediaHandler(mediaService),
		Dashboard:    handler.NewDashboardHandler(dashboardService, activityService),
		Catalog:      handler.NewCatalogHandler(catalogService),
		System: handler.NewSystemHandler(
			pool,
			handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
			pool,
			queue,
			log,
		),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	activityWorker := worker.NewActivityLogWorker(queue, activityRepo, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		activityWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(cfg, tokens, m, log, handlers)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the activity worker once the queue is drained.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
