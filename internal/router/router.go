package router

import (
	"time"

	"github.com/ampvending/amp-backend/internal/config"
	"github.com/ampvending/amp-backend/internal/handler"
	"github.com/ampvending/amp-backend/internal/metrics"
	"github.com/ampvending/amp-backend/internal/middleware"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// uploadsMaxAge is the Cache-Control max-age for uploaded images. Upload
// names are random UUIDs, so a file never changes under its URL.
const uploadsMaxAge = 31536000

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Machine      *handler.MachineHandler
	Product      *handler.ProductHandler
	Contact      *handler.ContactHandler
	BusinessInfo *handler.BusinessInfoHandler
	SEO          *handler.SEOHandler
	Email        *handler.EmailHandler
	Media        *handler.MediaHandler
	Dashboard    *handler.DashboardHandler
	Catalog      *handler.CatalogHandler
	System       *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	cfg *config.Config,
	tokens middleware.TokenVerifier,
	m *metrics.Metrics,
	log zerolog.Logger,
	handlers *Handlers,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// The dashboard sends cookies, so origins must be listed explicitly
	// whenever credentials are allowed.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(
		response.RequestIDMiddleware(),
		middleware.RequestLogger(log),
		middleware.Instrument(m),
	)

	brotliConfig := middleware.DefaultBrotliConfig
	brotliConfig.Skipper = middleware.SkipPrefixes("/metrics", "/uploads", "/api/v1/admin/system/metrics")
	router.Use(middleware.BrotliWithConfig(brotliConfig))

	// Serve uploaded media files statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(uploadsMaxAge))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute)
	formLimiter := middleware.NewRateLimiter(cfg.PublicFormRatePerMinute)

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/machines", handlers.Catalog.ListMachines)
		publicAPI.GET("/machines/:slug", handlers.Catalog.GetMachine)
		publicAPI.GET("/products", handlers.Catalog.ListProducts)
		publicAPI.GET("/business-info", handlers.BusinessInfo.GetPublicBusinessInfo)
		publicAPI.GET("/seo", handlers.SEO.GetPublicSetting)

		publicAPI.POST("/contact", formLimiter.Middleware(), handlers.Contact.SubmitContact)
		publicAPI.POST("/custom-request", formLimiter.Middleware(), handlers.Contact.SubmitCustomRequest)
	}

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(middleware.NoStore())
	{
		auth.POST("/login", loginLimiter.Middleware(), handlers.Auth.Login)
		auth.POST("/logout", handlers.Auth.Logout)
		auth.POST("/refresh", loginLimiter.Middleware(), handlers.Auth.Refresh)
		auth.GET("/verify", middleware.RequireAdminSession(tokens), handlers.Auth.Verify)
		auth.GET("/google", loginLimiter.Middleware(), handlers.Auth.GoogleStart)
		auth.GET("/google/callback", handlers.Auth.GoogleCallback)
	}

	// ─── 2. Admin Group (Session + Capabilities) ───────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.NoStore(), middleware.RequireAdminSession(tokens))
	{
		adminAPI.GET("/dashboard",
			middleware.RequireCapability(model.CapabilityDashboardRead),
			handlers.Dashboard.GetDashboardData,
		)
		adminAPI.GET("/activity",
			middleware.RequireCapability(model.CapabilityActivityRead),
			handlers.Dashboard.ListActivity,
		)
		adminAPI.GET("/system/metrics",
			middleware.RequireCapability(model.CapabilityActivityRead),
			handlers.System.SystemMetricsSSE,
		)

		// Media upload
		adminAPI.POST("/media/upload",
			middleware.RequireCapability(model.CapabilityMediaUpload),
			handlers.Media.UploadMedia,
		)

		// Machine management
		machines := adminAPI.Group("/machines")
		{
			read := middleware.RequireCapability(model.CapabilityMachinesRead)
			write := middleware.RequireCapability(model.CapabilityMachinesWrite)

			machines.GET("", read, handlers.Machine.ListMachines)
			machines.POST("", write, handlers.Machine.CreateMachine)
			machines.GET("/:id", read, handlers.Machine.GetMachine)
			machines.PATCH("/:id", write, handlers.Machine.UpdateMachine)
			machines.DELETE("/:id", write, handlers.Machine.DeleteMachine)

			machines.GET("/:id/images", read, handlers.Machine.ListImages)
			machines.POST("/:id/images",
				write,
				middleware.RequireCapability(model.CapabilityMediaUpload),
				handlers.Machine.AddImage,
			)
			machines.DELETE("/:id/images/:image_id", write, handlers.Machine.DeleteImage)
			machines.PUT("/:id/images/:image_id/primary", write, handlers.Machine.SetPrimaryImage)
		}

		// Product management
		products := adminAPI.Group("/products")
		{
			read := middleware.RequireCapability(model.CapabilityProductsRead)
			write := middleware.RequireCapability(model.CapabilityProductsWrite)

			products.GET("", read, handlers.Product.ListProducts)
			products.POST("", write, handlers.Product.CreateProduct)
			products.GET("/:id", read, handlers.Product.GetProduct)
			products.PATCH("/:id", write, handlers.Product.UpdateProduct)
			products.DELETE("/:id", write, handlers.Product.DeleteProduct)
		}

		// Lead management
		contacts := adminAPI.Group("/contacts")
		{
			read := middleware.RequireCapability(model.CapabilityContactsRead)
			write := middleware.RequireCapability(model.CapabilityContactsWrite)

			contacts.GET("", read, handlers.Contact.ListContacts)
			contacts.GET("/:id", read, handlers.Contact.GetContact)
			contacts.PATCH("/:id", write, handlers.Contact.UpdateContact)
			contacts.DELETE("/:id", write, handlers.Contact.DeleteContact)
		}

		// Business info
		adminAPI.GET("/business-info",
			middleware.RequireCapability(model.CapabilityDashboardRead),
			handlers.BusinessInfo.GetBusinessInfo,
		)
		adminAPI.PUT("/business-info",
			middleware.RequireCapability(model.CapabilityBusinessWrite),
			handlers.BusinessInfo.UpdateBusinessInfo,
		)

		// SEO settings
		seo := adminAPI.Group("/seo")
		{
			read := middleware.RequireCapability(model.CapabilitySEORead)
			write := middleware.RequireCapability(model.CapabilitySEOWrite)

			seo.GET("", read, handlers.SEO.ListSettings)
			seo.POST("", write, handlers.SEO.CreateSetting)
			seo.GET("/:id", read, handlers.SEO.GetSetting)
			seo.PATCH("/:id", write, handlers.SEO.UpdateSetting)
			seo.DELETE("/:id", write, handlers.SEO.DeleteSetting)
		}

		// Email
		emails := adminAPI.Group("/emails")
		{
			emails.POST("/send",
				middleware.RequireCapability(model.CapabilityEmailSend),
				handlers.Email.SendEmail,
			)
			emails.GET("/logs",
				middleware.RequireAnyCapability(model.CapabilityEmailSend, model.CapabilityContactsRead),
				handlers.Email.ListEmailLogs,
			)
		}
	}

	return router
}
