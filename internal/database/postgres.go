package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ampvending/amp-backend/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Mode decides what an unreachable backend does at startup.
type Mode int

const (
	// Required fails startup when the backend cannot be reached.
	Required Mode = iota
	// Optional logs the failure and returns a client that keeps retrying
	// lazily. The server uses it so the public catalog can fall back.
	Optional
)

const pingTimeout = 5 * time.Second

// NewPostgresPool creates a PostgreSQL connection pool and pings it.
func NewPostgresPool(ctx context.Context, cfg *config.Config, mode Mode, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxDBConns
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		if mode == Required {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		log.Warn().Err(err).Msg("PostgreSQL unreachable, starting degraded")
		return pool, nil
	}

	log.Info().
		Int32("max_conns", cfg.MaxDBConns).
		Str("host", poolCfg.ConnConfig.Host).
		Str("database", poolCfg.ConnConfig.Database).
		Msg("PostgreSQL connected")

	return pool, nil
}
