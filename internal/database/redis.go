package database

import (
	"context"
	"fmt"

	"github.com/ampvending/amp-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewRedisClient creates a Redis client for the activity queue and pings it.
func NewRedisClient(ctx context.Context, cfg *config.Config, mode Mode, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		if mode == Required {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		log.Warn().Err(err).Msg("Redis unreachable, activity entries will be written directly")
		return rdb, nil
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("Redis connected")

	return rdb, nil
}
