package cache

import (
	"context"
	"fmt"

	"cf_mashup/internal/platform/config"
	"cf_mashup/internal/platform/logging"

	"github.com/redis/go-redis/v9"
)

// Connect opens a Redis client and pings it once.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}
	logging.Info().Str("addr", cfg.Addr).Msg("Connected to Redis")
	return rdb, nil
}

func Close(rdb *redis.Client) {
	if rdb == nil {
		return
	}
	if err := rdb.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing Redis connection")
		return
	}
	logging.Info().Msg("Redis connection closed")
}
