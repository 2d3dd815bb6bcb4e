package infrastructure

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ozo-backend/internal/config"
	redisclient "ozo-backend/pkg/redis"
)

// NewRedisClient creates a Redis client when the user cache is enabled.
// It returns nil, nil when REDIS_ENABLED is false.
func NewRedisClient(ctx context.Context, cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.Redis.Enabled {
		l.Info("redis cache disabled")
		return nil, nil
	}

	redisConfig := redisclient.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}

	rdb, err := redisclient.NewClient(ctx, redisConfig, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
