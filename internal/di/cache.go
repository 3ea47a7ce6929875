package di

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/config"
)

// CacheModule provides the Redis client backing the document cache
var CacheModule = fx.Module("cache",
	fx.Provide(provideRedisClient),
)

// provideRedisClient returns nil when the cache is disabled. An unreachable
// Redis at startup is logged; the cache falls through to the database.
func provideRedisClient(lc fx.Lifecycle, cfg *config.RedisConfig, logger *zap.Logger) redis.UniversalClient {
	if !cfg.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("Redis unreachable, document cache degraded", zap.String("addr", cfg.Addr()), zap.Error(err))
				return nil
			}
			logger.Info("Connected to Redis", zap.String("addr", cfg.Addr()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing Redis connection")
			return client.Close()
		},
	})
	return client
}
