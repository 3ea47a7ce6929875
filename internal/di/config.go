package di

import (
	"go.uber.org/fx"

	"github.com/julienreichel/oc-provider-backend/internal/config"
	"github.com/julienreichel/oc-provider-backend/internal/gateway"
	"github.com/julienreichel/oc-provider-backend/internal/observability"
)

// ConfigModule splits the supplied configuration into its sections
var ConfigModule = fx.Module("config",
	fx.Provide(
		provideAppConfig,
		provideServerConfig,
		provideLogConfig,
		provideDatabaseConfig,
		provideMongoDBConfig,
		provideRedisConfig,
		provideGatewayConfig,
		provideMetricsConfig,
		provideTracingConfig,
	),
)

func provideAppConfig(cfg *config.Config) *config.AppConfig {
	return &cfg.App
}

func provideServerConfig(cfg *config.Config) *config.ServerConfig {
	return &cfg.Server
}

func provideLogConfig(cfg *config.Config) *config.LogConfig {
	return &cfg.Log
}

func provideDatabaseConfig(cfg *config.Config) *config.DatabaseConfig {
	return &cfg.Database
}

func provideMongoDBConfig(cfg *config.Config) *config.MongoDBConfig {
	return &cfg.MongoDB
}

func provideRedisConfig(cfg *config.Config) *config.RedisConfig {
	return &cfg.Redis
}

func provideGatewayConfig(cfg *config.Config) *gateway.Config {
	return &cfg.Gateway
}

func provideMetricsConfig(cfg *config.Config) *observability.MetricsConfig {
	return &cfg.Metrics
}

func provideTracingConfig(cfg *config.Config) *observability.TracingConfig {
	return &cfg.Tracing
}
