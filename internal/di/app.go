package di

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/config"
)

// AppModule aggregates all application modules. The loaded *config.Config
// must be supplied by the caller.
var AppModule = fx.Options(
	ConfigModule,
	LoggerModule,
	ObservabilityModule,
	DatabaseModule,
	CacheModule,
	DAOModule,        // DAO layer (between Database and Repository)
	RepositoryModule, // Repository layer (delegates to DAO)
	GatewayModule,
	ServiceModule,
	MiddlewareModule,
	ControllerModule,
	HTTPServerModule,
	fx.Invoke(autoMigrate),
)

// MigrationModule is the subset needed to prepare the database schema
var MigrationModule = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
)

// PrintBanner prints the application startup banner
func PrintBanner(cfg *config.Config, logger *zap.Logger) {
	logger.Info("===========================================")
	logger.Info("        OC Provider Backend                ")
	logger.Info("===========================================")
	logger.Info("Application Info",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)
	logger.Info("Runtime Config",
		zap.String("database", cfg.Database.Driver),
		zap.Bool("cache", cfg.Redis.Enabled),
		zap.String("gateway", cfg.Gateway.Driver),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("tracing", cfg.Tracing.Enabled),
	)
	logger.Info("===========================================")
}
