package di

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/config"
	"github.com/julienreichel/oc-provider-backend/pkg/logger"
)

// LoggerModule provides logging dependencies
var LoggerModule = fx.Module("logger",
	fx.Provide(provideLogger),
	fx.Invoke(watchLogLevel),
)

func provideLogger(app *config.AppConfig, cfg *config.LogConfig) (*zap.Logger, zap.AtomicLevel, error) {
	development := app.Environment != config.EnvProduction
	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "json"
		if development {
			encoding = "console"
		}
	}
	return logger.NewWithLevel(logger.Config{
		Level:       cfg.Level,
		Development: development,
		Encoding:    encoding,
	})
}

// watchLogLevel applies log.level changes from the config file without a
// restart.
func watchLogLevel(lc fx.Lifecycle, cfg *config.Config, level zap.AtomicLevel, log *zap.Logger) error {
	if cfg.File == "" {
		return nil
	}

	watcher, err := config.NewWatcher(cfg.File, log)
	if err != nil {
		return err
	}
	watcher.OnChange(func(next *config.Config) {
		newLevel := logger.ParseLevel(next.Log.Level)
		if newLevel != level.Level() {
			log.Info("Log level changed",
				zap.Stringer("from", level.Level()),
				zap.Stringer("to", newLevel),
			)
			level.SetLevel(newLevel)
		}
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := watcher.Start(); err != nil {
				log.Warn("Config file watching disabled", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return watcher.Close()
		},
	})
	return nil
}
