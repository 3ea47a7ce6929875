package di

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/observability"
)

// ObservabilityModule provides metrics and tracing
var ObservabilityModule = fx.Module("observability",
	fx.Provide(
		provideMetricsProvider,
		provideTracingProvider,
	),
)

func provideMetricsProvider(lc fx.Lifecycle, cfg *observability.MetricsConfig, logger *zap.Logger) (*observability.MetricsProvider, error) {
	mp, err := observability.NewMetricsProvider(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return mp.Shutdown(ctx)
		},
	})
	return mp, nil
}

func provideTracingProvider(lc fx.Lifecycle, cfg *observability.TracingConfig, logger *zap.Logger) (*observability.TracingProvider, error) {
	tp, err := observability.NewTracingProvider(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Flushing traces")
			return tp.Shutdown(ctx)
		},
	})
	return tp, nil
}
