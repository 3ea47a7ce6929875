package di

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/domain/service"
	"github.com/julienreichel/oc-provider-backend/internal/gateway"
	"github.com/julienreichel/oc-provider-backend/internal/observability"
	"github.com/julienreichel/oc-provider-backend/internal/platform"
)

// GatewayModule provides the client backend gateway
var GatewayModule = fx.Module("gateway",
	fx.Provide(provideClientGateway),
)

func provideClientGateway(cfg *gateway.Config, metrics *observability.MetricsProvider, logger *zap.Logger) (service.ClientGateway, error) {
	switch cfg.Driver {
	case gateway.DriverLocal:
		logger.Warn("Using the local client gateway; documents are not delivered to a client backend")
		return gateway.NewLocalGateway(platform.NewAccessCodeGenerator(), logger), nil
	case gateway.DriverHTTP, "":
		gw := gateway.NewHTTPClientGateway(*cfg, metrics, logger)
		if gw.Endpoint() == "" {
			logger.Warn("Client backend URL is not configured; sending documents will fail")
		}
		return gw, nil
	default:
		return nil, fmt.Errorf("unsupported gateway driver: %s", cfg.Driver)
	}
}
