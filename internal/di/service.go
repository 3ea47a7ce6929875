package di

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/domain/repository"
	"github.com/julienreichel/oc-provider-backend/internal/domain/service"
	serviceimpl "github.com/julienreichel/oc-provider-backend/internal/domain/service/impl"
	"github.com/julienreichel/oc-provider-backend/internal/observability"
	"github.com/julienreichel/oc-provider-backend/internal/platform"
)

// ServiceModule provides service layer dependencies
var ServiceModule = fx.Module("service",
	fx.Provide(
		provideClock,
		provideIDGenerator,
		provideDocumentService,
	),
)

func provideClock() service.Clock {
	return platform.NewSystemClock()
}

func provideIDGenerator() service.IDGenerator {
	return platform.NewUUIDGenerator()
}

func provideDocumentService(
	repo repository.DocumentRepository,
	gw service.ClientGateway,
	clock service.Clock,
	ids service.IDGenerator,
	metrics *observability.MetricsProvider,
	logger *zap.Logger,
) service.DocumentService {
	return serviceimpl.NewDocumentService(repo, gw, clock, ids, metrics, logger)
}
