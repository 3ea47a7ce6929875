package di

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	httpctrl "github.com/julienreichel/oc-provider-backend/internal/controller/http"
	"github.com/julienreichel/oc-provider-backend/internal/domain/service"
	"github.com/julienreichel/oc-provider-backend/internal/middleware"
	"github.com/julienreichel/oc-provider-backend/internal/observability"
	"github.com/julienreichel/oc-provider-backend/internal/resilience"
)

// ControllerModule provides HTTP controller dependencies
var ControllerModule = fx.Module("controller",
	fx.Provide(
		provideDocumentController,
		provideSendController,
		provideHealthController,
	),
)

func provideDocumentController(documentService service.DocumentService) *httpctrl.DocumentController {
	return httpctrl.NewDocumentController(documentService)
}

func provideSendController(
	documentService service.DocumentService,
	limiter *resilience.KeyedLimiter,
	metrics *observability.MetricsProvider,
	logger *zap.Logger,
) *httpctrl.SendController {
	var guards []gin.HandlerFunc
	if limiter != nil {
		guards = append(guards, middleware.RateLimit(limiter, metrics, logger))
	}
	return httpctrl.NewSendController(documentService, guards...)
}

func provideHealthController(db httpctrl.Pinger, logger *zap.Logger) *httpctrl.HealthController {
	return httpctrl.NewHealthController(db, logger)
}
