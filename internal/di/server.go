package di

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/config"
	httpctrl "github.com/julienreichel/oc-provider-backend/internal/controller/http"
	"github.com/julienreichel/oc-provider-backend/internal/middleware"
	"github.com/julienreichel/oc-provider-backend/internal/observability"
)

// HTTPServerModule provides HTTP server dependencies
var HTTPServerModule = fx.Module("http_server",
	fx.Provide(provideGinEngine),
	fx.Provide(provideHTTPServer),
	fx.Invoke(registerHTTPRoutes),
	fx.Invoke(startHTTPServer),
)

func provideGinEngine(
	cfg *config.Config,
	metrics *observability.MetricsProvider,
	tracing *observability.TracingProvider,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.App.Environment != config.EnvDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger, "/health", "/ready", metrics.Path()))
	router.Use(middleware.CORS(cfg.CORS))
	if tracing.Enabled() {
		router.Use(observability.TracingMiddleware(cfg.Tracing.ServiceName))
	}
	if metrics.Enabled() {
		router.Use(observability.MetricsMiddleware(metrics))
	}

	return router
}

func provideHTTPServer(cfg *config.ServerConfig, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// Controllers is a struct that holds all HTTP controllers for fx to inject
type Controllers struct {
	fx.In

	Document *httpctrl.DocumentController
	Send     *httpctrl.SendController
	Health   *httpctrl.HealthController
}

func registerHTTPRoutes(router *gin.Engine, controllers Controllers, metrics *observability.MetricsProvider) {
	controllers.Health.RegisterRoutes(router)

	if metrics.Enabled() {
		router.GET(metrics.Path(), gin.WrapH(metrics.Handler()))
	}

	controllers.Document.RegisterRoutes(router)
	controllers.Send.RegisterRoutes(router)
}

func startHTTPServer(lc fx.Lifecycle, server *http.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Bind synchronously so a taken port fails startup
			listener, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", server.Addr, err)
			}
			logger.Info("Starting HTTP server", zap.String("address", listener.Addr().String()))
			go func() {
				if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server")
			return server.Shutdown(ctx)
		},
	})
}
