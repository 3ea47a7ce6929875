package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/dto/response"
)

const (
	dbConnected        = "connected"
	dbNotConfigured    = "not-configured"
	dbConnectionFailed = "connection-failed"

	readinessTimeout = 2 * time.Second
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController serves liveness and readiness probes. A nil pinger
// means the service runs without an external database.
type HealthController struct {
	db     Pinger
	logger *zap.Logger
}

// NewHealthController creates a new HealthController instance
func NewHealthController(db Pinger, logger *zap.Logger) *HealthController {
	return &HealthController{db: db, logger: logger}
}

// RegisterRoutes registers the probe routes
func (c *HealthController) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", c.Health)
	router.GET("/ready", c.Ready)
}

// Health always answers ok while the process is serving
func (c *HealthController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.HealthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

// Ready checks database connectivity
func (c *HealthController) Ready(ctx *gin.Context) {
	if c.db == nil {
		ctx.JSON(http.StatusOK, response.ReadinessResponse{
			Status:    "ready",
			Database:  dbNotConfigured,
			Timestamp: time.Now().UTC(),
		})
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), readinessTimeout)
	defer cancel()

	if err := c.db.Ping(pingCtx); err != nil {
		c.logger.Warn("Readiness check failed", zap.Error(err))
		ctx.JSON(http.StatusServiceUnavailable, response.ReadinessResponse{
			Status:    "not-ready",
			Database:  dbConnectionFailed,
			Message:   "Database connection failed",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	ctx.JSON(http.StatusOK, response.ReadinessResponse{
		Status:    "ready",
		Database:  dbConnected,
		Timestamp: time.Now().UTC(),
	})
}
