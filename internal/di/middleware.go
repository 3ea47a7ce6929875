package di

import (
	"go.uber.org/fx"

	"github.com/julienreichel/oc-provider-backend/internal/config"
	"github.com/julienreichel/oc-provider-backend/internal/resilience"
)

// MiddlewareModule provides middleware dependencies
var MiddlewareModule = fx.Module("middleware",
	fx.Provide(provideSendRateLimiter),
)

// provideSendRateLimiter returns nil when rate limiting is disabled
func provideSendRateLimiter(cfg *config.Config) *resilience.KeyedLimiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return resilience.NewKeyedLimiter(cfg.RateLimit)
}
