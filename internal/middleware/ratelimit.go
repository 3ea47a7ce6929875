package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/dto/response"
	"github.com/julienreichel/oc-provider-backend/internal/resilience"
	apperrors "github.com/julienreichel/oc-provider-backend/pkg/errors"
)

// RejectionRecorder is notified of every rate-limited request
type RejectionRecorder interface {
	RecordRateLimited(ctx context.Context, route string)
}

// RateLimit throttles requests per client IP with a token bucket. Rejected
// requests get 429 with a Retry-After header.
func RateLimit(limiter *resilience.KeyedLimiter, recorder RejectionRecorder, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if limiter.Allow(key) {
			c.Next()
			return
		}

		retryAfter := int(math.Ceil(limiter.RetryAfter(key).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		if recorder != nil {
			recorder.RecordRateLimited(c.Request.Context(), c.FullPath())
		}
		logger.Warn("rate limit exceeded",
			zap.String("ip", key),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", GetRequestID(c)),
		)

		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, response.NewError(
			http.StatusTooManyRequests,
			apperrors.CodeTooManyRequests,
			apperrors.ErrTooManyRequests.Message,
		))
	}
}
