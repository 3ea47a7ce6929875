package gateway

import (
	"time"

	"github.com/julienreichel/oc-provider-backend/internal/resilience"
)

const (
	DriverHTTP  = "http"
	DriverLocal = "local"

	// DocumentsPath is resolved against the configured base URL
	DocumentsPath = "/v1/documents"

	DefaultTimeout = 5 * time.Second
)

// Config holds client backend gateway configuration
type Config struct {
	Driver         string                          `mapstructure:"driver"`
	BaseURL        string                          `mapstructure:"base_url"`
	Timeout        time.Duration                   `mapstructure:"timeout"`
	Retry          resilience.RetryConfig          `mapstructure:"retry"`
	CircuitBreaker resilience.CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// DefaultConfig returns the default gateway configuration
func DefaultConfig() Config {
	return Config{
		Driver:         DriverHTTP,
		Timeout:        DefaultTimeout,
		Retry:          resilience.DefaultRetryConfig(),
		CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
	}
}
