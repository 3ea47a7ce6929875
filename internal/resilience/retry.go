package resilience

import (
	"context"
	"math/rand"
	"time"
)

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxAttempts         int           `mapstructure:"max_attempts"`
	InitialInterval     time.Duration `mapstructure:"initial_interval"`
	MaxInterval         time.Duration `mapstructure:"max_interval"`
	Multiplier          float64       `mapstructure:"multiplier"`
	RandomizationFactor float64       `mapstructure:"randomization_factor"`
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:         2,
		InitialInterval:     100 * time.Millisecond,
		MaxInterval:         time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0.2,
	}
}

// Retrier runs an operation up to MaxAttempts times with jittered
// exponential backoff. Only errors accepted by Retryable are retried.
type Retrier struct {
	config    RetryConfig
	Retryable func(error) bool
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a retrier that retries every error
func NewRetrier(config RetryConfig) *Retrier {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.Multiplier < 1 {
		config.Multiplier = 1
	}
	return &Retrier{
		config:    config,
		Retryable: func(error) bool { return true },
		sleep:     sleepContext,
	}
}

// Do executes fn until it succeeds, returns a non-retryable error, the
// attempts run out or ctx is done.
func (r *Retrier) Do(ctx context.Context, fn func(context.Context) error) error {
	_, err := RetryWithResult(ctx, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// RetryWithResult is Do for operations that produce a value
func RetryWithResult[T any](ctx context.Context, r *Retrier, fn func(context.Context) (T, error)) (T, error) {
	var (
		result T
		err    error
	)
	interval := r.config.InitialInterval

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return result, err
			}
			return result, ctxErr
		}

		result, err = fn(ctx)
		if err == nil || !r.Retryable(err) || attempt == r.config.MaxAttempts {
			return result, err
		}

		if sleepErr := r.sleep(ctx, calculateInterval(interval, r.config.RandomizationFactor)); sleepErr != nil {
			return result, err
		}
		interval = time.Duration(float64(interval) * r.config.Multiplier)
		if r.config.MaxInterval > 0 && interval > r.config.MaxInterval {
			interval = r.config.MaxInterval
		}
	}
	return result, err
}

func calculateInterval(base time.Duration, factor float64) time.Duration {
	if factor <= 0 || base <= 0 {
		return base
	}
	delta := factor * float64(base)
	low := float64(base) - delta
	return time.Duration(low + rand.Float64()*(2*delta))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
