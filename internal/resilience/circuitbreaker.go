package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	FailureThreshold    int           `mapstructure:"failure_threshold"`
	SuccessThreshold    int           `mapstructure:"success_threshold"`
	OpenTimeout         time.Duration `mapstructure:"open_timeout"`
	MaxHalfOpenRequests int           `mapstructure:"max_half_open_requests"`
}

// DefaultCircuitBreakerConfig returns default configuration
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:             true,
		FailureThreshold:    5,
		SuccessThreshold:    2,
		OpenTimeout:         30 * time.Second,
		MaxHalfOpenRequests: 1,
	}
}

// CircuitBreakerStats is a point-in-time snapshot of breaker counters
type CircuitBreakerStats struct {
	State            State
	TotalCalls       int64
	SuccessfulCalls  int64
	FailedCalls      int64
	RejectedCalls    int64
	StateTransitions int64
}

// CircuitBreaker stops calling a failing dependency for OpenTimeout after
// FailureThreshold consecutive failures, then lets a limited number of probe
// calls through before closing again.
type CircuitBreaker struct {
	name   string
	config CircuitBreakerConfig
	logger *zap.Logger

	// IsFailure decides whether an error counts against the breaker.
	// Errors it rejects are passed through without affecting state.
	IsFailure func(error) bool
	// OnStateChange is invoked with the lock held; it must not call back
	// into the breaker.
	OnStateChange func(name string, from, to State)

	now func() time.Time

	mu               sync.Mutex
	state            State
	failures         int
	successes        int
	halfOpenRequests int
	openedAt         time.Time
	stats            CircuitBreakerStats
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(name string, config CircuitBreakerConfig, logger *zap.Logger) *CircuitBreaker {
	if config.FailureThreshold < 1 {
		config.FailureThreshold = 1
	}
	if config.SuccessThreshold < 1 {
		config.SuccessThreshold = 1
	}
	if config.MaxHalfOpenRequests < 1 {
		config.MaxHalfOpenRequests = 1
	}
	return &CircuitBreaker{
		name:      name,
		config:    config,
		logger:    logger.With(zap.String("circuit_breaker", name)),
		IsFailure: func(err error) bool { return err != nil },
		now:       time.Now,
		state:     StateClosed,
	}
}

// Execute runs fn unless the breaker rejects the call
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.allow(); err != nil {
		return err
	}
	err := fn(ctx)
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.config.OpenTimeout {
			cb.stats.RejectedCalls++
			return ErrCircuitOpen
		}
		cb.transitionTo(StateHalfOpen)
		cb.halfOpenRequests = 1
	case StateHalfOpen:
		if cb.halfOpenRequests >= cb.config.MaxHalfOpenRequests {
			cb.stats.RejectedCalls++
			return ErrTooManyRequests
		}
		cb.halfOpenRequests++
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.stats.TotalCalls++
	failed := err != nil && cb.IsFailure(err)
	if failed {
		cb.stats.FailedCalls++
	} else {
		cb.stats.SuccessfulCalls++
	}

	switch cb.state {
	case StateClosed:
		if !failed {
			cb.failures = 0
			return
		}
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		if failed {
			cb.transitionTo(StateOpen)
			return
		}
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.transitionTo(StateClosed)
		}
	}
}

// transitionTo must be called with mu held
func (cb *CircuitBreaker) transitionTo(next State) {
	if cb.state == next {
		return
	}
	prev := cb.state
	cb.state = next
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenRequests = 0
	if next == StateOpen {
		cb.openedAt = cb.now()
	}
	cb.stats.StateTransitions++

	cb.logger.Info("Circuit breaker state transition",
		zap.String("from", prev.String()),
		zap.String("to", next.String()),
	)
	if cb.OnStateChange != nil {
		cb.OnStateChange(cb.name, prev, next)
	}
}

// Name returns the breaker name
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State returns the current state
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns a snapshot of the breaker counters
func (cb *CircuitBreaker) Stats() CircuitBreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	s := cb.stats
	s.State = cb.state
	return s
}

// Reset closes the breaker and clears its counters
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transitionTo(StateClosed)
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenRequests = 0
}
