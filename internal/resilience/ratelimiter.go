package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// RateLimiterConfig holds rate limiter configuration
type RateLimiterConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Rate      int           `mapstructure:"rate"`       // requests per period
	Period    time.Duration `mapstructure:"period"`     // refill period
	BurstSize int           `mapstructure:"burst_size"` // bucket capacity
	IdleTTL   time.Duration `mapstructure:"idle_ttl"`   // drop per-key buckets unused this long
}

// DefaultRateLimiterConfig returns default configuration
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Enabled:   true,
		Rate:      10,
		Period:    time.Second,
		BurstSize: 20,
		IdleTTL:   10 * time.Minute,
	}
}

// TokenBucketLimiter implements token bucket rate limiting
type TokenBucketLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per nanosecond
	lastRefill time.Time
	now        func() time.Time
}

// NewTokenBucketLimiter creates a full bucket
func NewTokenBucketLimiter(config RateLimiterConfig) *TokenBucketLimiter {
	return newTokenBucket(config, time.Now)
}

func newTokenBucket(config RateLimiterConfig, now func() time.Time) *TokenBucketLimiter {
	burst := config.BurstSize
	if burst < 1 {
		burst = 1
	}
	period := config.Period
	if period <= 0 {
		period = time.Second
	}
	return &TokenBucketLimiter{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: float64(config.Rate) / float64(period.Nanoseconds()),
		lastRefill: now(),
		now:        now,
	}
}

// Allow takes one token if available
func (l *TokenBucketLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// RetryAfter estimates how long until a token is available
func (l *TokenBucketLimiter) RetryAfter() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens >= 1 || l.refillRate == 0 {
		return 0
	}
	return time.Duration((1 - l.tokens) / l.refillRate)
}

// refill must be called with mu held
func (l *TokenBucketLimiter) refill() {
	now := l.now()
	elapsed := now.Sub(l.lastRefill)
	l.lastRefill = now

	l.tokens += float64(elapsed.Nanoseconds()) * l.refillRate
	if l.tokens > l.maxTokens {
		l.tokens = l.maxTokens
	}
}

// KeyedLimiter keeps one token bucket per key (typically the client IP)
type KeyedLimiter struct {
	config  RateLimiterConfig
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*keyedBucket
	sweeps  int
}

type keyedBucket struct {
	limiter  *TokenBucketLimiter
	lastSeen time.Time
}

// NewKeyedLimiter creates an empty keyed limiter
func NewKeyedLimiter(config RateLimiterConfig) *KeyedLimiter {
	return &KeyedLimiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*keyedBucket),
	}
}

// Allow takes a token from key's bucket
func (k *KeyedLimiter) Allow(key string) bool {
	return k.bucket(key).Allow()
}

// RetryAfter reports the wait for key's next token
func (k *KeyedLimiter) RetryAfter(key string) time.Duration {
	return k.bucket(key).RetryAfter()
}

// Len returns the number of tracked keys
func (k *KeyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}

func (k *KeyedLimiter) bucket(key string) *TokenBucketLimiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	k.sweeps++
	if k.sweeps >= 1024 {
		k.evictIdle(now)
		k.sweeps = 0
	}

	b, ok := k.buckets[key]
	if !ok {
		b = &keyedBucket{limiter: newTokenBucket(k.config, k.now)}
		k.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// evictIdle must be called with mu held
func (k *KeyedLimiter) evictIdle(now time.Time) {
	if k.config.IdleTTL <= 0 {
		return
	}
	for key, b := range k.buckets {
		if now.Sub(b.lastSeen) > k.config.IdleTTL {
			delete(k.buckets, key)
		}
	}
}
