package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestRetrier(cfg RetryConfig) (*Retrier, *[]time.Duration) {
	r := NewRetrier(cfg)
	var slept []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return r, &slept
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.MaxAttempts != 2 {
		t.Errorf("MaxAttempts = %v, want 2", cfg.MaxAttempts)
	}
	if cfg.InitialInterval != 100*time.Millisecond {
		t.Errorf("InitialInterval = %v, want 100ms", cfg.InitialInterval)
	}
}

func TestRetrier_SucceedsAfterFailures(t *testing.T) {
	r, slept := newTestRetrier(RetryConfig{MaxAttempts: 3, InitialInterval: 10 * time.Millisecond, Multiplier: 2})
	attempts := 0

	err := r.Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errUpstream
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do() = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %v, want 3", attempts)
	}
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}
	if len(*slept) != len(want) || (*slept)[0] != want[0] || (*slept)[1] != want[1] {
		t.Errorf("backoff = %v, want %v", *slept, want)
	}
}

func TestRetrier_ExhaustsAttempts(t *testing.T) {
	r, _ := newTestRetrier(RetryConfig{MaxAttempts: 2})
	attempts := 0

	err := r.Do(context.Background(), func(context.Context) error {
		attempts++
		return errUpstream
	})

	if !errors.Is(err, errUpstream) {
		t.Errorf("Do() = %v, want upstream error", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %v, want 2", attempts)
	}
}

func TestRetrier_NonRetryableStopsImmediately(t *testing.T) {
	r, slept := newTestRetrier(RetryConfig{MaxAttempts: 5})
	errPermanent := errors.New("permanent")
	r.Retryable = func(err error) bool { return !errors.Is(err, errPermanent) }
	attempts := 0

	err := r.Do(context.Background(), func(context.Context) error {
		attempts++
		return errPermanent
	})

	if !errors.Is(err, errPermanent) {
		t.Errorf("Do() = %v, want permanent error", err)
	}
	if attempts != 1 || len(*slept) != 0 {
		t.Errorf("attempts = %v, sleeps = %v; want 1 attempt, no sleep", attempts, len(*slept))
	}
}

func TestRetrier_MaxIntervalCaps(t *testing.T) {
	r, slept := newTestRetrier(RetryConfig{MaxAttempts: 4, InitialInterval: 40 * time.Millisecond, MaxInterval: 50 * time.Millisecond, Multiplier: 3})

	_ = r.Do(context.Background(), func(context.Context) error { return errUpstream })

	want := []time.Duration{40 * time.Millisecond, 50 * time.Millisecond, 50 * time.Millisecond}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Errorf("sleep[%d] = %v, want %v", i, (*slept)[i], d)
		}
	}
}

func TestRetrier_CanceledContext(t *testing.T) {
	r := NewRetrier(RetryConfig{MaxAttempts: 3, InitialInterval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := r.Do(ctx, func(context.Context) error {
		attempts++
		cancel()
		return errUpstream
	})

	if !errors.Is(err, errUpstream) {
		t.Errorf("Do() = %v, want the last attempt error", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %v, want 1", attempts)
	}
}

func TestRetrier_ContextDoneBeforeFirstAttempt(t *testing.T) {
	r := NewRetrier(DefaultRetryConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Do(ctx, func(context.Context) error {
		t.Fatal("fn should not run")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() = %v, want context.Canceled", err)
	}
}

func TestRetryWithResult(t *testing.T) {
	r, _ := newTestRetrier(RetryConfig{MaxAttempts: 2})
	attempts := 0

	got, err := RetryWithResult(context.Background(), r, func(context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errUpstream
		}
		return "ACC-123", nil
	})

	if err != nil || got != "ACC-123" {
		t.Errorf("RetryWithResult() = %q, %v; want ACC-123, nil", got, err)
	}
}

func TestCalculateInterval(t *testing.T) {
	base := 100 * time.Millisecond
	if got := calculateInterval(base, 0); got != base {
		t.Errorf("calculateInterval(no jitter) = %v, want %v", got, base)
	}
	for i := 0; i < 100; i++ {
		got := calculateInterval(base, 0.5)
		if got < 50*time.Millisecond || got > 150*time.Millisecond {
			t.Fatalf("calculateInterval() = %v, out of [50ms, 150ms]", got)
		}
	}
}
