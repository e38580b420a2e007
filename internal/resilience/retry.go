// Package resilience provides the retry combinator used around external
// calls (model rewrites, scrape fetches, CRM pushes).
package resilience

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls retry behavior.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts (including the first try).
	// A value of 1 means no retries. Default: 3.
	MaxAttempts int

	// InitialBackoff is the base delay unit. Default: 500ms.
	InitialBackoff time.Duration

	// MaxBackoff caps the backoff duration. Default: 30s.
	MaxBackoff time.Duration

	// Multiplier scales the backoff after each attempt when Linear is
	// false. Default: 2.0.
	Multiplier float64

	// Linear switches the schedule to attempt × InitialBackoff instead of
	// the exponential default.
	Linear bool

	// ShouldRetry optionally overrides the default transient-error check.
	// If nil, IsTransient is used.
	ShouldRetry func(err error) bool

	// OnRetry is called before each retry sleep with attempt number and error.
	OnRetry func(attempt int, err error)
}

// LinearRetryConfig returns a linear-backoff configuration: retries wait
// 1×unit, then 2×unit, and so on. Every error is retried, including
// parse failures; only context cancellation stops early.
func LinearRetryConfig(attempts int, unit time.Duration) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: unit,
		MaxBackoff:     time.Duration(attempts) * unit,
		Linear:         true,
		ShouldRetry:    func(error) bool { return true },
	}
}

// DefaultRetryConfig returns the exponential configuration used for API calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
	}
}

// Do executes fn with retry logic according to cfg. Context cancellation
// stops retries immediately; the last error is returned after exhaustion.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal executes fn returning a value with retry logic. Same semantics as
// Do but preserves the return value from the successful call.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = applyDefaults(cfg)

	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}

		if !shouldRetry(lastErr) {
			return zero, lastErr
		}

		if attempt >= cfg.MaxAttempts-1 {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, lastErr)
		}

		timer := time.NewTimer(computeBackoff(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// DoValFallback retries fn per cfg and, if every attempt fails, returns the
// result of the pure fallback function instead of an error. Used where a
// total external failure must degrade to a deterministic local result
// rather than stall the pipeline.
func DoValFallback[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error), fallback func() T) T {
	val, err := DoVal(ctx, cfg, fn)
	if err != nil {
		zap.L().Warn("retries exhausted, using fallback", zap.Error(err))
		return fallback()
	}
	return val
}

func applyDefaults(cfg RetryConfig) RetryConfig {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	return cfg
}

// computeBackoff returns the delay before retry number attempt+1.
// Linear: (attempt+1) × InitialBackoff. Exponential: InitialBackoff ×
// Multiplier^attempt. Both respect MaxBackoff.
func computeBackoff(attempt int, cfg RetryConfig) time.Duration {
	var delay float64
	if cfg.Linear {
		delay = float64(cfg.InitialBackoff) * float64(attempt+1)
	} else {
		delay = float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))
	}
	if delay > float64(cfg.MaxBackoff) {
		delay = float64(cfg.MaxBackoff)
	}
	return time.Duration(delay)
}

// RetryLogger returns an OnRetry callback that logs each retry attempt.
func RetryLogger(service, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
