package services

import (
	"context"
	"time"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
)

// RetryConfig configures exponential backoff for transient external-call
// failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the backoff.
	MaxDelay time.Duration

	// Multiplier grows the delay between attempts.
	Multiplier float64
}

// DefaultRetryConfig returns sensible defaults for model API retry.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: domain.DefaultMaxAttempts,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
	}
}

// retryWithBackoff executes fn with exponential backoff, retrying only
// transient errors. Non-transient errors and context cancellation return
// immediately. attempts reports how many calls were made.
func retryWithBackoff[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (result T, attempts int, err error) {
	var zero T
	backoff := cfg.BaseDelay

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err = fn()
		attempts = attempt + 1
		if err == nil {
			return result, attempts, nil
		}

		if ctx.Err() != nil {
			return zero, attempts, ctx.Err()
		}
		if !domain.IsTransient(err) {
			return zero, attempts, err
		}

		if attempt < cfg.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return zero, attempts, ctx.Err()
			case <-time.After(backoff):
				backoff = time.Duration(float64(backoff) * cfg.Multiplier)
				if backoff > cfg.MaxDelay {
					backoff = cfg.MaxDelay
				}
			}
		}
	}

	return zero, attempts, err
}
