package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/phrazzld/flashgen/internal/generation"
)

// RetryConfig controls WithRetry.
type RetryConfig struct {
	// MaxRetries is the number of extra attempts after the first. Zero disables retries.
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns backoff settings for maxRetries extra attempts.
func DefaultRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:  maxRetries,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     8 * time.Second,
		Multiplier:  2,
	}
}

// retryProvider retries retryable call failures with exponential backoff and jitter.
type retryProvider struct {
	Provider
	config RetryConfig
}

// WithRetry wraps p with retry logic. With MaxRetries <= 0 it returns p unchanged.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxRetries <= 0 {
		return p
	}
	return &retryProvider{Provider: p, config: cfg}
}

func (r *retryProvider) Complete(ctx context.Context, prompt string, opts generation.CompletionOptions) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		text, err := r.Provider.Complete(ctx, prompt, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var callErr *CallError
		if !errors.As(err, &callErr) || !callErr.Retryable() {
			return "", err
		}

		// Last attempt: don't sleep, just return the error.
		if attempt == r.config.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.backoff(attempt, callErr)):
		}
	}
	return "", lastErr
}

// backoff computes the wait before the next attempt.
func (r *retryProvider) backoff(attempt int, err *CallError) time.Duration {
	if err.RetryAfter > 0 {
		return err.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
