package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/phrazzld/flashgen/internal/generation"
)

// CallError describes a failed provider call. It unwraps to
// generation.ErrBackendError and to the SDK error that caused it.
type CallError struct {
	Provider   string
	StatusCode int
	// RetryAfter is the provider's requested delay for rate limits, if known.
	RetryAfter time.Duration
	Err        error
}

func (e *CallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s call failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s call failed: %v", e.Provider, e.Err)
}

func (e *CallError) Unwrap() []error {
	return []error{generation.ErrBackendError, e.Err}
}

// Retryable reports whether the failure is worth another attempt: rate
// limits, server errors and transport failures are; client errors are not.
func (e *CallError) Retryable() bool {
	switch {
	case errors.Is(e.Err, context.Canceled), errors.Is(e.Err, context.DeadlineExceeded):
		return false
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// callError wraps err for provider unless it is a context error, which is
// passed through untouched so cancellation stays recognizable.
func callError(provider string, status int, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &CallError{Provider: provider, StatusCode: status, Err: err}
}

// emptyResponse reports a call that succeeded but carried no text.
func emptyResponse(provider string) error {
	return fmt.Errorf("%w: %s returned no text", generation.ErrMalformedResponse, provider)
}
