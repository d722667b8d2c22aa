package generation

import "context"

// CompletionOptions tunes a single backend call.
type CompletionOptions struct {
	// MaxNewTokens caps the length of the completion.
	MaxNewTokens int

	// Temperature controls sampling randomness. Zero leaves the provider default.
	Temperature float64
}

// Backend is the text-completion capability the orchestrator drives.
// Implementations must be safe for concurrent use.
//
// Errors should wrap ErrBackendUnavailable when the backend is not configured
// or not ready, and ErrBackendError for call-level failures.
type Backend interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// ReadinessChecker is implemented by backends that can report readiness
// before any completion is attempted.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// BackendFunc adapts a plain function to the Backend interface.
type BackendFunc func(ctx context.Context, prompt string, opts CompletionOptions) (string, error)

// Complete calls f.
func (f BackendFunc) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	return f(ctx, prompt, opts)
}
