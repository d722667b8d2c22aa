package llm

import (
	"context"
	"time"

	"github.com/phrazzld/flashgen/internal/generation"
)

type timeoutProvider struct {
	Provider
	timeout time.Duration
}

// WithTimeout bounds every Complete call to d. A non-positive d returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &timeoutProvider{Provider: p, timeout: d}
}

func (t *timeoutProvider) Complete(ctx context.Context, prompt string, opts generation.CompletionOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Provider.Complete(ctx, prompt, opts)
}
