package llm

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/phrazzld/flashgen/internal/generation"
	"github.com/phrazzld/flashgen/internal/platform/logger"
	"github.com/phrazzld/flashgen/internal/redact"
)

type loggingProvider struct {
	Provider
	logger *slog.Logger
}

// WithLogging logs every Complete call with its latency and sizes. Prompts
// and completions themselves are never logged.
func WithLogging(p Provider, l *slog.Logger) Provider {
	if l == nil {
		l = slog.Default()
	}
	return &loggingProvider{
		Provider: p,
		logger:   l.With(slog.String("component", "llm"), slog.String("provider", p.Name())),
	}
}

func (l *loggingProvider) Complete(ctx context.Context, prompt string, opts generation.CompletionOptions) (string, error) {
	log := logger.FromContextOrDefault(ctx, l.logger)
	start := time.Now()

	text, err := l.Provider.Complete(ctx, prompt, opts)

	attrs := []any{
		slog.String("model", l.Model()),
		slog.Int64("latency_ms", time.Since(start).Milliseconds()),
		slog.Int("prompt_chars", utf8.RuneCountInString(prompt)),
		slog.Int("max_new_tokens", opts.MaxNewTokens),
	}
	if err != nil {
		log.WarnContext(ctx, "backend call failed", append(attrs, slog.String("error", redact.Error(err)))...)
		return "", err
	}

	log.DebugContext(ctx, "backend call completed", append(attrs, slog.Int("output_chars", utf8.RuneCountInString(text)))...)
	return text, nil
}
