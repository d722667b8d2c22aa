package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/flashgen/internal/config"
	"github.com/phrazzld/flashgen/internal/generation"
)

// New builds the configured provider wrapped with timeout, retry and logging
// decorators.
func New(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (Provider, error) {
	var (
		base Provider
		err  error
	)

	switch cfg.Provider {
	case ProviderGemini:
		base, err = NewGeminiBackend(ctx, cfg.APIKey, cfg.Model)
	case ProviderOpenAI:
		base = NewOpenAIBackend(ProviderOpenAI, cfg.APIKey, cfg.Model, cfg.BaseURL)
	case ProviderHuggingFace:
		base = NewHuggingFaceBackend(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case ProviderAnthropic:
		base = NewAnthropicBackend(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case ProviderStub, "":
		base = NewStubBackend()
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	p := WithTimeout(base, cfg.CallTimeout)
	p = WithRetry(p, DefaultRetryConfig(cfg.MaxRetries))
	p = WithLogging(p, logger)

	if readyErr := p.Ready(ctx); readyErr != nil && logger != nil {
		logger.WarnContext(ctx, "text completion backend is not ready",
			slog.String("provider", p.Name()),
			slog.String("model", p.Model()),
			slog.String("reason", readyErr.Error()))
	}

	return p, nil
}
