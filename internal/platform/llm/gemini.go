package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/phrazzld/flashgen/internal/generation"
)

// GeminiBackend completes prompts with Google Gemini.
type GeminiBackend struct {
	keyed
	client *genai.Client
}

// NewGeminiBackend creates a Gemini backend. Without an API key the backend
// is built but reports itself unavailable.
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	b := &GeminiBackend{keyed: keyed{
		name:   ProviderGemini,
		model:  resolveModel(ProviderGemini, model),
		hasKey: apiKeyPresent(apiKey),
	}}
	if !b.hasKey {
		return b, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}
	b.client = client
	return b, nil
}

// Complete implements generation.Backend.
func (b *GeminiBackend) Complete(ctx context.Context, prompt string, opts generation.CompletionOptions) (string, error) {
	if err := b.Ready(ctx); err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{}
	if opts.MaxNewTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxNewTokens)
	}
	if opts.Temperature > 0 {
		temp := float32(opts.Temperature)
		cfg.Temperature = &temp
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	result, err := b.client.Models.GenerateContent(ctx, b.model, contents, cfg)
	if err != nil {
		return "", mapGeminiError(err)
	}
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrMalformedResponse)
	}

	text := result.Text()
	if text == "" {
		return "", emptyResponse(b.name)
	}
	return text, nil
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return callError(ProviderGemini, apiErr.Code, err)
	}
	return callError(ProviderGemini, 0, err)
}
