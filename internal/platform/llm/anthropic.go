package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/phrazzld/flashgen/internal/generation"
)

// AnthropicBackend completes prompts with the Anthropic Messages API.
type AnthropicBackend struct {
	keyed
	client *anthropic.Client
}

// NewAnthropicBackend creates an Anthropic backend. The SDK's own retries are
// disabled; WithRetry owns that policy.
func NewAnthropicBackend(apiKey, model, baseURL string) *AnthropicBackend {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)

	return &AnthropicBackend{
		keyed: keyed{
			name:   ProviderAnthropic,
			model:  resolveModel(ProviderAnthropic, model),
			hasKey: apiKeyPresent(apiKey),
		},
		client: &client,
	}
}

// Complete implements generation.Backend.
func (b *AnthropicBackend) Complete(ctx context.Context, prompt string, opts generation.CompletionOptions) (string, error) {
	if err := b.Ready(ctx); err != nil {
		return "", err
	}

	maxTokens := int64(opts.MaxNewTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{{
			Role:    anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(prompt)},
		}},
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}

	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return "", mapAnthropicError(err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", emptyResponse(b.name)
	}
	return text.String(), nil
}

func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return callError(ProviderAnthropic, apiErr.StatusCode, err)
	}
	return callError(ProviderAnthropic, 0, err)
}
