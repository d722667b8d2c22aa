package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/phrazzld/flashgen/internal/generation"
)

// HuggingFaceBaseURL is the OpenAI-compatible Hugging Face inference router.
const HuggingFaceBaseURL = "https://router.huggingface.co/v1"

// OpenAIBackend completes prompts with the OpenAI chat completions API.
// It also serves any OpenAI-compatible endpoint via a custom base URL.
type OpenAIBackend struct {
	keyed
	client *openai.Client
}

// NewOpenAIBackend creates a backend for OpenAI or, with baseURL set, an
// OpenAI-compatible service. name is reported by Name().
func NewOpenAIBackend(name, apiKey, model, baseURL string) *OpenAIBackend {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIBackend{
		keyed: keyed{
			name:   name,
			model:  resolveModel(name, model),
			hasKey: apiKeyPresent(apiKey),
		},
		client: openai.NewClientWithConfig(config),
	}
}

// NewHuggingFaceBackend creates a backend for the Hugging Face router.
func NewHuggingFaceBackend(apiKey, model, baseURL string) *OpenAIBackend {
	if baseURL == "" {
		baseURL = HuggingFaceBaseURL
	}
	return NewOpenAIBackend(ProviderHuggingFace, apiKey, model, baseURL)
}

// Complete implements generation.Backend.
func (b *OpenAIBackend) Complete(ctx context.Context, prompt string, opts generation.CompletionOptions) (string, error) {
	if err := b.Ready(ctx); err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
		MaxCompletionTokens: opts.MaxNewTokens,
		Temperature:         float32(opts.Temperature),
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapOpenAIError(b.name, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", emptyResponse(b.name)
	}
	return resp.Choices[0].Message.Content, nil
}

func mapOpenAIError(provider string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return callError(provider, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return callError(provider, reqErr.HTTPStatusCode, err)
	}
	return callError(provider, 0, err)
}
