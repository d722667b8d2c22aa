package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashgen/internal/generation"
)

func TestGeminiBackend_NoKey(t *testing.T) {
	b, err := NewGeminiBackend(context.Background(), "", "gemini-flash")
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", b.Model())
	assert.ErrorIs(t, b.Ready(context.Background()), generation.ErrBackendUnavailable)

	_, err = b.Complete(context.Background(), "prompt", generation.CompletionOptions{})
	assert.ErrorIs(t, err, generation.ErrBackendUnavailable)
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		provider string
		input    string
		expected string
	}{
		{ProviderGemini, "gemini-flash", "gemini-2.0-flash"},
		{ProviderGemini, "gemini-pro", "gemini-2.0-pro"},
		{ProviderGemini, "", "gemini-2.0-flash"},
		{ProviderAnthropic, "claude-sonnet", "claude-sonnet-4-20250514"},
		{ProviderOpenAI, "gpt-4.1", "gpt-4.1"}, // Pass-through
		{ProviderHuggingFace, "", "meta-llama/Llama-3.1-8B-Instruct"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, resolveModel(tt.provider, tt.input), "%s/%q", tt.provider, tt.input)
	}
}
