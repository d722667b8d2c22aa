package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashgen/internal/generation"
)

func newTestAnthropicBackend(t *testing.T, handler http.HandlerFunc) *AnthropicBackend {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewAnthropicBackend("test-key", "claude-haiku", server.URL)
}

func TestAnthropicBackend_HappyPath(t *testing.T) {
	var got map[string]any
	handler := func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "The rate of change of a function."},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
		})
	}

	b := newTestAnthropicBackend(t, handler)
	text, err := b.Complete(context.Background(), "Answer this question", generation.CompletionOptions{
		MaxNewTokens: 120,
		Temperature:  0.5,
	})

	require.NoError(t, err)
	assert.Equal(t, "The rate of change of a function.", text)
	assert.Equal(t, "claude-haiku-4-5-20251001", got["model"])
	assert.EqualValues(t, 120, got["max_tokens"])
	assert.InDelta(t, 0.5, got["temperature"], 0.001)
}

func TestAnthropicBackend_RateLimit(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "rate_limit_error", "message": "Rate limit exceeded"},
		})
	}

	b := newTestAnthropicBackend(t, handler)
	_, err := b.Complete(context.Background(), "prompt", generation.CompletionOptions{MaxNewTokens: 10})

	assert.ErrorIs(t, err, generation.ErrBackendError)
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, http.StatusTooManyRequests, callErr.StatusCode)
	assert.True(t, callErr.Retryable())
}

func TestAnthropicBackend_BadRequestNotRetryable(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "invalid_request_error", "message": "bad model"},
		})
	}

	b := newTestAnthropicBackend(t, handler)
	_, err := b.Complete(context.Background(), "prompt", generation.CompletionOptions{})

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.False(t, callErr.Retryable())
}
