package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashgen/internal/platform/logger"
)

func TestRespondWithJSON(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		data         any
		expectedBody string
	}{
		{
			name:         "object",
			status:       http.StatusOK,
			data:         map[string]any{"message": "success", "count": 3},
			expectedBody: `{"message":"success","count":3}`,
		},
		{
			name:         "accepted",
			status:       http.StatusAccepted,
			data:         map[string]any{},
			expectedBody: `{}`,
		},
		{
			name:         "nil",
			status:       http.StatusOK,
			data:         nil,
			expectedBody: `null`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			RespondWithJSON(w, req, tc.status, tc.data)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
		})
	}
}

func TestRespondWithJSONEncodingError(t *testing.T) {
	ctx, logs := logger.NewTestContext(t)
	req := httptest.NewRequest(http.MethodGet, "/test", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, logs.EntriesWithMessage(t, "failed to encode JSON response"), 1)
}

func TestRespondWithError(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, "test-trace-id")
	req := httptest.NewRequest(http.MethodGet, "/test", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusBadRequest, "Invalid request")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Invalid request", response.Error)
	assert.Equal(t, "test-trace-id", response.TraceID)
}

func TestRespondWithErrorNoTraceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusNotFound, "Flashcard not found")

	assert.JSONEq(t, `{"error":"Flashcard not found"}`, w.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name          string
		statusCode    int
		message       string
		err           error
		expectedLevel string
		elevate       bool
	}{
		{
			name:          "server error",
			statusCode:    http.StatusInternalServerError,
			message:       "Internal server error",
			err:           errors.New("database connection failed"),
			expectedLevel: "ERROR",
		},
		{
			name:          "client error",
			statusCode:    http.StatusBadRequest,
			message:       "Bad request",
			err:           errors.New("invalid input"),
			expectedLevel: "DEBUG",
		},
		{
			name:          "elevated client error",
			statusCode:    http.StatusBadRequest,
			message:       "Bad request",
			err:           errors.New("invalid input"),
			expectedLevel: "WARN",
			elevate:       true,
		},
		{
			name:          "rate limited",
			statusCode:    http.StatusTooManyRequests,
			message:       "Too many requests",
			err:           errors.New("rate limit exceeded"),
			expectedLevel: "WARN",
		},
		{
			name:          "backend unavailable",
			statusCode:    http.StatusServiceUnavailable,
			message:       "Backend unavailable",
			err:           errors.New("dial tcp: connection refused"),
			expectedLevel: "ERROR",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx, logs := logger.NewTestContext(t)
			ctx = context.WithValue(ctx, TraceIDKey, "test-trace-id")
			req := httptest.NewRequest(http.MethodGet, "/test", nil).WithContext(ctx)
			w := httptest.NewRecorder()

			var opts []ResponseOption
			if tc.elevate {
				opts = append(opts, WithElevatedLogLevel())
			}
			RespondWithErrorAndLog(w, req, tc.statusCode, tc.message, tc.err, opts...)

			assert.Equal(t, tc.statusCode, w.Code)
			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tc.message, response.Error)
			assert.NotContains(t, w.Body.String(), tc.err.Error(), "raw errors never reach the client")

			entries := logs.EntriesWithMessage(t, "API error response")
			require.Len(t, entries, 1)
			assert.Equal(t, tc.expectedLevel, entries[0]["level"])
			assert.Equal(t, "test-trace-id", entries[0]["trace_id"])
			assert.Equal(t, "*errors.errorString", entries[0]["error_type"])
		})
	}
}

func TestRespondWithErrorAndLog_RedactsSecrets(t *testing.T) {
	ctx, logs := logger.NewTestContext(t)
	req := httptest.NewRequest(http.MethodGet, "/test", nil).WithContext(ctx)

	RespondWithErrorAndLog(httptest.NewRecorder(), req, http.StatusBadGateway, "Generation failed",
		errors.New("provider rejected key sk-ant-REDACTED"))

	assert.NotContains(t, logs.String(), "abcdefghijklmnopqrstuvwxyz")
}

func TestWithElevatedLogLevel(t *testing.T) {
	opts := responseOptions{}
	WithElevatedLogLevel()(&opts)
	assert.True(t, opts.elevateLogLevel)
}
