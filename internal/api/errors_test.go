package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/flashgen/internal/api/shared"
	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/extract"
	"github.com/phrazzld/flashgen/internal/generation"
	"github.com/phrazzld/flashgen/internal/service"
	"github.com/phrazzld/flashgen/internal/store"
	"github.com/phrazzld/flashgen/internal/task"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", service.ErrTextTooShort, http.StatusBadRequest},
		{"domain validation", fmt.Errorf("%w: count", domain.ErrValidation), http.StatusBadRequest},
		{"empty content", domain.ErrQuestionEmpty, http.StatusBadRequest},
		{"invalid request", generation.ErrInvalidRequest, http.StatusBadRequest},
		{"unsupported format", extract.ErrUnsupportedFormat, http.StatusBadRequest},
		{"no text", extract.ErrNoText, http.StatusBadRequest},
		{"too large", extract.ErrDocumentTooLarge, http.StatusRequestEntityTooLarge},
		{"card not found", store.ErrFlashcardNotFound, http.StatusNotFound},
		{"job not found", task.ErrJobNotFound, http.StatusNotFound},
		{"backend unavailable", fmt.Errorf("wrapped: %w", generation.ErrBackendUnavailable), http.StatusServiceUnavailable},
		{"queue full", task.ErrQueueFull, http.StatusServiceUnavailable},
		{"queue closed", task.ErrQueueClosed, http.StatusServiceUnavailable},
		{"all failed", &generation.AllGenerationsFailedError{Attempted: 3}, http.StatusBadGateway},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "Text is too short to generate flashcards from", GetSafeErrorMessage(service.ErrTextTooShort))
	assert.Equal(t, "Flashcard not found", GetSafeErrorMessage(store.ErrFlashcardNotFound))
	assert.Equal(t, "Job not found", GetSafeErrorMessage(task.ErrJobNotFound))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Contains(t, GetSafeErrorMessage(extract.ErrUnsupportedFormat), ".pdf")

	t.Run("validation details are kept", func(t *testing.T) {
		err := fmt.Errorf("%w: count must be between 1 and 50", service.ErrInvalidInput)
		assert.Equal(t, "Count must be between 1 and 50", GetSafeErrorMessage(err))
	})

	t.Run("internal details are hidden", func(t *testing.T) {
		err := fmt.Errorf("query failed: password=hunter2 host=db.internal: %w", errors.New("boom"))
		msg := GetSafeErrorMessage(err)
		assert.Equal(t, "An unexpected error occurred", msg)
		assert.False(t, strings.Contains(msg, "hunter2"))
	})
}

func TestSanitizeValidationError(t *testing.T) {
	err := shared.Validate.Struct(GenerateRequest{Text: "some text", Count: 51})
	assert.Equal(t, "Invalid count: too large", SanitizeValidationError(err))

	err = shared.Validate.Struct(GenerateRequest{})
	assert.Equal(t, "Invalid text: required field", SanitizeValidationError(err))

	err = shared.Validate.Struct(GenerateRequest{Text: "some text", Mode: "poetry"})
	assert.Equal(t, "Invalid mode: invalid value", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}
