package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/extract"
	"github.com/phrazzld/flashgen/internal/generation"
	"github.com/phrazzld/flashgen/internal/service"
	"github.com/phrazzld/flashgen/internal/store"
	"github.com/phrazzld/flashgen/internal/task"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, generation.ErrInvalidRequest),
		errors.Is(err, extract.ErrUnsupportedFormat),
		errors.Is(err, extract.ErrNoText):
		return http.StatusBadRequest

	case errors.Is(err, extract.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, task.ErrJobNotFound):
		return http.StatusNotFound

	case errors.Is(err, generation.ErrBackendUnavailable),
		task.IsRejected(err):
		return http.StatusServiceUnavailable

	case errors.Is(err, generation.ErrAllGenerationsFailed):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Validation
// messages are built by this module and are passed through; everything
// else gets a fixed message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrTextTooShort):
		return "Text is too short to generate flashcards from"
	case errors.Is(err, service.ErrNoUpdatableFields):
		return "No valid update fields provided"
	case errors.Is(err, service.ErrNoIDs):
		return "No flashcard IDs provided"
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrInvalidDifficulty):
		return validationMessage(err)

	case errors.Is(err, extract.ErrUnsupportedFormat):
		return fmt.Sprintf("Unsupported file type; supported types are %s",
			strings.Join(extract.Extensions(), ", "))
	case errors.Is(err, extract.ErrNoText):
		return "The uploaded document contains no text"
	case errors.Is(err, extract.ErrDocumentTooLarge):
		return "The uploaded document is too large"

	case errors.Is(err, store.ErrNotFound):
		return "Flashcard not found"
	case errors.Is(err, task.ErrJobNotFound):
		return "Job not found"

	case errors.Is(err, generation.ErrBackendUnavailable):
		return "The text generation backend is not available. Please try again later."
	case errors.Is(err, task.ErrQueueFull):
		return "Too many generation jobs are queued. Please try again later."
	case errors.Is(err, task.ErrQueueClosed):
		return "The server is shutting down"
	case errors.Is(err, generation.ErrAllGenerationsFailed):
		return "The model failed to generate any flashcards from your text. Please try different content."

	default:
		return "An unexpected error occurred"
	}
}

// validationMessage strips sentinel prefixes and capitalizes the rest.
func validationMessage(err error) string {
	msg := err.Error()
	for _, prefix := range []string{
		service.ErrInvalidInput.Error() + ": ",
		domain.ErrValidation.Error() + ": ",
	} {
		msg = strings.TrimPrefix(msg, prefix)
	}
	if msg == "" {
		return "Validation error"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// SanitizeValidationError turns a validator error into a short message
// naming the first failing field.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Format: "Key: 'GenerateRequest.Count' Error:Field validation for 'Count' failed on the 'max' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := strings.ToLower(fieldParts[1])
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "dive":
		return "invalid item"
	default:
		return "validation failed"
	}
}
