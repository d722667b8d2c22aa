package service

import (
	"errors"
	"fmt"
)

// Service errors. The API layer maps ErrInvalidInput to 400 and
// ErrNotFound to 404; generation errors pass through unchanged.
var (
	// ErrInvalidInput marks a request the service refuses before doing any work.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTextTooShort is returned when the source text is under the minimum length.
	ErrTextTooShort = fmt.Errorf("%w: text too short", ErrInvalidInput)

	// ErrNoUpdatableFields is returned for an update that changes nothing.
	ErrNoUpdatableFields = fmt.Errorf("%w: no updatable fields supplied", ErrInvalidInput)

	// ErrNoIDs is returned for a delete without ids.
	ErrNoIDs = fmt.Errorf("%w: ids must be a non-empty list", ErrInvalidInput)
)

// FlashcardServiceError wraps an unexpected failure with the operation it interrupted.
type FlashcardServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for FlashcardServiceError.
func (e *FlashcardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("flashcard service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("flashcard service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *FlashcardServiceError) Unwrap() error {
	return e.Err
}

// NewFlashcardServiceError creates a new FlashcardServiceError.
func NewFlashcardServiceError(operation, message string, err error) *FlashcardServiceError {
	return &FlashcardServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
