package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidDifficulty is returned when a difficulty label is not recognized.
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// ErrInvalidID is returned when a flashcard ID is not positive.
	ErrInvalidID = errors.New("invalid ID")
)
