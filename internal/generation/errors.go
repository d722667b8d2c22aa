package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrBackendUnavailable is returned when the text-completion backend is not
	// configured or not ready. Detected before any item is attempted, it aborts
	// the whole request.
	ErrBackendUnavailable = errors.New("text completion backend unavailable")

	// ErrBackendError is returned when an individual backend call fails
	// (network, inference or provider error).
	ErrBackendError = errors.New("text completion backend call failed")

	// ErrMalformedResponse is returned when the backend answers with an empty
	// or unusable payload. It is handled exactly like a stage failure.
	ErrMalformedResponse = errors.New("malformed backend response")

	// ErrGenerationFailed matches every per-item GenerationFailedError.
	ErrGenerationFailed = errors.New("flashcard generation failed")

	// ErrAllGenerationsFailed matches AllGenerationsFailedError.
	ErrAllGenerationsFailed = errors.New("all flashcard generations failed")

	// ErrInvalidRequest is returned when a request cannot be processed at all.
	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrInvalidConfig is returned when the orchestrator is misconfigured.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// Stage names one sub-step of item generation.
type Stage string

// Item generation stages. StageBatch covers the single call made in batch mode.
const (
	StageQuestion    Stage = "question"
	StageAnswer      Stage = "answer"
	StageExplanation Stage = "explanation"
	StageBatch       Stage = "batch"
)

// GenerationFailedError records why a single item was abandoned.
// It never escapes Generate; it only feeds the failure count and logs.
type GenerationFailedError struct {
	Item  int
	Stage Stage
	Err   error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("item %d: %s stage failed: %v", e.Item, e.Stage, e.Err)
}

func (e *GenerationFailedError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrGenerationFailed) match any stage failure.
func (e *GenerationFailedError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// AllGenerationsFailedError is returned when no item in a request produced a card.
type AllGenerationsFailedError struct {
	Attempted int
	// Cause is the last item failure observed, kept for diagnostics.
	Cause error
}

func (e *AllGenerationsFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("all %d flashcard generations failed (last error: %v)", e.Attempted, e.Cause)
	}
	return fmt.Sprintf("all %d flashcard generations failed", e.Attempted)
}

func (e *AllGenerationsFailedError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrAllGenerationsFailed) match.
func (e *AllGenerationsFailedError) Is(target error) bool {
	return target == ErrAllGenerationsFailed
}
