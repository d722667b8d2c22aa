package domain

import "fmt"

// GenerationMode selects how a batch of flashcards is produced.
type GenerationMode string

const (
	// ModeStaged generates each card with separate question, answer and
	// explanation calls.
	ModeStaged GenerationMode = "staged"

	// ModeBatch asks the backend for the whole batch as one JSON array.
	ModeBatch GenerationMode = "batch"
)

// Valid reports whether m is a known mode. The empty mode means staged.
func (m GenerationMode) Valid() bool {
	switch m {
	case "", ModeStaged, ModeBatch:
		return true
	}
	return false
}

// GenerationRequest asks for Count flashcards grounded in Text.
type GenerationRequest struct {
	Text     string
	Subjects []string
	Count    int
	Mode     GenerationMode
}

// Validate checks that the request can be processed at all. Minimum text
// length is a service concern and is not checked here.
func (r GenerationRequest) Validate() error {
	if r.Text == "" {
		return fmt.Errorf("%w: text", ErrEmptyContent)
	}
	if r.Count < 1 {
		return fmt.Errorf("%w: count must be at least 1, got %d", ErrValidation, r.Count)
	}
	if !r.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrValidation, r.Mode)
	}
	return nil
}

// GenerationOutcome is the result of a run that produced at least one card.
// Succeeded+Failed always equals Requested and len(Records) equals Succeeded.
type GenerationOutcome struct {
	Records   []*Flashcard `json:"flashcards"`
	Requested int          `json:"requested"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// NewGenerationOutcome derives the counts from the produced records.
func NewGenerationOutcome(requested int, records []*Flashcard) *GenerationOutcome {
	if records == nil {
		records = []*Flashcard{}
	}
	return &GenerationOutcome{
		Records:   records,
		Requested: requested,
		Succeeded: len(records),
		Failed:    requested - len(records),
	}
}

// FullySucceeded reports whether every requested item produced a card.
func (o *GenerationOutcome) FullySucceeded() bool {
	return o.Failed == 0 && o.Succeeded == o.Requested
}

// Partial reports whether some, but not all, items produced a card.
func (o *GenerationOutcome) Partial() bool {
	return o.Succeeded > 0 && o.Failed > 0
}
