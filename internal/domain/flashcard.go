package domain

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is the perceived difficulty of a flashcard.
type Difficulty string

// Valid difficulty values. Neutral is used when no rating was attempted.
const (
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
	DifficultyNeutral Difficulty = "neutral"
)

// DefaultSubject is the tag applied when a request names no subjects.
const DefaultSubject = "general"

// Flashcard validation errors
var (
	// ErrQuestionEmpty is returned when a flashcard has no question.
	ErrQuestionEmpty = fmt.Errorf("%w: question", ErrEmptyContent)

	// ErrAnswerEmpty is returned when a flashcard has no answer.
	ErrAnswerEmpty = fmt.Errorf("%w: answer", ErrEmptyContent)
)

// ParseDifficulty converts a label into a Difficulty, ignoring case and
// surrounding whitespace.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
	}
	return d, nil
}

// Valid reports whether d is one of the known difficulty values.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyNeutral:
		return true
	}
	return false
}

// Flashcard is a single generated study card.
type Flashcard struct {
	ID           int64      `json:"id"`
	Question     string     `json:"question"`
	Answer       string     `json:"answer"`
	Explanation  string     `json:"explanation"`
	Tags         []string   `json:"tags"`
	Difficulty   Difficulty `json:"difficulty"`
	Bookmarked   bool       `json:"bookmarked"`
	ReviewCount  int        `json:"reviewCount"`
	Mastery      int        `json:"mastery"`
	LastReviewed *time.Time `json:"lastReviewed"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NewFlashcard builds a fresh, unreviewed flashcard stamped with now.
// Returns an error if validation fails.
func NewFlashcard(
	id int64,
	question, answer, explanation string,
	tags []string,
	difficulty Difficulty,
	now time.Time,
) (*Flashcard, error) {
	card := &Flashcard{
		ID:          id,
		Question:    question,
		Answer:      answer,
		Explanation: explanation,
		Tags:        NormalizeSubjects(tags),
		Difficulty:  difficulty,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}
	return card, nil
}

// Validate checks the invariants every stored flashcard must satisfy.
func (f *Flashcard) Validate() error {
	if f.ID <= 0 {
		return ErrInvalidID
	}
	if strings.TrimSpace(f.Question) == "" {
		return ErrQuestionEmpty
	}
	if strings.TrimSpace(f.Answer) == "" {
		return ErrAnswerEmpty
	}
	if !f.Difficulty.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, f.Difficulty)
	}
	if f.ReviewCount < 0 || f.Mastery < 0 {
		return fmt.Errorf("%w: review count and mastery must not be negative", ErrValidation)
	}
	return nil
}

// NormalizeSubjects trims subjects, drops blanks and duplicates while keeping
// first-seen order, and falls back to DefaultSubject when nothing remains.
func NormalizeSubjects(subjects []string) []string {
	seen := make(map[string]struct{}, len(subjects))
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return []string{DefaultSubject}
	}
	return out
}

// FlashcardPatch carries a partial update. Nil fields are left untouched;
// ClearLastReviewed resets LastReviewed to null.
type FlashcardPatch struct {
	Question     *string     `json:"question,omitempty"`
	Answer       *string     `json:"answer,omitempty"`
	Explanation  *string     `json:"explanation,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
	Difficulty   *Difficulty `json:"difficulty,omitempty"`
	Bookmarked   *bool       `json:"bookmarked,omitempty"`
	LastReviewed *time.Time  `json:"lastReviewed,omitempty"`
	ReviewCount  *int        `json:"reviewCount,omitempty"`
	Mastery      *int        `json:"mastery,omitempty"`

	ClearLastReviewed bool `json:"-"`
}

// IsEmpty reports whether the patch changes nothing.
func (p FlashcardPatch) IsEmpty() bool {
	return p.Question == nil && p.Answer == nil && p.Explanation == nil &&
		p.Tags == nil && p.Difficulty == nil && p.Bookmarked == nil &&
		p.LastReviewed == nil && p.ReviewCount == nil && p.Mastery == nil &&
		!p.ClearLastReviewed
}

// Validate rejects patches that would break flashcard invariants.
func (p FlashcardPatch) Validate() error {
	if p.Question != nil && strings.TrimSpace(*p.Question) == "" {
		return ErrQuestionEmpty
	}
	if p.Answer != nil && strings.TrimSpace(*p.Answer) == "" {
		return ErrAnswerEmpty
	}
	if p.Difficulty != nil && !p.Difficulty.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, *p.Difficulty)
	}
	if (p.ReviewCount != nil && *p.ReviewCount < 0) || (p.Mastery != nil && *p.Mastery < 0) {
		return fmt.Errorf("%w: review count and mastery must not be negative", ErrValidation)
	}
	return nil
}

// Apply copies the patch's set fields onto f and bumps UpdatedAt.
func (p FlashcardPatch) Apply(f *Flashcard, now time.Time) {
	if p.Question != nil {
		f.Question = *p.Question
	}
	if p.Answer != nil {
		f.Answer = *p.Answer
	}
	if p.Explanation != nil {
		f.Explanation = *p.Explanation
	}
	if p.Tags != nil {
		f.Tags = NormalizeSubjects(p.Tags)
	}
	if p.Difficulty != nil {
		f.Difficulty = *p.Difficulty
	}
	if p.Bookmarked != nil {
		f.Bookmarked = *p.Bookmarked
	}
	if p.ClearLastReviewed {
		f.LastReviewed = nil
	}
	if p.LastReviewed != nil {
		t := p.LastReviewed.UTC()
		f.LastReviewed = &t
	}
	if p.ReviewCount != nil {
		f.ReviewCount = *p.ReviewCount
	}
	if p.Mastery != nil {
		f.Mastery = *p.Mastery
	}
	f.UpdatedAt = now.UTC()
}
