package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/flashgen/internal/domain"
)

// FlashcardStore persists generated flashcards.
type FlashcardStore interface {
	// Upsert inserts cards, replacing any existing row with the same ID.
	// Every card is validated first; nothing is written if one is invalid.
	// Run it inside RunInTransaction when the batch must be atomic.
	Upsert(ctx context.Context, cards []*domain.Flashcard) error

	// Get returns the card with id or ErrFlashcardNotFound.
	Get(ctx context.Context, id int64) (*domain.Flashcard, error)

	// ListAll returns every card, newest first.
	ListAll(ctx context.Context) ([]*domain.Flashcard, error)

	// Update applies patch to the card with id and returns the stored result.
	// Returns ErrFlashcardNotFound for an unknown id and ErrInvalidEntity when
	// the patched card fails validation.
	Update(ctx context.Context, id int64, patch domain.FlashcardPatch) (*domain.Flashcard, error)

	// Delete removes the cards with the given ids and reports how many rows
	// went away. Unknown ids are ignored.
	Delete(ctx context.Context, ids []int64) (int64, error)

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) FlashcardStore
}
