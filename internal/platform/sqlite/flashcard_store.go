package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/platform/logger"
	"github.com/phrazzld/flashgen/internal/store"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const flashcardColumns = `id, question, answer, explanation, tags, difficulty, bookmarked,
	review_count, mastery, last_reviewed, created_at, updated_at`

// FlashcardStore implements store.FlashcardStore on SQLite.
type FlashcardStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewFlashcardStore creates a FlashcardStore over db, which may be a
// connection or a transaction. If logger is nil, a default logger will be used.
func NewFlashcardStore(db store.DBTX, logger *slog.Logger) *FlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FlashcardStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_store"), slog.String("driver", "sqlite")),
		now:    time.Now,
	}
}

var _ store.FlashcardStore = (*FlashcardStore)(nil)

// WithTx implements store.FlashcardStore.
func (s *FlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return &FlashcardStore{db: tx, logger: s.logger, now: s.now}
}

// Upsert implements store.FlashcardStore.
func (s *FlashcardStore) Upsert(ctx context.Context, cards []*domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			log.WarnContext(ctx, "flashcard validation failed during upsert",
				slog.Int64("card_id", card.ID),
				slog.String("error", err.Error()))
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
	}

	query := `
		INSERT INTO flashcards (` + flashcardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			question = excluded.question,
			answer = excluded.answer,
			explanation = excluded.explanation,
			tags = excluded.tags,
			difficulty = excluded.difficulty,
			bookmarked = excluded.bookmarked,
			review_count = excluded.review_count,
			mastery = excluded.mastery,
			last_reviewed = excluded.last_reviewed,
			updated_at = excluded.updated_at
	`
	for _, card := range cards {
		args, err := cardArgs(card)
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			log.ErrorContext(ctx, "failed to upsert flashcard",
				slog.Int64("card_id", card.ID),
				slog.String("error", err.Error()))
			return store.NewStoreError("flashcard", "upsert", "insert failed", MapError(err))
		}
	}

	log.DebugContext(ctx, "flashcards upserted", slog.Int("count", len(cards)))
	return nil
}

// Get implements store.FlashcardStore.
func (s *FlashcardStore) Get(ctx context.Context, id int64) (*domain.Flashcard, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+flashcardColumns+` FROM flashcards WHERE id = ?`, id)
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", store.ErrFlashcardNotFound, id)
		}
		return nil, store.NewStoreError("flashcard", "get", "query failed", MapError(err))
	}
	return card, nil
}

// ListAll implements store.FlashcardStore.
func (s *FlashcardStore) ListAll(ctx context.Context) ([]*domain.Flashcard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+flashcardColumns+` FROM flashcards ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, store.NewStoreError("flashcard", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	cards := make([]*domain.Flashcard, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, store.NewStoreError("flashcard", "list", "scan failed", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("flashcard", "list", "iteration failed", MapError(err))
	}
	return cards, nil
}

// Update implements store.FlashcardStore. The read and write are not
// isolated unless the store is bound to a transaction.
func (s *FlashcardStore) Update(ctx context.Context, id int64, patch domain.FlashcardPatch) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(card, s.now())
	if err := card.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	args, err := cardArgs(card)
	if err != nil {
		return nil, err
	}
	// args[1:] skips the id; it goes last for the WHERE clause.
	res, err := s.db.ExecContext(ctx, `
		UPDATE flashcards SET
			question = ?, answer = ?, explanation = ?, tags = ?, difficulty = ?,
			bookmarked = ?, review_count = ?, mastery = ?, last_reviewed = ?,
			created_at = ?, updated_at = ?
		WHERE id = ?`, append(args[1:], id)...)
	if err != nil {
		return nil, store.NewStoreError("flashcard", "update", "update failed", MapError(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: id %d", store.ErrFlashcardNotFound, id)
	}

	log.DebugContext(ctx, "flashcard updated", slog.Int64("card_id", id))
	return card, nil
}

// Delete implements store.FlashcardStore.
func (s *FlashcardStore) Delete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")

	res, err := s.db.ExecContext(ctx, `DELETE FROM flashcards WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, store.NewStoreError("flashcard", "delete", "delete failed", MapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).DebugContext(ctx, "flashcards deleted",
		slog.Int("requested", len(ids)),
		slog.Int64("deleted", n))
	return n, nil
}

func cardArgs(card *domain.Flashcard) ([]any, error) {
	tags, err := json.Marshal(card.Tags)
	if err != nil {
		return nil, fmt.Errorf("%w: encode tags: %v", store.ErrInvalidEntity, err)
	}
	var lastReviewed any
	if card.LastReviewed != nil {
		lastReviewed = formatTime(*card.LastReviewed)
	}
	return []any{
		card.ID,
		card.Question,
		card.Answer,
		card.Explanation,
		string(tags),
		string(card.Difficulty),
		card.Bookmarked,
		card.ReviewCount,
		card.Mastery,
		lastReviewed,
		formatTime(card.CreatedAt),
		formatTime(card.UpdatedAt),
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (*domain.Flashcard, error) {
	var (
		card         domain.Flashcard
		tags         string
		difficulty   string
		lastReviewed sql.NullString
		createdAt    string
		updatedAt    string
	)
	err := row.Scan(
		&card.ID,
		&card.Question,
		&card.Answer,
		&card.Explanation,
		&tags,
		&difficulty,
		&card.Bookmarked,
		&card.ReviewCount,
		&card.Mastery,
		&lastReviewed,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &card.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of flashcard %d: %w", card.ID, err)
	}
	card.Difficulty = domain.Difficulty(difficulty)

	if card.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if card.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if lastReviewed.Valid {
		t, err := parseTime(lastReviewed.String)
		if err != nil {
			return nil, err
		}
		card.LastReviewed = &t
	}
	return &card, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}
