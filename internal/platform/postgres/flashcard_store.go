package postgres

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

const flashcardColumns = `id, question, answer, explanation, tags, difficulty, bookmarked,
	review_count, mastery, last_reviewed, created_at, updated_at`

// PostgresFlashcardStore implements store.FlashcardStore using PostgreSQL.
type PostgresFlashcardStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresFlashcardStore creates a PostgreSQL FlashcardStore over a
// connection or transaction managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresFlashcardStore(db store.DBTX, logger *slog.Logger) *PostgresFlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresFlashcardStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_store"), slog.String("driver", "pgx")),
		now:    time.Now,
	}
}

// Ensure PostgresFlashcardStore implements store.FlashcardStore interface
var _ store.FlashcardStore = (*PostgresFlashcardStore)(nil)

// WithTx implements store.FlashcardStore.
func (s *PostgresFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return &PostgresFlashcardStore{db: tx, logger: s.logger, now: s.now}
}

// Upsert implements store.FlashcardStore. All cards go out in a single
// multi-row INSERT ... ON CONFLICT statement.
func (s *PostgresFlashcardStore) Upsert(ctx context.Context, cards []*domain.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	const perRow = 12
	values := make([]string, 0, len(cards))
	args := make([]any, 0, len(cards)*perRow)
	for i, card := range cards {
		if err := card.Validate(); err != nil {
			log.WarnContext(ctx, "flashcard validation failed during upsert",
				slog.Int64("card_id", card.ID),
				slog.String("error", err.Error()))
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		row, err := cardArgs(card)
		if err != nil {
			return err
		}
		placeholders := make([]string, perRow)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", i*perRow+j+1)
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
		args = append(args, row...)
	}

	query := `
		INSERT INTO flashcards (` + flashcardColumns + `)
		VALUES ` + strings.Join(values, ",\n\t\t") + `
		ON CONFLICT (id) DO UPDATE SET
			question = EXCLUDED.question,
			answer = EXCLUDED.answer,
			explanation = EXCLUDED.explanation,
			tags = EXCLUDED.tags,
			difficulty = EXCLUDED.difficulty,
			bookmarked = EXCLUDED.bookmarked,
			review_count = EXCLUDED.review_count,
			mastery = EXCLUDED.mastery,
			last_reviewed = EXCLUDED.last_reviewed,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.ErrorContext(ctx, "failed to upsert flashcards",
			slog.Int("count", len(cards)),
			slog.String("error", err.Error()))
		return store.NewStoreError("flashcard", "upsert", "insert failed", MapError(err))
	}

	log.DebugContext(ctx, "flashcards upserted", slog.Int("count", len(cards)))
	return nil
}

// Get implements store.FlashcardStore.
func (s *PostgresFlashcardStore) Get(ctx context.Context, id int64) (*domain.Flashcard, error) {
	return s.get(ctx, id, false)
}

func (s *PostgresFlashcardStore) get(ctx context.Context, id int64, forUpdate bool) (*domain.Flashcard, error) {
	query := `SELECT ` + flashcardColumns + ` FROM flashcards WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", store.ErrFlashcardNotFound, id)
		}
		return nil, store.NewStoreError("flashcard", "get", "query failed", MapError(err))
	}
	return card, nil
}

// ListAll implements store.FlashcardStore.
func (s *PostgresFlashcardStore) ListAll(ctx context.Context) ([]*domain.Flashcard, error) {
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

// Update implements store.FlashcardStore. Inside a transaction the row is
// locked between the read and the write.
func (s *PostgresFlashcardStore) Update(ctx context.Context, id int64, patch domain.FlashcardPatch) (*domain.Flashcard, error) {
	_, inTx := s.db.(*sql.Tx)
	card, err := s.get(ctx, id, inTx)
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
	res, err := s.db.ExecContext(ctx, `
		UPDATE flashcards SET
			question = $2, answer = $3, explanation = $4, tags = $5, difficulty = $6,
			bookmarked = $7, review_count = $8, mastery = $9, last_reviewed = $10,
			created_at = $11, updated_at = $12
		WHERE id = $1`, args...)
	if err != nil {
		return nil, store.NewStoreError("flashcard", "update", "update failed", MapError(err))
	}
	if err := checkRowsAffected(res, id); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).DebugContext(ctx, "flashcard updated", slog.Int64("card_id", id))
	return card, nil
}

// Delete implements store.FlashcardStore.
func (s *PostgresFlashcardStore) Delete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM flashcards WHERE id = ANY($1)`, ids)
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

func checkRowsAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", store.ErrFlashcardNotFound, id)
	}
	return nil
}

func cardArgs(card *domain.Flashcard) ([]any, error) {
	tags, err := json.Marshal(card.Tags)
	if err != nil {
		return nil, fmt.Errorf("%w: encode tags: %v", store.ErrInvalidEntity, err)
	}
	var lastReviewed sql.NullTime
	if card.LastReviewed != nil {
		lastReviewed = sql.NullTime{Time: card.LastReviewed.UTC(), Valid: true}
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
		card.CreatedAt.UTC(),
		card.UpdatedAt.UTC(),
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (*domain.Flashcard, error) {
	var (
		card         domain.Flashcard
		tags         []byte
		difficulty   string
		lastReviewed sql.NullTime
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
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tags, &card.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of flashcard %d: %w", card.ID, err)
	}
	card.Difficulty = domain.Difficulty(difficulty)
	card.CreatedAt = card.CreatedAt.UTC()
	card.UpdatedAt = card.UpdatedAt.UTC()
	if lastReviewed.Valid {
		t := lastReviewed.Time.UTC()
		card.LastReviewed = &t
	}
	return &card, nil
}
