package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/generation"
	"github.com/phrazzld/flashgen/internal/platform/logger"
	"github.com/phrazzld/flashgen/internal/store"
)

// Request limits applied before generation.
const (
	DefaultMinTextLength = 50
	DefaultCount         = 5
	MaxCount             = 50
)

// Generator produces flashcards from text. *generation.Orchestrator implements it.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOutcome, error)
	Ready(ctx context.Context) error
}

// Config tunes FlashcardService limits. Zero fields take the defaults above.
type Config struct {
	MinTextLength int
	DefaultCount  int

	// IDs assigns IDs to imported cards. Share the orchestrator's source so
	// generated and imported cards never collide.
	IDs *generation.IDSource

	// Now stamps imported cards that carry no timestamps. Defaults to time.Now.
	Now func() time.Time
}

// FlashcardService generates, stores and edits flashcards.
type FlashcardService interface {
	// GenerateAndSave generates cards for req and stores every card produced
	// in one transaction.
	GenerateAndSave(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOutcome, error)

	// Preview generates cards for req without storing them.
	Preview(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOutcome, error)

	// Import stores cards built elsewhere. Cards without an ID get one.
	Import(ctx context.Context, cards []*domain.Flashcard) error

	// List returns every stored card, newest first.
	List(ctx context.Context) ([]*domain.Flashcard, error)

	// Update applies a partial update and returns the stored card.
	Update(ctx context.Context, id int64, patch domain.FlashcardPatch) (*domain.Flashcard, error)

	// Delete removes cards by id and returns how many were removed.
	Delete(ctx context.Context, ids []int64) (int64, error)

	// Ready reports whether the generation backend can take requests.
	Ready(ctx context.Context) error

	// PrepareRequest applies defaults to req and checks it against the
	// request limits without generating anything.
	PrepareRequest(req domain.GenerationRequest) (domain.GenerationRequest, error)
}

type flashcardServiceImpl struct {
	db        *sql.DB
	store     store.FlashcardStore
	generator Generator
	ids       *generation.IDSource
	now       func() time.Time
	cfg       Config
	logger    *slog.Logger
}

// NewFlashcardService creates a FlashcardService. It returns an error if any
// of the required dependencies are nil.
func NewFlashcardService(
	db *sql.DB,
	flashcards store.FlashcardStore,
	generator Generator,
	cfg Config,
	logger *slog.Logger,
) (FlashcardService, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db cannot be nil", domain.ErrValidation)
	}
	if flashcards == nil {
		return nil, fmt.Errorf("%w: flashcard store cannot be nil", domain.ErrValidation)
	}
	if generator == nil {
		return nil, fmt.Errorf("%w: generator cannot be nil", domain.ErrValidation)
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = DefaultMinTextLength
	}
	if cfg.DefaultCount <= 0 {
		cfg.DefaultCount = DefaultCount
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.IDs == nil {
		cfg.IDs = generation.NewIDSource(cfg.Now)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &flashcardServiceImpl{
		db:        db,
		store:     flashcards,
		generator: generator,
		ids:       cfg.IDs,
		now:       cfg.Now,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "flashcard_service")),
	}, nil
}

// PrepareRequest implements FlashcardService.
func (s *flashcardServiceImpl) PrepareRequest(req domain.GenerationRequest) (domain.GenerationRequest, error) {
	if req.Count == 0 {
		req.Count = s.cfg.DefaultCount
	}
	if req.Count < 1 || req.Count > MaxCount {
		return req, fmt.Errorf("%w: count must be between 1 and %d, got %d", ErrInvalidInput, MaxCount, req.Count)
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(req.Text)); n < s.cfg.MinTextLength {
		return req, fmt.Errorf("%w: need at least %d characters, got %d", ErrTextTooShort, s.cfg.MinTextLength, n)
	}
	if !req.Mode.Valid() {
		return req, fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, req.Mode)
	}
	return req, nil
}

func (s *flashcardServiceImpl) generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOutcome, error) {
	req, err := s.PrepareRequest(req)
	if err != nil {
		return nil, err
	}
	return s.generator.Generate(ctx, req)
}

// GenerateAndSave implements FlashcardService.
func (s *flashcardServiceImpl) GenerateAndSave(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	outcome, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.store.WithTx(tx).Upsert(ctx, outcome.Records)
	})
	if err != nil {
		log.ErrorContext(ctx, "failed to save generated flashcards",
			slog.Int("count", len(outcome.Records)),
			slog.String("error", err.Error()))
		return nil, NewFlashcardServiceError("generate", "failed to save flashcards", err)
	}

	log.InfoContext(ctx, "generated flashcards saved",
		slog.Int("requested", outcome.Requested),
		slog.Int("saved", outcome.Succeeded))
	return outcome, nil
}

// Preview implements FlashcardService.
func (s *flashcardServiceImpl) Preview(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOutcome, error) {
	return s.generate(ctx, req)
}

// Import implements FlashcardService.
func (s *flashcardServiceImpl) Import(ctx context.Context, cards []*domain.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	now := s.now().UTC()
	for _, card := range cards {
		if card.ID == 0 {
			card.ID = s.ids.Next()
		}
		if card.Difficulty == "" {
			card.Difficulty = domain.DifficultyNeutral
		}
		card.Tags = domain.NormalizeSubjects(card.Tags)
		if card.CreatedAt.IsZero() {
			card.CreatedAt = now
		}
		if card.UpdatedAt.IsZero() {
			card.UpdatedAt = card.CreatedAt
		}
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: card %d: %v", ErrInvalidInput, card.ID, err)
		}
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.store.WithTx(tx).Upsert(ctx, cards)
	})
	if err != nil {
		return NewFlashcardServiceError("import", "failed to save flashcards", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "flashcards imported", slog.Int("count", len(cards)))
	return nil
}

// List implements FlashcardService.
func (s *flashcardServiceImpl) List(ctx context.Context) ([]*domain.Flashcard, error) {
	cards, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, NewFlashcardServiceError("list", "failed to load flashcards", err)
	}
	return cards, nil
}

// Update implements FlashcardService.
func (s *flashcardServiceImpl) Update(ctx context.Context, id int64, patch domain.FlashcardPatch) (*domain.Flashcard, error) {
	if patch.IsEmpty() {
		return nil, ErrNoUpdatableFields
	}
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var updated *domain.Flashcard
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		updated, err = s.store.WithTx(tx).Update(ctx, id, patch)
		return err
	})
	switch {
	case err == nil:
		return updated, nil
	case store.IsNotFoundError(err):
		return nil, err
	case errors.Is(err, store.ErrInvalidEntity):
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return nil, NewFlashcardServiceError("update", "failed to update flashcard", err)
	}
}

// Delete implements FlashcardService.
func (s *flashcardServiceImpl) Delete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoIDs
	}
	n, err := s.store.Delete(ctx, ids)
	if err != nil {
		return 0, NewFlashcardServiceError("delete", "failed to delete flashcards", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "flashcards deleted",
		slog.Int("requested", len(ids)),
		slog.Int64("deleted", n))
	return n, nil
}

// Ready implements FlashcardService.
func (s *flashcardServiceImpl) Ready(ctx context.Context) error {
	return s.generator.Ready(ctx)
}
