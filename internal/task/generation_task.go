package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/platform/logger"
)

// ErrNilGenerator is returned when a GenerationTask is built without a generator.
var ErrNilGenerator = errors.New("generator cannot be nil")

// Generator generates and saves flashcards. service.FlashcardService implements it.
type Generator interface {
	GenerateAndSave(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOutcome, error)
}

// generationPayload is the serialized form of a GenerationTask.
type generationPayload struct {
	Text     string                `json:"text"`
	Subjects []string              `json:"subjects,omitempty"`
	Count    int                   `json:"count,omitempty"`
	Mode     domain.GenerationMode `json:"mode,omitempty"`
}

// GenerationTask generates and saves the flashcards for one request.
type GenerationTask struct {
	id        uuid.UUID
	req       domain.GenerationRequest
	generator Generator
	logger    *slog.Logger
	outcome   *domain.GenerationOutcome
}

// NewGenerationTask creates a task for req.
func NewGenerationTask(req domain.GenerationRequest, generator Generator, logger *slog.Logger) (*GenerationTask, error) {
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.New()
	return &GenerationTask{
		id:        id,
		req:       req,
		generator: generator,
		logger:    logger.With("task_type", TaskTypeGeneration, "job_id", id),
	}, nil
}

// ID returns the task's unique identifier
func (t *GenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *GenerationTask) Type() string {
	return TaskTypeGeneration
}

// Payload returns the request as JSON.
func (t *GenerationTask) Payload() []byte {
	payload, err := json.Marshal(generationPayload{
		Text:     t.req.Text,
		Subjects: t.req.Subjects,
		Count:    t.req.Count,
		Mode:     t.req.Mode,
	})
	if err != nil {
		t.logger.Error("failed to marshal payload", "error", err)
		return nil
	}
	return payload
}

// Execute generates and saves the flashcards.
func (t *GenerationTask) Execute(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, t.logger)
	log.InfoContext(ctx, "starting flashcard generation job",
		slog.Int("count", t.req.Count),
		slog.Any("subjects", t.req.Subjects))

	outcome, err := t.generator.GenerateAndSave(ctx, t.req)
	if err != nil {
		return fmt.Errorf("generation job %s: %w", t.id, err)
	}
	t.outcome = outcome
	return nil
}

// Outcome returns the result of a successful Execute, or nil.
func (t *GenerationTask) Outcome() *domain.GenerationOutcome {
	return t.outcome
}

func parseTaskID(id string) (uuid.UUID, error) {
	taskID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not a job id", ErrJobNotFound, id)
	}
	return taskID, nil
}
