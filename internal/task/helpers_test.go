package task

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/flashgen/internal/domain"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// funcTask is a Task whose Execute is supplied by the test.
type funcTask struct {
	id   uuid.UUID
	fn   func(ctx context.Context) error
	once sync.Once
	done chan struct{}
}

func newFuncTask(fn func(ctx context.Context) error) *funcTask {
	return &funcTask{id: uuid.New(), fn: fn, done: make(chan struct{})}
}

func (t *funcTask) ID() uuid.UUID   { return t.id }
func (t *funcTask) Type() string    { return "test" }
func (t *funcTask) Payload() []byte { return nil }

func (t *funcTask) Execute(ctx context.Context) error {
	defer t.once.Do(func() { close(t.done) })
	return t.fn(ctx)
}

// MockGenerator is a mock implementation of Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateAndSave(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOutcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GenerationOutcome), args.Error(1)
}
