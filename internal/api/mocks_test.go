package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/task"
)

// MockFlashcardService is a testify mock of service.FlashcardService.
type MockFlashcardService struct {
	mock.Mock
}

func (m *MockFlashcardService) GenerateAndSave(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOutcome, error) {
	args := m.Called(ctx, req)
	outcome, _ := args.Get(0).(*domain.GenerationOutcome)
	return outcome, args.Error(1)
}

func (m *MockFlashcardService) Preview(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOutcome, error) {
	args := m.Called(ctx, req)
	outcome, _ := args.Get(0).(*domain.GenerationOutcome)
	return outcome, args.Error(1)
}

func (m *MockFlashcardService) Import(ctx context.Context, cards []*domain.Flashcard) error {
	args := m.Called(ctx, cards)
	return args.Error(0)
}

func (m *MockFlashcardService) List(ctx context.Context) ([]*domain.Flashcard, error) {
	args := m.Called(ctx)
	cards, _ := args.Get(0).([]*domain.Flashcard)
	return cards, args.Error(1)
}

func (m *MockFlashcardService) Update(ctx context.Context, id int64, patch domain.FlashcardPatch) (*domain.Flashcard, error) {
	args := m.Called(ctx, id, patch)
	card, _ := args.Get(0).(*domain.Flashcard)
	return card, args.Error(1)
}

func (m *MockFlashcardService) Delete(ctx context.Context, ids []int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlashcardService) Ready(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockFlashcardService) PrepareRequest(req domain.GenerationRequest) (domain.GenerationRequest, error) {
	args := m.Called(req)
	return args.Get(0).(domain.GenerationRequest), args.Error(1)
}

// MockJobRunner is a testify mock of JobRunner.
type MockJobRunner struct {
	mock.Mock
}

func (m *MockJobRunner) Submit(ctx context.Context, t task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockJobRunner) Job(ctx context.Context, id string) (*task.Job, error) {
	args := m.Called(ctx, id)
	job, _ := args.Get(0).(*task.Job)
	return job, args.Error(1)
}
