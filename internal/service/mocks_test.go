package service

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/store"
)

// MockGenerator is a mock implementation of Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOutcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GenerationOutcome), args.Error(1)
}

func (m *MockGenerator) Ready(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockFlashcardStore is a mock implementation of store.FlashcardStore.
// WithTx returns the mock itself so expectations hold inside transactions.
type MockFlashcardStore struct {
	mock.Mock
}

func (m *MockFlashcardStore) Upsert(ctx context.Context, cards []*domain.Flashcard) error {
	args := m.Called(ctx, cards)
	return args.Error(0)
}

func (m *MockFlashcardStore) Get(ctx context.Context, id int64) (*domain.Flashcard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardStore) ListAll(ctx context.Context) ([]*domain.Flashcard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardStore) Update(ctx context.Context, id int64, patch domain.FlashcardPatch) (*domain.Flashcard, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardStore) Delete(ctx context.Context, ids []int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return m
}
