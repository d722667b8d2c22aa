package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"ErrFlashcardNotFound", ErrFlashcardNotFound, true},
		{"wrapped ErrFlashcardNotFound", fmt.Errorf("update 42: %w", ErrFlashcardNotFound), true},
		{"StoreError around ErrNotFound", NewStoreError("flashcard", "get", "no row", ErrNotFound), true},
		{"ErrDuplicate", ErrDuplicate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := NewStoreError("flashcard", "upsert", "insert failed", cause)

	assert.Equal(t, "upsert operation on flashcard failed: insert failed: disk I/O error", err.Error())
	assert.ErrorIs(t, err, cause)

	var storeErr *StoreError
	wrapped := fmt.Errorf("saving batch: %w", err)
	assert.ErrorAs(t, wrapped, &storeErr)
	assert.Equal(t, "upsert", storeErr.Operation)

	bare := NewStoreError("flashcard", "list", "closed", nil)
	assert.Equal(t, "list operation on flashcard failed: closed", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
