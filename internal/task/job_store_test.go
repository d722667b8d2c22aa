package task

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashgen/internal/domain"
)

func TestMemoryJobStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore(0)
	task := newFuncTask(noop)

	require.NoError(t, s.SaveTask(ctx, task))
	assert.Error(t, s.SaveTask(ctx, task), "duplicate ids are rejected")

	job, err := s.Get(ctx, task.ID())
	require.NoError(t, err)
	assert.Equal(t, TaskStatusPending, job.Status)
	assert.Equal(t, "test", job.Type)

	require.NoError(t, s.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""))
	outcome := domain.NewGenerationOutcome(2, nil)
	require.NoError(t, s.SaveOutcome(ctx, task.ID(), outcome))
	require.NoError(t, s.UpdateTaskStatus(ctx, task.ID(), TaskStatusCompleted, ""))

	job, err = s.Get(ctx, task.ID())
	require.NoError(t, err)
	assert.Equal(t, TaskStatusCompleted, job.Status)
	assert.Same(t, outcome, job.Outcome)

	// Get returns a copy.
	job.Status = TaskStatusFailed
	again, err := s.Get(ctx, task.ID())
	require.NoError(t, err)
	assert.Equal(t, TaskStatusCompleted, again.Status)
}

func TestMemoryJobStore_UnknownJob(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore(0)
	id := uuid.New()

	_, err := s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.ErrorIs(t, s.UpdateTaskStatus(ctx, id, TaskStatusFailed, "x"), ErrJobNotFound)
	assert.ErrorIs(t, s.SaveOutcome(ctx, id, nil), ErrJobNotFound)
}

func TestMemoryJobStore_EvictsFinishedJobs(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryJobStore(time.Minute)
	s.now = func() time.Time { return now }

	finished := newFuncTask(noop)
	running := newFuncTask(noop)
	require.NoError(t, s.SaveTask(ctx, finished))
	require.NoError(t, s.SaveTask(ctx, running))
	require.NoError(t, s.UpdateTaskStatus(ctx, finished.ID(), TaskStatusCompleted, ""))
	require.NoError(t, s.UpdateTaskStatus(ctx, running.ID(), TaskStatusProcessing, ""))

	now = now.Add(2 * time.Minute)
	require.NoError(t, s.SaveTask(ctx, newFuncTask(noop)))

	_, err := s.Get(ctx, finished.ID())
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = s.Get(ctx, running.ID())
	assert.NoError(t, err)
}

func TestTaskStatus_Terminal(t *testing.T) {
	assert.False(t, TaskStatusPending.Terminal())
	assert.False(t, TaskStatusProcessing.Terminal())
	assert.True(t, TaskStatusCompleted.Terminal())
	assert.True(t, TaskStatusFailed.Terminal())
}
