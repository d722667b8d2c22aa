package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/flashgen/internal/domain"
)

// MemoryJobStore keeps jobs in process memory. Jobs do not survive a
// restart; finished jobs older than the retention window are dropped on
// the next SaveTask.
type MemoryJobStore struct {
	mu        sync.RWMutex
	jobs      map[uuid.UUID]*Job
	retention time.Duration
	now       func() time.Time
}

// DefaultJobRetention is how long finished jobs stay queryable.
const DefaultJobRetention = time.Hour

// NewMemoryJobStore creates an empty store. A non-positive retention keeps
// finished jobs for DefaultJobRetention.
func NewMemoryJobStore(retention time.Duration) *MemoryJobStore {
	if retention <= 0 {
		retention = DefaultJobRetention
	}
	return &MemoryJobStore{
		jobs:      make(map[uuid.UUID]*Job),
		retention: retention,
		now:       time.Now,
	}
}

// SaveTask implements JobStore.
func (s *MemoryJobStore) SaveTask(_ context.Context, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[task.ID()]; exists {
		return fmt.Errorf("job %s already exists", task.ID())
	}

	now := s.now().UTC()
	s.evictLocked(now)
	s.jobs[task.ID()] = &Job{
		ID:        task.ID(),
		Type:      task.Type(),
		Status:    TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

// UpdateTaskStatus implements JobStore.
func (s *MemoryJobStore) UpdateTaskStatus(_ context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, taskID)
	}
	job.Status = status
	job.Error = errorMsg
	job.UpdatedAt = s.now().UTC()
	return nil
}

// SaveOutcome implements JobStore.
func (s *MemoryJobStore) SaveOutcome(_ context.Context, taskID uuid.UUID, outcome *domain.GenerationOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, taskID)
	}
	job.Outcome = outcome
	job.UpdatedAt = s.now().UTC()
	return nil
}

// Get implements JobStore.
func (s *MemoryJobStore) Get(_ context.Context, taskID uuid.UUID) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, taskID)
	}
	cp := *job
	return &cp, nil
}

func (s *MemoryJobStore) evictLocked(now time.Time) {
	for id, job := range s.jobs {
		if job.Status.Terminal() && now.Sub(job.UpdatedAt) > s.retention {
			delete(s.jobs, id)
		}
	}
}
