package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/flashgen/internal/domain"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Terminal reports whether no further transition can happen.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Task type constants
const (
	// TaskTypeGeneration generates and saves flashcards for one request.
	TaskTypeGeneration = "flashcard_generation"
)

// Common errors
var (
	ErrJobNotFound = errors.New("job not found")
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// OutcomeReporter is implemented by tasks that produce a generation outcome.
// The runner stores the outcome with the job once Execute succeeds.
type OutcomeReporter interface {
	Outcome() *domain.GenerationOutcome
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue
// allowing services to enqueue tasks for processing
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}

// Job is the externally visible record of a submitted task.
type Job struct {
	ID        uuid.UUID                 `json:"job_id"`
	Type      string                    `json:"type"`
	Status    TaskStatus                `json:"status"`
	Error     string                    `json:"error,omitempty"`
	Outcome   *domain.GenerationOutcome `json:"outcome,omitempty"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// JobStore records job state for polling clients.
type JobStore interface {
	// SaveTask records a new pending job for task.
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus moves a job to status. errorMsg is kept for failed jobs.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// SaveOutcome attaches the generation outcome to a job.
	SaveOutcome(ctx context.Context, taskID uuid.UUID, outcome *domain.GenerationOutcome) error

	// Get returns a copy of the job or ErrJobNotFound.
	Get(ctx context.Context, taskID uuid.UUID) (*Job, error)
}
