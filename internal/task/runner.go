package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/flashgen/internal/platform/logger"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   16,
	}
}

// TaskRunner manages background task processing
type TaskRunner struct {
	store      JobStore
	queue      *TaskQueue
	pool       *WorkerPool
	logger     *slog.Logger
	errHandler func(task Task, err error)

	startOnce sync.Once
	stopOnce  sync.Once
	stopErr   error
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store JobStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "task_runner")

	r := &TaskRunner{
		store:  store,
		queue:  NewTaskQueue(config.QueueSize, logger),
		logger: logger,
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
	r.pool = NewWorkerPool(r.queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, r.processTask, logger)
	return r
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit records task as pending and queues it. When the queue is full the
// job is marked failed and the error wraps ErrQueueFull.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.queue.Enqueue(task); err != nil {
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			r.logger.Error("failed to mark rejected task as failed",
				"task_id", task.ID(),
				"error", updateErr)
		}
		return err
	}
	return nil
}

// Job returns the current state of a submitted task.
func (r *TaskRunner) Job(ctx context.Context, id string) (*Job, error) {
	taskID, err := parseTaskID(id)
	if err != nil {
		return nil, err
	}
	return r.store.Get(ctx, taskID)
}

// Start begins processing tasks. Calling it more than once has no effect.
func (r *TaskRunner) Start() {
	r.startOnce.Do(r.pool.Start)
}

// Stop closes the queue and waits for the workers to finish every task
// already queued. If ctx ends first, running tasks are cancelled and Stop
// returns ctx's error.
func (r *TaskRunner) Stop(ctx context.Context) error {
	r.stopOnce.Do(func() {
		r.queue.Close()
		r.Start()
		r.stopErr = r.pool.Wait(ctx)
		r.logger.Info("task runner stopped")
	})
	return r.stopErr
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(ctx context.Context, task Task, workerID int) {
	log := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)
	ctx = logger.WithLogger(ctx, log)

	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""); err != nil {
		log.Error("failed to update task status to processing", "error", err)
		return
	}

	log.Info("processing task")

	err := r.execute(ctx, task)
	if err != nil {
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to update task status to failed", "error", updateErr)
		}
		r.errHandler(task, err)
		return
	}

	if reporter, ok := task.(OutcomeReporter); ok {
		if err := r.store.SaveOutcome(ctx, task.ID(), reporter.Outcome()); err != nil {
			log.Error("failed to save task outcome", "error", err)
		}
	}

	log.Info("task completed successfully")
	if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusCompleted, ""); updateErr != nil {
		log.Error("failed to update task status to completed", "error", updateErr)
	}
}

// execute runs task, turning a panic into an error so one bad task cannot
// take a worker down.
func (r *TaskRunner) execute(ctx context.Context, task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	return task.Execute(ctx)
}

// IsRejected reports whether the runner refused a task because the queue is
// full or shutting down.
func IsRejected(err error) bool {
	return errors.Is(err, ErrQueueFull) || errors.Is(err, ErrQueueClosed)
}
