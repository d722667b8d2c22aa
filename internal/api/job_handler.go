package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/flashgen/internal/api/shared"
	"github.com/phrazzld/flashgen/internal/platform/logger"
	"github.com/phrazzld/flashgen/internal/service"
	"github.com/phrazzld/flashgen/internal/task"
)

// JobRunner accepts background tasks and reports their progress.
// *task.TaskRunner implements it.
type JobRunner interface {
	Submit(ctx context.Context, t task.Task) error
	Job(ctx context.Context, id string) (*task.Job, error)
}

// JobHandler handles asynchronous generation jobs.
type JobHandler struct {
	flashcardService service.FlashcardService
	runner           JobRunner
	logger           *slog.Logger
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(flashcardService service.FlashcardService, runner JobRunner, logger *slog.Logger) *JobHandler {
	if flashcardService == nil || runner == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("flashcardService and runner cannot be nil for JobHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for JobHandler")
	}

	return &JobHandler{
		flashcardService: flashcardService,
		runner:           runner,
		logger:           logger.With(slog.String("component", "job_handler")),
	}
}

// Submit handles POST /api/generate/jobs. The request is checked before it
// is queued so bad input fails fast with 400 instead of a failed job.
func (h *JobHandler) Submit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var body GenerateRequest
	if !decodeAndValidate(w, r, &body, log) {
		return
	}

	req, err := h.flashcardService.PrepareRequest(body.toDomain())
	if err != nil {
		handleServiceError(w, r, err, "")
		return
	}

	t, err := task.NewGenerationTask(req, h.flashcardService, h.logger)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to create generation job", err)
		return
	}

	if err := h.runner.Submit(r.Context(), t); err != nil {
		handleServiceError(w, r, err, "Failed to queue generation job")
		return
	}

	log.Info("generation job queued",
		slog.String("job_id", t.ID().String()),
		slog.Int("count", req.Count))
	shared.RespondWithJSON(w, r, http.StatusAccepted, JobResponse{
		JobID:  t.ID().String(),
		Status: task.TaskStatusPending,
	})
}

// Get handles GET /api/generate/jobs/{id}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.runner.Job(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err, "Failed to fetch job")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, jobResponse(job))
}
