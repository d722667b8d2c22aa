package api

import (
	"fmt"
	"time"

	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/task"
)

// GenerateRequest is the body of POST /api/generate and /api/generate/jobs.
// Minimum text length is enforced by the service.
type GenerateRequest struct {
	Text     string   `json:"text"     validate:"required"`
	Subjects []string `json:"subjects" validate:"omitempty,max=20,dive,max=100"`
	Count    int      `json:"count"    validate:"omitempty,min=1,max=50"`
	Mode     string   `json:"mode"     validate:"omitempty,oneof=staged batch"`
}

func (r GenerateRequest) toDomain() domain.GenerationRequest {
	return domain.GenerationRequest{
		Text:     r.Text,
		Subjects: r.Subjects,
		Count:    r.Count,
		Mode:     domain.GenerationMode(r.Mode),
	}
}

// GenerateResponse reports the cards produced by a generation request.
type GenerateResponse struct {
	Flashcards []*domain.Flashcard `json:"flashcards"`
	Count      int                 `json:"count"`
	Requested  int                 `json:"requested"`
	Succeeded  int                 `json:"succeeded"`
	Failed     int                 `json:"failed"`
	Message    string              `json:"message"`
}

// DeleteRequest is the body of DELETE /api/flashcards.
type DeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// UpdateResponse is returned by PUT /api/flashcards/{id}.
type UpdateResponse struct {
	Message   string            `json:"message"`
	Flashcard *domain.Flashcard `json:"flashcard"`
}

// DeleteResponse is returned by DELETE /api/flashcards.
type DeleteResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

// JobResponse describes an asynchronous generation job.
type JobResponse struct {
	JobID     string            `json:"job_id"`
	Status    task.TaskStatus   `json:"status"`
	Error     string            `json:"error,omitempty"`
	Result    *GenerateResponse `json:"result,omitempty"`
	CreatedAt *time.Time        `json:"created_at,omitempty"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Backend   BackendStatus `json:"backend"`
}

// BackendStatus describes the text-completion backend.
type BackendStatus struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Ready    bool   `json:"ready"`
	Error    string `json:"error,omitempty"`
}

func outcomeResponse(outcome *domain.GenerationOutcome) *GenerateResponse {
	msg := "Successfully generated %d flashcards"
	if outcome.Partial() {
		msg = "Generated %d flashcards; some items could not be generated"
	}
	return &GenerateResponse{
		Flashcards: outcome.Records,
		Count:      len(outcome.Records),
		Requested:  outcome.Requested,
		Succeeded:  outcome.Succeeded,
		Failed:     outcome.Failed,
		Message:    fmt.Sprintf(msg, outcome.Succeeded),
	}
}

func jobResponse(job *task.Job) JobResponse {
	resp := JobResponse{
		JobID:     job.ID.String(),
		Status:    job.Status,
		Error:     job.Error,
		CreatedAt: &job.CreatedAt,
		UpdatedAt: &job.UpdatedAt,
	}
	if job.Outcome != nil {
		resp.Result = outcomeResponse(job.Outcome)
	}
	return resp
}
