package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/service"
	"github.com/phrazzld/flashgen/internal/task"
)

func TestSubmitJob(t *testing.T) {
	t.Run("queues a prepared request", func(t *testing.T) {
		svc := &MockFlashcardService{}
		runner := &MockJobRunner{}

		prepared := domain.GenerationRequest{Text: sampleText, Count: 5}
		svc.On("PrepareRequest", domain.GenerationRequest{Text: sampleText}).Return(prepared, nil)
		runner.On("Submit", mock.Anything, mock.MatchedBy(func(tk task.Task) bool {
			return tk.Type() == task.TaskTypeGeneration
		})).Return(nil)

		rec := doJSON(t, newTestRouter(t, svc, runner), http.MethodPost, "/api/generate/jobs",
			GenerateRequest{Text: sampleText})

		require.Equal(t, http.StatusAccepted, rec.Code)
		var resp JobResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, task.TaskStatusPending, resp.Status)
		_, err := uuid.Parse(resp.JobID)
		assert.NoError(t, err)
		runner.AssertExpectations(t)
	})

	t.Run("rejects invalid input before queueing", func(t *testing.T) {
		svc := &MockFlashcardService{}
		runner := &MockJobRunner{}
		svc.On("PrepareRequest", mock.Anything).Return(domain.GenerationRequest{}, service.ErrTextTooShort)

		rec := doJSON(t, newTestRouter(t, svc, runner), http.MethodPost, "/api/generate/jobs",
			GenerateRequest{Text: "short"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		runner.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("queue full", func(t *testing.T) {
		svc := &MockFlashcardService{}
		runner := &MockJobRunner{}
		svc.On("PrepareRequest", mock.Anything).Return(domain.GenerationRequest{Text: sampleText, Count: 5}, nil)
		runner.On("Submit", mock.Anything, mock.Anything).Return(task.ErrQueueFull)

		rec := doJSON(t, newTestRouter(t, svc, runner), http.MethodPost, "/api/generate/jobs",
			GenerateRequest{Text: sampleText})

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestGetJob(t *testing.T) {
	t.Run("completed job carries its result", func(t *testing.T) {
		runner := &MockJobRunner{}
		id := uuid.New()
		runner.On("Job", mock.Anything, id.String()).Return(&task.Job{
			ID:        id,
			Type:      task.TaskTypeGeneration,
			Status:    task.TaskStatusCompleted,
			Outcome:   domain.NewGenerationOutcome(1, []*domain.Flashcard{sampleCard(1)}),
			CreatedAt: testNow,
			UpdatedAt: testNow,
		}, nil)

		rec := doJSON(t, newTestRouter(t, &MockFlashcardService{}, runner), http.MethodGet,
			"/api/generate/jobs/"+id.String(), nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp JobResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, id.String(), resp.JobID)
		assert.Equal(t, task.TaskStatusCompleted, resp.Status)
		require.NotNil(t, resp.Result)
		assert.Equal(t, 1, resp.Result.Succeeded)
	})

	t.Run("unknown job", func(t *testing.T) {
		runner := &MockJobRunner{}
		runner.On("Job", mock.Anything, "nope").Return(nil, fmt.Errorf("%w: nope", task.ErrJobNotFound))

		rec := doJSON(t, newTestRouter(t, &MockFlashcardService{}, runner), http.MethodGet,
			"/api/generate/jobs/nope", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Job not found", decodeError(t, rec).Error)
	})
}

func TestJobRoutesAbsentWithoutRunner(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, &MockFlashcardService{}, nil), http.MethodPost, "/api/generate/jobs",
		GenerateRequest{Text: sampleText})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
