package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashgen/internal/api/shared"
	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/generation"
	"github.com/phrazzld/flashgen/internal/generation/generationtest"
	"github.com/phrazzld/flashgen/internal/platform/logger"
	"github.com/phrazzld/flashgen/internal/platform/sqlite"
	"github.com/phrazzld/flashgen/internal/service"
	"github.com/phrazzld/flashgen/internal/task"
	"github.com/phrazzld/flashgen/internal/testdb"
)

func TestRouterAPIKey(t *testing.T) {
	svc := &MockFlashcardService{}
	svc.On("Ready", mock.Anything).Return(nil)
	svc.On("List", mock.Anything).Return([]*domain.Flashcard{}, nil)

	log, _ := logger.GetTestLogger(t)
	router := NewRouter(RouterConfig{
		FlashcardService: svc,
		APIKey:           "s3cret",
		Logger:           log,
	})

	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "health is public")

	rec = doJSON(t, router, http.MethodGet, "/api/flashcards", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/flashcards", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterSetsTraceHeader(t *testing.T) {
	svc := &MockFlashcardService{}
	svc.On("Ready", mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(shared.TraceIDHeader, "client-trace-1")
	rec := httptest.NewRecorder()
	newTestRouter(t, svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, "client-trace-1", rec.Header().Get(shared.TraceIDHeader))
}

// TestRouterEndToEnd drives the real service, orchestrator, SQLite store and
// task runner through the HTTP surface.
func TestRouterEndToEnd(t *testing.T) {
	ctx := context.Background()
	log, _ := logger.GetTestLogger(t)
	db := testdb.SQLite(t)

	now := func() time.Time { return testNow }
	ids := generation.NewIDSource(now)
	orch, err := generation.NewOrchestrator(generationtest.Default(), log, generation.Config{Now: now, IDs: ids})
	require.NoError(t, err)

	svc, err := service.NewFlashcardService(db, sqlite.NewFlashcardStore(db, log), orch,
		service.Config{IDs: ids, Now: now}, log)
	require.NoError(t, err)

	runner := task.NewTaskRunner(task.NewMemoryJobStore(time.Hour), task.TaskRunnerConfig{WorkerCount: 1, QueueSize: 4}, log)
	runner.Start()
	t.Cleanup(func() { _ = runner.Stop(ctx) })

	router := NewRouter(RouterConfig{
		FlashcardService: svc,
		Jobs:             runner,
		Backend:          BackendInfo{Provider: "stub"},
		Logger:           log,
	})

	rec := doJSON(t, router, http.MethodPost, "/api/generate", GenerateRequest{Text: sampleText, Count: 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var generated GenerateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&generated))
	require.Len(t, generated.Flashcards, 2)

	rec = doJSON(t, router, http.MethodPost, "/api/generate/jobs", GenerateRequest{Text: sampleText, Count: 1})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var queued JobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&queued))

	require.Eventually(t, func() bool {
		rec := doJSON(t, router, http.MethodGet, "/api/generate/jobs/"+queued.JobID, nil)
		var job JobResponse
		if json.NewDecoder(rec.Body).Decode(&job) != nil {
			return false
		}
		return job.Status == task.TaskStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	rec = doJSON(t, router, http.MethodGet, "/api/flashcards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cards []*domain.Flashcard
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cards))
	assert.Len(t, cards, 3)

	target := generated.Flashcards[0].ID
	rec = doJSON(t, router, http.MethodPut, "/api/flashcards/"+strconv.FormatInt(target, 10), map[string]any{"bookmarked": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodDelete, "/api/flashcards", DeleteRequest{IDs: []int64{target}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/flashcards", nil)
	cards = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cards))
	assert.Len(t, cards, 2)
}
