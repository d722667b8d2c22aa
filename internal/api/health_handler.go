package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/flashgen/internal/api/shared"
	"github.com/phrazzld/flashgen/internal/platform/logger"
	"github.com/phrazzld/flashgen/internal/redact"
	"github.com/phrazzld/flashgen/internal/service"
)

// healthCheckTimeout bounds the backend readiness probe.
const healthCheckTimeout = 5 * time.Second

// BackendInfo names the configured text-completion backend.
type BackendInfo struct {
	Provider string
	Model    string
}

// HealthHandler reports server and backend status.
type HealthHandler struct {
	flashcardService service.FlashcardService
	backend          BackendInfo
	now              func() time.Time
	logger           *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(flashcardService service.FlashcardService, backend BackendInfo, logger *slog.Logger) *HealthHandler {
	if flashcardService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("flashcardService cannot be nil for HealthHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for HealthHandler")
	}
	return &HealthHandler{
		flashcardService: flashcardService,
		backend:          backend,
		now:              time.Now,
		logger:           logger.With(slog.String("component", "health_handler")),
	}
}

// Health handles GET /api/health. It always answers 200; an unready backend
// shows up as backend.ready=false so the server stays routable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := BackendStatus{
		Provider: h.backend.Provider,
		Model:    h.backend.Model,
		Ready:    true,
	}
	if err := h.flashcardService.Ready(ctx); err != nil {
		log.Warn("backend not ready", slog.String("error", redact.Error(err)))
		status.Ready = false
		status.Error = GetSafeErrorMessage(err)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC(),
		Backend:   status,
	})
}
