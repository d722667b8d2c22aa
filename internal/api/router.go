package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/flashgen/internal/api/middleware"
	"github.com/phrazzld/flashgen/internal/service"
)

// RouterConfig holds the dependencies of NewRouter.
type RouterConfig struct {
	FlashcardService service.FlashcardService
	Jobs             JobRunner
	Backend          BackendInfo

	// APIKey, when set, must be sent as a Bearer token on every route except
	// the health check.
	APIKey      string
	CORSOrigins []string

	Logger *slog.Logger
}

// NewRouter creates the HTTP handler with all routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	flashcardHandler := NewFlashcardHandler(cfg.FlashcardService, log)
	healthHandler := NewHealthHandler(cfg.FlashcardService, cfg.Backend, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewTraceMiddleware(log))
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPIKey(cfg.APIKey))

			r.Post("/generate", flashcardHandler.Generate)
			r.Post("/generate/upload", flashcardHandler.Upload)

			r.Get("/flashcards", flashcardHandler.List)
			r.Put("/flashcards/{id}", flashcardHandler.Update)
			r.Delete("/flashcards", flashcardHandler.Delete)

			if cfg.Jobs != nil {
				jobHandler := NewJobHandler(cfg.FlashcardService, cfg.Jobs, log)
				r.Post("/generate/jobs", jobHandler.Submit)
				r.Get("/generate/jobs/{id}", jobHandler.Get)
			}
		})
	})

	return r
}
