// Package app wires configuration into the running flashcard stack: the
// database, the text-completion backend, the orchestrator, the service and
// the background job runner.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/flashgen/internal/config"
	"github.com/phrazzld/flashgen/internal/generation"
	"github.com/phrazzld/flashgen/internal/platform/database"
	"github.com/phrazzld/flashgen/internal/platform/llm"
	"github.com/phrazzld/flashgen/internal/service"
	"github.com/phrazzld/flashgen/internal/store"
	"github.com/phrazzld/flashgen/internal/task"
)

// Options adjusts how an Application is built.
type Options struct {
	// Migrate applies pending migrations after opening the database.
	Migrate bool

	// Backend replaces the configured provider. Used by tests.
	Backend llm.Provider
}

// Application holds the shared dependencies and releases them on Close.
type Application struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *sql.DB
	Flashcards store.FlashcardStore
	Backend    llm.Provider
	Service    service.FlashcardService
	Runner     *task.TaskRunner
}

// New builds an Application from cfg. The job runner is created but not
// started; callers that serve jobs call Runner.Start.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := database.Open(ctx, cfg.Database, opts.Migrate, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("database ready",
		slog.String("driver", cfg.Database.Driver),
		slog.Bool("migrated", opts.Migrate))

	a := &Application{Config: cfg, Logger: logger, DB: db}
	if err := a.init(ctx, opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Application) init(ctx context.Context, opts Options) error {
	cfg := a.Config

	var err error
	a.Flashcards, err = database.NewFlashcardStore(cfg.Database.Driver, a.DB, a.Logger)
	if err != nil {
		return err
	}

	a.Backend = opts.Backend
	if a.Backend == nil {
		a.Backend, err = llm.New(ctx, cfg.LLM, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize text completion backend: %w", err)
		}
	}
	a.Logger.Info("text completion backend initialized",
		slog.String("provider", a.Backend.Name()),
		slog.String("model", a.Backend.Model()))

	prompts := generation.DefaultPrompts()
	if cfg.Generation.PromptDir != "" {
		prompts, err = generation.LoadPrompts(cfg.Generation.PromptDir)
		if err != nil {
			return fmt.Errorf("failed to load prompts: %w", err)
		}
	}

	ids := generation.NewIDSource(time.Now)
	orchestrator, err := generation.NewOrchestrator(a.Backend, a.Logger, generation.Config{
		MaxChunkSize:           cfg.Generation.MaxChunkSize,
		Concurrency:            cfg.Generation.Concurrency,
		DisableModelDifficulty: !cfg.Generation.ModelDifficulty,
		Prompts:                prompts,
		IDs:                    ids,
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	a.Service, err = service.NewFlashcardService(a.DB, a.Flashcards, orchestrator, service.Config{
		MinTextLength: cfg.Generation.MinTextLength,
		DefaultCount:  cfg.Generation.DefaultCount,
		IDs:           ids,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create flashcard service: %w", err)
	}

	a.Runner = task.NewTaskRunner(task.NewMemoryJobStore(task.DefaultJobRetention), task.TaskRunnerConfig{
		WorkerCount: cfg.Jobs.Workers,
		QueueSize:   cfg.Jobs.QueueSize,
	}, a.Logger)

	return nil
}

// Close stops the job runner, waiting for queued jobs until ctx ends, and
// closes the database.
func (a *Application) Close(ctx context.Context) error {
	var firstErr error
	if a.Runner != nil {
		if err := a.Runner.Stop(ctx); err != nil {
			a.Logger.Error("task runner did not drain before shutdown", slog.String("error", err.Error()))
			firstErr = err
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error("error closing database connection", slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
