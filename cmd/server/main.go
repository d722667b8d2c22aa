// Package main implements the flashgen HTTP server, which turns study text
// into flashcards and stores them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/flashgen/internal/app"
	"github.com/phrazzld/flashgen/internal/config"
	"github.com/phrazzld/flashgen/internal/platform/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "flashgen server: %v\n", err)
		os.Exit(1)
	}
}

// run parses flags, builds the application and serves until SIGINT or SIGTERM.
func run(args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	migrate := fs.Bool("migrate", false, "apply pending database migrations before serving")
	configPath := fs.String("config", "", "path to a YAML config file (default: ./config.yaml if present)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.Bool("api_key_required", cfg.Server.APIKey != ""))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log, app.Options{Migrate: *migrate})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return newServer(application).Run(ctx)
}
