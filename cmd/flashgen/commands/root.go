// Package commands implements the flashgen CLI.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/phrazzld/flashgen/internal/app"
	"github.com/phrazzld/flashgen/internal/config"
	"github.com/phrazzld/flashgen/internal/platform/logger"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd creates the flashgen command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "flashgen",
		Short: "Generate study flashcards from text",
		Long: `flashgen turns study material into question, answer and explanation
flashcards using a text-completion backend, and keeps them in a local
SQLite or PostgreSQL database.

Configuration comes from ./config.yaml (or --config) and FLASHGEN_*
environment variables, e.g. FLASHGEN_LLM_PROVIDER=gemini.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newListCmd(opts),
		newImportCmd(opts),
		newMigrateCmd(opts),
		newMCPCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig loads configuration and a logger that writes to the command's
// stderr, keeping stdout for command output.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.logLevel != "" {
		cfg.Server.LogLevel = o.logLevel
		if err := config.Validate(cfg); err != nil {
			return nil, nil, err
		}
	}
	return cfg, logger.SetupWithWriter(cfg.Server, cmd.ErrOrStderr()), nil
}

// openApp builds the application, applying migrations so a fresh database
// is usable straight away.
func (o *rootOptions) openApp(cmd *cobra.Command) (*app.Application, error) {
	cfg, log, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, log, app.Options{Migrate: true})
}

// closeApp releases a and reports a failure on stderr.
func closeApp(cmd *cobra.Command, a *app.Application) {
	if err := a.Close(context.WithoutCancel(cmd.Context())); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: cleanup failed: %v\n", err)
	}
}
