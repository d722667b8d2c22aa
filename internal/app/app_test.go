package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashgen/internal/config"
	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/platform/logger"
)

const passage = "The water cycle describes how water evaporates from oceans, condenses into clouds " +
	"and returns to the surface as precipitation. Rivers carry it back to the sea."

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, LogLevel: "debug"},
		Database: config.DatabaseConfig{Driver: "sqlite", URL: filepath.Join(t.TempDir(), "flashgen.db")},
		LLM:      config.LLMConfig{Provider: "stub", CallTimeout: 5 * time.Second},
		Generation: config.GenerationConfig{
			MaxChunkSize:  1000,
			Concurrency:   2,
			DefaultCount:  3,
			MinTextLength: 50,
		},
		Jobs: config.JobsConfig{Workers: 1, QueueSize: 4},
	}
}

func TestNewWiresStubStack(t *testing.T) {
	ctx := context.Background()
	log, _ := logger.GetTestLogger(t)

	a, err := New(ctx, testConfig(t), log, Options{Migrate: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	assert.Equal(t, "stub", a.Backend.Name())
	require.NoError(t, a.Service.Ready(ctx))

	outcome, err := a.Service.GenerateAndSave(ctx, domain.GenerationRequest{Text: passage})
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Requested, "configured default count applies")
	assert.Equal(t, 3, outcome.Succeeded)

	cards, err := a.Service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cards, 3)
}

func TestNewErrors(t *testing.T) {
	ctx := context.Background()
	log, _ := logger.GetTestLogger(t)

	_, err := New(ctx, nil, log, Options{})
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Database.Driver = "mysql"
	_, err = New(ctx, cfg, log, Options{})
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Generation.PromptDir = filepath.Join(t.TempDir(), "missing")
	_, err = New(ctx, cfg, log, Options{Migrate: true})
	assert.ErrorContains(t, err, "failed to load prompts")
}

func TestCloseStopsRunner(t *testing.T) {
	ctx := context.Background()
	log, _ := logger.GetTestLogger(t)

	a, err := New(ctx, testConfig(t), log, Options{Migrate: true})
	require.NoError(t, err)
	a.Runner.Start()

	require.NoError(t, a.Close(ctx))
	assert.Error(t, a.DB.PingContext(ctx), "database is closed")
}
