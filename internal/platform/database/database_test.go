package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashgen/internal/config"
	"github.com/phrazzld/flashgen/internal/platform/database"
	"github.com/phrazzld/flashgen/internal/platform/postgres"
	"github.com/phrazzld/flashgen/internal/platform/sqlite"
)

func TestOpenSQLiteWithMigrations(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatabaseConfig{Driver: "sqlite", URL: filepath.Join(t.TempDir(), "app.db")}

	db, err := database.Open(ctx, cfg, true, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := database.NewFlashcardStore(cfg.Driver, db, nil)
	require.NoError(t, err)
	assert.IsType(t, &sqlite.FlashcardStore{}, s)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := database.Open(context.Background(), config.DatabaseConfig{Driver: "mysql", URL: "x"}, false, nil)
	assert.ErrorContains(t, err, "unsupported database driver")

	_, err = database.NewFlashcardStore("mysql", nil, nil)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestNewFlashcardStorePostgres(t *testing.T) {
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "stand-in.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := database.NewFlashcardStore("pgx", db, nil)
	require.NoError(t, err)
	assert.IsType(t, &postgres.PostgresFlashcardStore{}, s)
}
