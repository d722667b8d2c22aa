// Package database opens the configured database and builds the matching
// flashcard store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/flashgen/internal/config"
	"github.com/phrazzld/flashgen/internal/platform/migrations"
	"github.com/phrazzld/flashgen/internal/platform/postgres"
	"github.com/phrazzld/flashgen/internal/platform/sqlite"
	"github.com/phrazzld/flashgen/internal/store"
)

// Open connects to the database named by cfg and, when migrate is set,
// applies pending migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig, migrate bool, logger *slog.Logger) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case migrations.DriverSQLite:
		db, err = sqlite.Open(ctx, cfg.URL)
	case migrations.DriverPostgres:
		db, err = postgres.Open(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := migrations.Up(ctx, db, cfg.Driver, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// NewFlashcardStore returns the FlashcardStore implementation for driver.
func NewFlashcardStore(driver string, db store.DBTX, logger *slog.Logger) (store.FlashcardStore, error) {
	switch driver {
	case migrations.DriverSQLite:
		return sqlite.NewFlashcardStore(db, logger), nil
	case migrations.DriverPostgres:
		return postgres.NewPostgresFlashcardStore(db, logger), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}
