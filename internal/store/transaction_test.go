package store_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/phrazzld/flashgen/internal/store"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE items (name TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func countItems(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n))
	return n
}

func insert(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('a')`)
	return err
}

func TestRunInTransaction_Commit(t *testing.T) {
	db := openDB(t)

	err := store.RunInTransaction(context.Background(), db, insert)

	require.NoError(t, err)
	assert.Equal(t, 1, countItems(t, db))
}

func TestRunInTransaction_FunctionError(t *testing.T) {
	db := openDB(t)
	expected := errors.New("function failed")

	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		require.NoError(t, insert(ctx, tx))
		return expected
	})

	assert.Same(t, expected, err, "fn's error must be returned unchanged")
	assert.Equal(t, 0, countItems(t, db))
}

func TestRunInTransaction_Panic(t *testing.T) {
	db := openDB(t)

	assert.PanicsWithValue(t, "boom", func() {
		_ = store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			require.NoError(t, insert(ctx, tx))
			panic("boom")
		})
	})
	assert.Equal(t, 0, countItems(t, db))
}

func TestRunInTransaction_BeginError(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.Close())

	err := store.RunInTransaction(context.Background(), db, insert)

	assert.ErrorIs(t, err, store.ErrTransactionFailed)
}

func TestRunInTransaction_CancelledContext(t *testing.T) {
	db := openDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.RunInTransaction(ctx, db, insert)

	assert.Error(t, err)
	assert.Equal(t, 0, countItems(t, db))
}

// DBTX must accept both connections and transactions.
func TestDBTXInterface(t *testing.T) {
	var _ store.DBTX = (*sql.DB)(nil)
	var _ store.DBTX = (*sql.Tx)(nil)
}
