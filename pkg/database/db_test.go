package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ads.db")

	db, err := Open(t.Context(), path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"collections", "saved_ads", "generated_images"} {
		var name string
		err := db.QueryRowContext(t.Context(),
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	var mode string
	require.NoError(t, db.QueryRowContext(t.Context(), `PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, db.QueryRowContext(t.Context(), `PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ads.db")

	db, err := Open(t.Context(), path)
	require.NoError(t, err)
	_, err = db.ExecContext(t.Context(),
		`INSERT INTO collections (name, description, created_at) VALUES ('ads_x', '', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(t.Context(), path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRowContext(t.Context(), `SELECT COUNT(*) FROM collections`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpen_ForeignKeysEnforced(t *testing.T) {
	db, err := Open(t.Context(), filepath.Join(t.TempDir(), "ads.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(t.Context(),
		`INSERT INTO saved_ads (collection, ad_archive_id, record, saved_at) VALUES ('ads_missing', '1', '{}', CURRENT_TIMESTAMP)`)
	assert.Error(t, err)
}
