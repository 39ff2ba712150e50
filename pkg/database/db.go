package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	name        TEXT PRIMARY KEY,
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS saved_ads (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	collection    TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
	ad_archive_id TEXT NOT NULL,
	page_name     TEXT,
	start_date    TEXT,
	record        TEXT NOT NULL,
	notes         TEXT NOT NULL DEFAULT '',
	saved_at      TIMESTAMP NOT NULL,
	UNIQUE (collection, ad_archive_id)
);

CREATE INDEX IF NOT EXISTS idx_saved_ads_collection ON saved_ads (collection, saved_at);

CREATE TABLE IF NOT EXISTS generated_images (
	id           TEXT PRIMARY KEY,
	collection   TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
	saved_ad_id  INTEGER NOT NULL REFERENCES saved_ads(id) ON DELETE CASCADE,
	variant_name TEXT NOT NULL,
	prompt_text  TEXT NOT NULL,
	file_path    TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL
);
`

// Open opens (creating if needed) the SQLite database at path and applies the schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure data dir: %w", err)
		}
	}

	// foreign_keys must be set per connection, so it goes in the DSN
	dsn := "file:" + path + "?" + url.Values{
		"_foreign_keys": {"on"},
		"_busy_timeout": {"5000"},
	}.Encode()

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return db, nil
}
