package db

import "database/sql"

// MigrateUp creates the key-value table backing the durable cache store.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS cache_entries (
    cache_key  TEXT PRIMARY KEY,
    value      BLOB NOT NULL,
    updated_at INTEGER NOT NULL
)`); err != nil {
		return err
	}

	// cleanup and diagnostics scan by recency
	if _, err := db.Exec(
		`CREATE INDEX IF NOT EXISTS idx_cache_entries_updated_at ON cache_entries(updated_at)`,
	); err != nil {
		return err
	}

	return nil
}
