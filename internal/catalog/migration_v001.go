package catalog

import "database/sql"

// migrateV001 creates the initial schema: one row per encoded daily video.
func migrateV001(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE movies (
			date        TEXT PRIMARY KEY,
			path        TEXT NOT NULL,
			frame_count INTEGER NOT NULL DEFAULT 0,
			width       INTEGER NOT NULL DEFAULT 0,
			height      INTEGER NOT NULL DEFAULT 0,
			encoded_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}
