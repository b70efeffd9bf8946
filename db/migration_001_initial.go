package db

import "database/sql"

func init() {
	RegisterMigration(Migration{
		Version:     1,
		Description: "command log and backup history",
		Up: func(db *sql.DB) error {
			_, err := db.Exec(`
				CREATE TABLE IF NOT EXISTS command_log (
					id TEXT PRIMARY KEY,
					command TEXT NOT NULL,
					source TEXT NOT NULL,
					created_at INTEGER NOT NULL
				);

				CREATE TABLE IF NOT EXISTS backups (
					id TEXT PRIMARY KEY,
					archive_path TEXT NOT NULL,
					size_bytes INTEGER NOT NULL DEFAULT 0,
					duration_ms INTEGER NOT NULL DEFAULT 0,
					error TEXT NOT NULL DEFAULT '',
					created_at INTEGER NOT NULL
				);

				CREATE INDEX IF NOT EXISTS idx_command_log_created ON command_log(created_at DESC);
				CREATE INDEX IF NOT EXISTS idx_backups_created ON backups(created_at DESC);
			`)
			return err
		},
	})
}
