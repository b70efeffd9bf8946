package db

import (
	"time"

	"github.com/google/uuid"
)

// CommandRecord is one command delivered to the server.
type CommandRecord struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"`
	Source    string    `json:"source"` // "api", "stdin", "scheduler"
	CreatedAt time.Time `json:"createdAt"`
}

// BackupRecord is one world-backup attempt, successful or not.
type BackupRecord struct {
	ID          string        `json:"id"`
	ArchivePath string        `json:"archivePath"`
	SizeBytes   int64         `json:"sizeBytes"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// RecordCommand appends a command to the log.
func (d *DB) RecordCommand(command, source string) error {
	_, err := d.conn.Exec(
		"INSERT INTO command_log (id, command, source, created_at) VALUES (?, ?, ?, ?)",
		uuid.NewString(), command, source, time.Now().UnixMilli(),
	)
	return err
}

// ListCommands returns the most recent commands, newest first.
func (d *DB) ListCommands(limit int) ([]CommandRecord, error) {
	rows, err := d.conn.Query(
		"SELECT id, command, source, created_at FROM command_log ORDER BY created_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []CommandRecord
	for rows.Next() {
		var r CommandRecord
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.Command, &r.Source, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt = time.UnixMilli(createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// RecordBackup stores the outcome of a backup attempt. ID and CreatedAt
// are filled in here.
func (d *DB) RecordBackup(rec BackupRecord) error {
	_, err := d.conn.Exec(
		"INSERT INTO backups (id, archive_path, size_bytes, duration_ms, error, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		uuid.NewString(), rec.ArchivePath, rec.SizeBytes, rec.Duration.Milliseconds(), rec.Error, time.Now().UnixMilli(),
	)
	return err
}

// ListBackups returns the most recent backup attempts, newest first.
func (d *DB) ListBackups(limit int) ([]BackupRecord, error) {
	rows, err := d.conn.Query(
		"SELECT id, archive_path, size_bytes, duration_ms, error, created_at FROM backups ORDER BY created_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []BackupRecord
	for rows.Next() {
		var r BackupRecord
		var durationMS, createdAt int64
		if err := rows.Scan(&r.ID, &r.ArchivePath, &r.SizeBytes, &durationMS, &r.Error, &createdAt); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.CreatedAt = time.UnixMilli(createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}
