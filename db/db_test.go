package db

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestCommandLogRoundTrip(t *testing.T) {
	d := openTestDB(t)

	for _, cmd := range []string{"/list", "say hello", "/stop"} {
		if err := d.RecordCommand(cmd, "api"); err != nil {
			t.Fatalf("RecordCommand(%q): %v", cmd, err)
		}
		time.Sleep(2 * time.Millisecond) // distinct created_at
	}

	records, err := d.ListCommands(2)
	if err != nil {
		t.Fatalf("ListCommands: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Command != "/stop" || records[1].Command != "say hello" {
		t.Fatalf("wrong order: %q, %q", records[0].Command, records[1].Command)
	}
	if records[0].Source != "api" {
		t.Fatalf("Source = %q", records[0].Source)
	}
	if records[0].ID == "" {
		t.Fatal("record has no id")
	}
}

func TestBackupHistoryRoundTrip(t *testing.T) {
	d := openTestDB(t)

	ok := BackupRecord{
		ArchivePath: "/srv/mc/2024-05-01T04-00-00Z.tar.gz",
		SizeBytes:   123456,
		Duration:    42 * time.Second,
	}
	if err := d.RecordBackup(ok); err != nil {
		t.Fatalf("RecordBackup: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	failed := BackupRecord{Error: "world backup failed: no space left on device"}
	if err := d.RecordBackup(failed); err != nil {
		t.Fatalf("RecordBackup: %v", err)
	}

	records, err := d.ListBackups(10)
	if err != nil {
		t.Fatalf("ListBackups: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Error == "" || records[1].Error != "" {
		t.Fatalf("wrong order: %+v", records)
	}
	if records[1].ArchivePath != ok.ArchivePath {
		t.Fatalf("ArchivePath = %q", records[1].ArchivePath)
	}
	if records[1].SizeBytes != 123456 {
		t.Fatalf("SizeBytes = %d", records[1].SizeBytes)
	}
	if records[1].Duration != 42*time.Second {
		t.Fatalf("Duration = %v", records[1].Duration)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite")

	d1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := d1.RecordCommand("/list", "api"); err != nil {
		t.Fatalf("RecordCommand: %v", err)
	}
	d1.Close()

	d2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer d2.Close()

	records, err := d2.ListCommands(10)
	if err != nil {
		t.Fatalf("ListCommands: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records after reopen, want 1", len(records))
	}
}
