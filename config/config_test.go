package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load with missing file: %v", err)
	}
	if cfg.Port != 6969 {
		t.Fatalf("Port = %d, want 6969", cfg.Port)
	}
	if cfg.Host != "0.0.0.0" {
		t.Fatalf("Host = %q", cfg.Host)
	}
	if cfg.MaxMemoryBufferSize != 1024 {
		t.Fatalf("MaxMemoryBufferSize = %d, want 1024", cfg.MaxMemoryBufferSize)
	}
	if cfg.JavaBin != "java" {
		t.Fatalf("JavaBin = %q", cfg.JavaBin)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate passed without server_jar_path")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: 7070
server_jar_path: /srv/mc/server.jar
max_memory_buffer_size: 2048
backup_schedule: "0 4 * * *"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 7070 {
		t.Fatalf("Port = %d, want 7070", cfg.Port)
	}
	if cfg.ServerJarPath != "/srv/mc/server.jar" {
		t.Fatalf("ServerJarPath = %q", cfg.ServerJarPath)
	}
	if cfg.MaxMemoryBufferSize != 2048 {
		t.Fatalf("MaxMemoryBufferSize = %d, want 2048", cfg.MaxMemoryBufferSize)
	}
	if cfg.BackupSchedule != "0 4 * * *" {
		t.Fatalf("BackupSchedule = %q", cfg.BackupSchedule)
	}
	// Derived default: world dir sits next to the jar.
	if want := "/srv/mc/world"; cfg.WorldDirPath != want {
		t.Fatalf("WorldDirPath = %q, want %q", cfg.WorldDirPath, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: 7070\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "9090")
	t.Setenv("MC_SERVER_JAR_PATH", "/opt/server.jar")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Fatalf("Port = %d, want env override 9090", cfg.Port)
	}
	if cfg.ServerJarPath != "/opt/server.jar" {
		t.Fatalf("ServerJarPath = %q, want env override", cfg.ServerJarPath)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [not a port\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted malformed YAML")
	}
}
