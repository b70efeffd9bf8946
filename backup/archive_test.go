package backup

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	worldDir := filepath.Join(dir, "world")
	if err := os.MkdirAll(filepath.Join(worldDir, "region"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(worldDir, "level.dat"), []byte("level data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(worldDir, "region", "r.0.0.mca"), []byte("chunks"), 0o644); err != nil {
		t.Fatal(err)
	}

	path, err := Create(t.Context(), worldDir)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Fatalf("archive %s is not adjacent to the world directory", path)
	}
	namePattern := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}Z\.tar\.gz$`)
	if name := filepath.Base(path); !namePattern.MatchString(name) {
		t.Fatalf("archive name %q does not match the UTC timestamp format", name)
	}

	entries := readTarGz(t, path)
	if entries["world/level.dat"] != "level data" {
		t.Fatalf("level.dat missing or wrong, entries: %v", keys(entries))
	}
	if entries["world/region/r.0.0.mca"] != "chunks" {
		t.Fatalf("region file missing or wrong, entries: %v", keys(entries))
	}
}

func TestCreateMissingWorldDir(t *testing.T) {
	_, err := Create(t.Context(), filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("Create succeeded for a missing world directory")
	}
}

func readTarGz(t *testing.T, path string) map[string]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("archive is not gzip: %v", err)
	}
	defer gz.Close()

	entries := make(map[string]string)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read tar: %v", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("read tar entry %s: %v", hdr.Name, err)
		}
		entries[hdr.Name] = string(data)
	}
	return entries
}

func keys(m map[string]string) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
