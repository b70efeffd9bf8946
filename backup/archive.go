// Package backup creates compressed archives of the server's world data.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mholt/archives"
)

// TimestampFormat names archives with a filesystem-safe UTC instant.
const TimestampFormat = "2006-01-02T15-04-05Z"

// Create produces a gzipped tar of worldDir, written adjacent to it as
// <UTC-timestamp>.tar.gz, and returns the archive path. The partial
// archive is removed on failure.
func Create(ctx context.Context, worldDir string) (string, error) {
	if _, err := os.Stat(worldDir); err != nil {
		return "", fmt.Errorf("world directory: %w", err)
	}

	name := time.Now().UTC().Format(TimestampFormat) + ".tar.gz"
	dest := filepath.Join(filepath.Dir(worldDir), name)

	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		worldDir: filepath.Base(worldDir),
	})
	if err != nil {
		return "", fmt.Errorf("collect world files: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}
	defer out.Close()

	format := archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}
	if err := format.Archive(ctx, out, files); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("write archive: %w", err)
	}
	return dest, nil
}
