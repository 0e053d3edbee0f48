package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extract decompresses an in-memory zip archive into dir. Entries ending
// in "/" are directory markers and are skipped; file entries are written
// with an unconditional overwrite, so re-extracting the same archive is
// idempotent. Files present on disk but absent from the archive are left
// alone. There is no rollback: a write failure partway through leaves a
// mixed tree behind and is reported to the caller.
func Extract(data []byte, dir string) error {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("ARC_OPEN: %w", err)
	}
	cleanDir := filepath.Clean(dir)
	for _, entry := range reader.File {
		if strings.HasSuffix(entry.Name, "/") {
			continue
		}
		dest := filepath.Join(cleanDir, filepath.FromSlash(entry.Name))
		if !strings.HasPrefix(dest, cleanDir+string(os.PathSeparator)) {
			return fmt.Errorf("ARC_ENTRY_PATH: entry %q escapes target directory", entry.Name)
		}
		if err := writeEntry(entry, dest); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(entry *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("ARC_WRITE: %w", err)
	}
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("ARC_READ: entry %q: %w", entry.Name, err)
	}
	blob, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return fmt.Errorf("ARC_READ: entry %q: %w", entry.Name, err)
	}
	if err := os.WriteFile(dest, blob, 0o644); err != nil {
		return fmt.Errorf("ARC_WRITE: %w", err)
	}
	return nil
}
