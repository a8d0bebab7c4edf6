package testsupport

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ZipEntry describes one entry for a zip fixture. A name ending in "/" is
// written as a directory entry.
type ZipEntry struct {
	Name string
	Body string
}

// WriteZip creates a zip archive at path with the given entries in order.
func WriteZip(t testing.TB, path string, entries []ZipEntry) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name, "/") {
			if _, err := w.Create(entry.Name); err != nil {
				t.Fatalf("zip dir %s: %v", entry.Name, err)
			}
			continue
		}
		fw, err := w.Create(entry.Name)
		if err != nil {
			t.Fatalf("zip entry %s: %v", entry.Name, err)
		}
		if _, err := fw.Write([]byte(entry.Body)); err != nil {
			t.Fatalf("zip write %s: %v", entry.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip %s: %v", path, err)
	}
}

// WriteCorruptZip writes a file with a zip signature followed by garbage so
// format identification succeeds but reading fails.
func WriteCorruptZip(t testing.TB, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := append([]byte("PK\x03\x04"), []byte("this is not a valid archive body")...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
