package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"partwise/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace_OK(t *testing.T) {
	statfs := func(string) (uint64, uint64, error) { return 100 << 30, 40 << 30, nil }
	result := CheckFreeSpace("volume", "/anywhere", statfs)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result.Detail == "" {
		t.Fatal("expected detail with sizes")
	}
}

func TestCheckFreeSpace_QueryFails(t *testing.T) {
	statfs := func(string) (uint64, uint64, error) { return 0, 0, errors.New("no such fs") }
	result := CheckFreeSpace("volume", "/anywhere", statfs)
	if result.Passed {
		t.Fatal("expected failure when statfs errors")
	}
}

func TestStatfs_RealVolume(t *testing.T) {
	total, free, err := Statfs(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if total == 0 {
		t.Fatal("expected non-zero volume size")
	}
	if free > total {
		t.Fatalf("free %d exceeds total %d", free, total)
	}
}

func TestRunAll(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DatasetsRoot = filepath.Join(dir, "datasets")
	cfg.Paths.DownloadsDir = filepath.Join(dir, "downloads")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(&cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	// Downloads dir was never created, so that check should fail.
	var downloadsFailed bool
	for _, r := range results {
		if r.Name == "Downloads directory" && !r.Passed {
			downloadsFailed = true
		}
	}
	if !downloadsFailed {
		t.Fatal("expected downloads directory check to fail")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatalf("expected nil, got %v", results)
	}
}
