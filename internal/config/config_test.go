package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_IsValidAfterNormalize(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if !filepath.IsAbs(cfg.Paths.DatasetsRoot) {
		t.Fatalf("datasets root not expanded: %q", cfg.Paths.DatasetsRoot)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("file should not exist")
	}
	if resolved != path {
		t.Fatalf("resolved path %q, want %q", resolved, path)
	}
	if cfg.Extraction.ArchiveExtension != ".zip" {
		t.Fatalf("default extension lost: %q", cfg.Extraction.ArchiveExtension)
	}
}

func TestLoad_ParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
datasets_root = "` + dir + `/datasets"
log_dir = "` + dir + `/logs"

[extraction]
archive_extension = "zip"
disk_space_margin = 1.25

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Extraction.ArchiveExtension != ".zip" {
		t.Fatalf("extension not normalized: %q", cfg.Extraction.ArchiveExtension)
	}
	if cfg.Extraction.DiskSpaceMargin != 1.25 {
		t.Fatalf("margin: %g", cfg.Extraction.DiskSpaceMargin)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not lowercased: %+v", cfg.Logging)
	}
}

func TestLoad_RejectsBadMargin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[extraction]
disk_space_margin = 0.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error for margin < 1")
	}
}

func TestLoad_RejectsBadLogFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"yaml\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error for format")
	}
}

func TestLedgerPath(t *testing.T) {
	cfg := Default()
	cfg.Paths.LogDir = "/var/log/partwise"
	if got := cfg.LedgerPath(); got != "/var/log/partwise/ledger.db" {
		t.Fatalf("got %q", got)
	}
	cfg.Paths.LedgerPath = "/data/ledger.db"
	if got := cfg.LedgerPath(); got != "/data/ledger.db" {
		t.Fatalf("override ignored: %q", got)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.DatasetsRoot = filepath.Join(dir, "datasets")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{cfg.Paths.DatasetsRoot, cfg.Paths.LogDir} {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory %q missing: %v", p, err)
		}
	}
}

func TestSampleConfig_NotEmpty(t *testing.T) {
	if !strings.Contains(SampleConfig(), "datasets_root") {
		t.Fatal("sample config should document datasets_root")
	}
}
