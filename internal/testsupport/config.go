package testsupport

import (
	"path/filepath"
	"testing"

	"partwise/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DatasetsRoot = filepath.Join(base, "datasets")
	cfg.Paths.DownloadsDir = filepath.Join(base, "downloads")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithOverwrite enables overwriting existing category directories.
func WithOverwrite() ConfigOption {
	return func(c *config.Config) {
		c.Extraction.OverwriteExisting = true
	}
}

// WithDiskSpaceMargin overrides the free-space margin on the test config.
func WithDiskSpaceMargin(margin float64) ConfigOption {
	return func(c *config.Config) {
		c.Extraction.DiskSpaceMargin = margin
	}
}
