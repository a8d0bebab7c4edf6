package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// DatasetsRoot is where extracted datasets are laid out:
	// <datasets_root>/<dataset>/<category>/...
	DatasetsRoot string `toml:"datasets_root"`
	// DownloadsDir is where downloaded archives are expected; commands that
	// take bare filenames resolve them against this directory.
	DownloadsDir string `toml:"downloads_dir"`
	LogDir       string `toml:"log_dir"`
	// LedgerPath overrides the default run-history database location
	// (<log_dir>/ledger.db).
	LedgerPath string `toml:"ledger_path"`
}

// Extraction contains policy for the extraction pipeline.
type Extraction struct {
	// ArchiveExtension is the filename extension treated as an archive when
	// grouping downloaded files into categories.
	ArchiveExtension string `toml:"archive_extension"`
	// OverwriteExisting allows extraction into a category directory that
	// already exists.
	OverwriteExisting bool `toml:"overwrite_existing"`
	// DiskSpaceMargin multiplies the uncompressed size during the free-space
	// preflight. 1.1 requires 10% headroom.
	DiskSpaceMargin float64 `toml:"disk_space_margin"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for partwise.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Extraction Extraction `toml:"extraction"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/partwise/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path, the third reports whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("partwise.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	fields := []*string{
		&c.Paths.DatasetsRoot,
		&c.Paths.DownloadsDir,
		&c.Paths.LogDir,
		&c.Paths.LedgerPath,
	}
	for _, field := range fields {
		if strings.TrimSpace(*field) == "" {
			*field = ""
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Extraction.ArchiveExtension = strings.TrimSpace(c.Extraction.ArchiveExtension)
	if c.Extraction.ArchiveExtension != "" && !strings.HasPrefix(c.Extraction.ArchiveExtension, ".") {
		c.Extraction.ArchiveExtension = "." + c.Extraction.ArchiveExtension
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// EnsureDirectories creates the directories partwise writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DatasetsRoot, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath resolves the run-history database location.
func (c *Config) LedgerPath() string {
	if strings.TrimSpace(c.Paths.LedgerPath) != "" {
		return c.Paths.LedgerPath
	}
	return filepath.Join(c.Paths.LogDir, "ledger.db")
}

// SampleConfig returns the annotated sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to target.
func CreateSample(target string) error {
	return os.WriteFile(target, []byte(sampleConfig), 0o644)
}

// ExpandPath expands a leading ~ and resolves the path to absolute form.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
