package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DatasetsRoot) == "" {
		return errors.New("paths.datasets_root must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.ArchiveExtension == "" {
		return errors.New("extraction.archive_extension must be set")
	}
	if c.Extraction.ArchiveExtension == "." {
		return errors.New("extraction.archive_extension must name an extension")
	}
	if c.Extraction.DiskSpaceMargin < 1.0 {
		return fmt.Errorf("extraction.disk_space_margin must be >= 1.0, got %g", c.Extraction.DiskSpaceMargin)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
