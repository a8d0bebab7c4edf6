package preflight

import (
	"path/filepath"

	"partwise/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Datasets root", cfg.Paths.DatasetsRoot))
	if cfg.Paths.DownloadsDir != "" {
		results = append(results, CheckDirectoryAccess("Downloads directory", cfg.Paths.DownloadsDir))
	}
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckDirectoryAccess("Ledger location", filepath.Dir(cfg.LedgerPath())))
	results = append(results, CheckFreeSpace("Datasets volume", cfg.Paths.DatasetsRoot, Statfs))
	return results
}
