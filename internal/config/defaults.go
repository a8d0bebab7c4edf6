package config

const (
	defaultDatasetsRoot     = "~/.local/share/partwise/datasets"
	defaultDownloadsDir     = "~/.local/share/partwise/downloads"
	defaultLogDir           = "~/.local/share/partwise/logs"
	defaultArchiveExtension = ".zip"
	defaultDiskSpaceMargin  = 1.1
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DatasetsRoot: defaultDatasetsRoot,
			DownloadsDir: defaultDownloadsDir,
			LogDir:       defaultLogDir,
		},
		Extraction: Extraction{
			ArchiveExtension:  defaultArchiveExtension,
			OverwriteExisting: false,
			DiskSpaceMargin:   defaultDiskSpaceMargin,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
