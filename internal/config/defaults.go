package config

const (
	defaultLogFormat           = "console"
	defaultLogLevel            = "error"
	defaultJournalFile         = "journal.db"
	defaultJournalEnabled      = true
	defaultCheckSameFilesystem = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir(),
		},
		Link: Link{
			Overwrite:           false,
			CheckSameFilesystem: defaultCheckSameFilesystem,
		},
		Journal: Journal{
			Enabled: defaultJournalEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
