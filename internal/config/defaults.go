package config

const (
	defaultID3v1Encoding   = "iso-8859-1"
	defaultMaxPictureBytes = 16 << 20
	defaultStorePath       = "~/.local/share/mediameta/mediameta.db"
	defaultLogFormat       = "console"
	defaultLogLevel        = "warn"
	defaultHistoryLimit    = 20
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Analysis: Analysis{
			ParseID3v1:      true,
			ParseID3v2:      true,
			ID3v1Encoding:   defaultID3v1Encoding,
			MaxPictureBytes: defaultMaxPictureBytes,
		},
		Store: Store{
			Path:         defaultStorePath,
			HistoryLimit: defaultHistoryLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
