package config

const (
	defaultComicVineBaseURL = "https://comicvine.gamespot.com/api"
	defaultUserAgent        = "Runarr/1.0"
	defaultCachePath        = "~/.cache/runarr/issues.db"
	defaultExtrasDirName    = "Extras"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Library: Library{
			ExtrasDirName: defaultExtrasDirName,
		},
		ComicVine: ComicVine{
			BaseURL:   defaultComicVineBaseURL,
			UserAgent: defaultUserAgent,
		},
		Cache: Cache{
			Enabled: true,
			Path:    defaultCachePath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
