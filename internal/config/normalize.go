package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Library.OutputDir, err = expandPath(c.Library.OutputDir); err != nil {
		return fmt.Errorf("library.output_dir: %w", err)
	}
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	if c.Logging.LogDir, err = expandPath(c.Logging.LogDir); err != nil {
		return fmt.Errorf("logging.log_dir: %w", err)
	}

	if c.Library.ExtrasDirName = strings.TrimSpace(c.Library.ExtrasDirName); c.Library.ExtrasDirName == "" {
		c.Library.ExtrasDirName = defaultExtrasDirName
	}

	c.ComicVine.APIKey = strings.TrimSpace(c.ComicVine.APIKey)
	if c.ComicVine.APIKey == "" {
		c.ComicVine.APIKey = strings.TrimSpace(os.Getenv("COMICVINE_API_KEY"))
	}
	c.ComicVine.BaseURL = strings.TrimRight(strings.TrimSpace(c.ComicVine.BaseURL), "/")
	if c.ComicVine.BaseURL == "" {
		c.ComicVine.BaseURL = defaultComicVineBaseURL
	}
	if c.ComicVine.UserAgent = strings.TrimSpace(c.ComicVine.UserAgent); c.ComicVine.UserAgent == "" {
		c.ComicVine.UserAgent = defaultUserAgent
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
