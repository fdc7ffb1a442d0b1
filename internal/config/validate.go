package config

import (
	"fmt"

	"runarr/internal/services"
)

// Validate ensures the configuration is usable. Failures carry the
// configuration marker so callers can tell bad settings from runtime faults.
func (c *Config) Validate() error {
	if err := c.validateComicVine(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return invalid("cache.path is required when cache.enabled is true")
	}
	return nil
}

func (c *Config) validateComicVine() error {
	if c.ComicVine.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/runarr/config.toml"
		}
		return invalid(fmt.Sprintf("comicvine.api_key is required. Set COMICVINE_API_KEY env var or edit %s (create with 'runarr config init')", defaultPath))
	}
	if c.ComicVine.BaseURL == "" {
		return invalid("comicvine.base_url must not be empty")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return invalid(fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid(fmt.Sprintf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level))
	}
	return nil
}

func invalid(message string) error {
	return services.Wrap(services.ErrConfiguration, "config", "validate", message, nil)
}
