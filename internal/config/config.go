package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Library contains configuration for the organized comic library.
type Library struct {
	// OutputDir is where organized series folders are created. Empty means
	// organize in place under the input directory.
	OutputDir string `toml:"output_dir"`
	// ExtrasDirName is the folder name for non-comic files left behind after
	// a series folder is organized.
	ExtrasDirName string `toml:"extras_dir_name"`
}

// ComicVine contains configuration for the Comic Vine catalog API.
type ComicVine struct {
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
}

// Cache contains configuration for the persistent issue metadata cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // SQLite database file
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	LogDir string `toml:"log_dir"`
}

// Prompts contains configuration for interactive behavior.
type Prompts struct {
	// AutoSkip suppresses all interactive prompts. Ambiguous series are
	// skipped instead of offered for selection, and throttling waits run
	// their full duration.
	AutoSkip bool `toml:"auto_skip"`
	// AssumeYes answers folder confirmation prompts affirmatively.
	AssumeYes bool `toml:"assume_yes"`
}

// Config encapsulates all configuration values for runarr.
type Config struct {
	Library   Library   `toml:"library"`
	ComicVine ComicVine `toml:"comicvine"`
	Cache     Cache     `toml:"cache"`
	Logging   Logging   `toml:"logging"`
	Prompts   Prompts   `toml:"prompts"`
}

// DefaultConfigPath returns the absolute path of the default config file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/runarr/config.toml")
}

// Load locates, parses, normalizes, and validates a configuration file. The
// boolean result reports whether a file was found; when none exists the
// defaults are returned.
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

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
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
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return filepath.Abs(path)
}
