package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"runarr/internal/config"
	"runarr/internal/services"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	t.Setenv("COMICVINE_API_KEY", "env-key")
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("no file should have been found")
	}
	if resolved != path {
		t.Fatalf("resolved path %q, want %q", resolved, path)
	}
	if cfg.ComicVine.APIKey != "env-key" {
		t.Fatalf("expected api key from environment, got %q", cfg.ComicVine.APIKey)
	}
	if cfg.ComicVine.BaseURL != "https://comicvine.gamespot.com/api" {
		t.Fatalf("unexpected default base url %q", cfg.ComicVine.BaseURL)
	}
	if !cfg.Cache.Enabled {
		t.Fatal("cache should default to enabled")
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	t.Setenv("COMICVINE_API_KEY", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[comicvine]
api_key = "  file-key  "
base_url = "https://example.test/api/"

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("config file should have been found")
	}
	if cfg.ComicVine.APIKey != "file-key" {
		t.Fatalf("api key not trimmed: %q", cfg.ComicVine.APIKey)
	}
	if cfg.ComicVine.BaseURL != "https://example.test/api" {
		t.Fatalf("base url not normalized: %q", cfg.ComicVine.BaseURL)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not lowercased: %+v", cfg.Logging)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("COMICVINE_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.toml")

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error when api key missing")
	}
	if !strings.Contains(err.Error(), "comicvine.api_key") {
		t.Fatalf("error should name the missing key: %v", err)
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	t.Setenv("COMICVINE_API_KEY", "k")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("first WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("second WriteSample should refuse to overwrite")
	}
}
