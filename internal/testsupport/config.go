package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"runarr/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.ComicVine.APIKey = "test"
	cfgVal.Library.OutputDir = filepath.Join(base, "library")
	cfgVal.Cache.Path = filepath.Join(base, "cache", "issues.db")
	cfgVal.Logging.LogDir = filepath.Join(base, "logs")
	cfgVal.Prompts.AutoSkip = true
	cfgVal.Prompts.AssumeYes = true

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIKey sets the Comic Vine API key on the test config.
func WithAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ComicVine.APIKey = key
	}
}

// WithBaseURL points the catalog client at a test server.
func WithBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ComicVine.BaseURL = url
	}
}

// WithCacheDisabled turns the persistent issue cache off.
func WithCacheDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = false
	}
}

// WithOutputDir overrides the organized library destination.
func WithOutputDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Library.OutputDir = dir
	}
}

// WithCachePath overrides the persistent issue cache location.
func WithCachePath(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Path = path
	}
}

// WriteConfig persists cfg as a TOML file in a per-test temp directory and
// returns its path, for commands that load configuration from disk.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()

	payload, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
