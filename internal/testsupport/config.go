package testsupport

import (
	"path/filepath"
	"testing"

	"storyreel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// Composition timing is tightened so wall-clock tests stay fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Composition.DefaultSceneSeconds = 0.05
	cfg.Composition.ProgressTickMS = 10

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithAspectDefaults leaves composition timing at production values.
func WithAspectDefaults() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Composition.DefaultSceneSeconds = 5
		cfg.Composition.ProgressTickMS = 100
	}
}

// WithFFmpeg points the tools section at a specific ffmpeg binary.
func WithFFmpeg(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Tools.FFmpeg = path
	}
}
