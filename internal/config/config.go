// Package config reads the optional gtile.yaml run configuration.
package config

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"gtile/core/builder"
	"gtile/core/errs"
	"gtile/core/loader"
	"gtile/core/query"
	"gtile/core/tile"
	"gtile/internal/logging"
)

// Config mirrors the command-line flags. Flags set explicitly on the command
// line override values read from a file.
type Config struct {
	TileLength      int    `yaml:"tile_length"`
	PositionsCutoff int    `yaml:"positions_cutoff"`
	Threads         int    `yaml:"threads"` // 0 = all CPUs
	QueueSize       int    `yaml:"queue_size"`
	DiagonalSlack   uint64 `yaml:"diagonal_slack"`
	MinSupport      int    `yaml:"min_support"`
	BufferLeft      uint64 `yaml:"buffer_left"`
	BufferRight     uint64 `yaml:"buffer_right"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format,omitempty"` // text|json
	OutputFormat    string `yaml:"output_format"`        // text|json|jsonl
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		TileLength:      tile.DefaultLength,
		PositionsCutoff: builder.DefaultPositionsCutoff,
		Threads:         loader.DefaultWorkers,
		QueueSize:       loader.DefaultQueueSize,
		DiagonalSlack:   query.DefaultDiagonalSlack,
		MinSupport:      query.DefaultMinSupport,
		LogLevel:        "info",
		LogFormat:       "text",
		OutputFormat:    "text",
	}
}

// Load reads path on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.IO(err, "read config", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(errs.ErrConfig, "invalid YAML in %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate rejects values no command could run with.
func (c *Config) Validate() error {
	if err := tile.CheckLength(c.TileLength); err != nil {
		return err
	}
	if c.PositionsCutoff < 1 {
		return errs.Configf("positions_cutoff must be >= 1, got %d", c.PositionsCutoff)
	}
	if c.Threads < 0 {
		return errs.Configf("threads must be >= 0, got %d", c.Threads)
	}
	if c.QueueSize < 1 {
		return errs.Configf("queue_size must be >= 1, got %d", c.QueueSize)
	}
	if c.MinSupport < 1 {
		return errs.Configf("min_support must be >= 1, got %d", c.MinSupport)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return errs.Configf("log_format must be text or json, got %q", c.LogFormat)
	}
	switch c.OutputFormat {
	case "text", "json", "jsonl":
	default:
		return errs.Configf("output_format must be text, json or jsonl, got %q", c.OutputFormat)
	}
	return nil
}

// BuilderConfig returns the index build settings.
func (c *Config) BuilderConfig() builder.Config {
	b := builder.DefaultConfig()
	b.TileLength = c.TileLength
	b.PositionsCutoff = c.PositionsCutoff
	return b
}

// LoaderOptions returns the index load settings. Zero threads means one
// worker per CPU.
func (c *Config) LoaderOptions() loader.Options {
	w := c.Threads
	if w == 0 {
		w = runtime.NumCPU()
	}
	return loader.Options{Workers: w, QueueSize: c.QueueSize}
}

// QueryConfig returns the candidate generation settings. The tile length
// is left for the index header to decide.
func (c *Config) QueryConfig() query.Config {
	q := query.DefaultConfig()
	q.TileLength = 0
	q.DiagonalSlack = c.DiagonalSlack
	q.MinSupport = c.MinSupport
	q.Buffer.Left = c.BufferLeft
	q.Buffer.Right = c.BufferRight
	return q
}
