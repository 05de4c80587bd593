package builder

import (
	"log/slog"

	"gtile/core/errs"
	"gtile/core/tile"
)

// Defaults.
const (
	DefaultPositionsCutoff = 1000
	DefaultProgressEvery   = 1_000_000
)

// Config controls an index build.
type Config struct {
	TileLength      int    // bases per tile (1..32)
	PositionsCutoff int    // max positions kept per tile before it becomes count-only
	ProgressEvery   uint64 // bases between progress logs and cancellation checks
	ToolVersion     string // written to the index header
	Logger          *slog.Logger
}

// DefaultConfig returns the standard 13-mer build settings.
func DefaultConfig() Config {
	return Config{
		TileLength:      tile.DefaultLength,
		PositionsCutoff: DefaultPositionsCutoff,
		ProgressEvery:   DefaultProgressEvery,
	}
}

// Validate checks the parameters and fills zero-valued optional fields.
func (c *Config) Validate() error {
	if err := tile.CheckLength(c.TileLength); err != nil {
		return err
	}
	if c.PositionsCutoff < 1 {
		return errs.Configf("positions cutoff must be >= 1, got %d", c.PositionsCutoff)
	}
	if c.ProgressEvery == 0 {
		c.ProgressEvery = DefaultProgressEvery
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return nil
}
