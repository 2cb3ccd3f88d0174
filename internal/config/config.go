// Package config holds the settings a mosaic run is driven by. It is the
// only state the core packages see; flag parsing and prompts stay in cmd.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fetzsav/dice/internal/face"
)

// ErrInvalid marks configuration errors.
var ErrInvalid = errors.New("invalid configuration")

// DefaultTileSize is used when no tile size is configured.
const DefaultTileSize = 32

// Config is the full set of mosaic options.
type Config struct {
	Preset       string `toml:"preset"`
	TileSize     int    `toml:"tile_size"`
	TilesDir     string `toml:"tiles_dir"` // empty selects the builtin dice
	InvertSource bool   `toml:"invert_source"`
	InvertTiles  bool   `toml:"invert_tiles"`
	Square       bool   `toml:"square"`
	Caption      bool   `toml:"caption"`
	CaptionFont  string `toml:"caption_font"` // empty selects the embedded font
	Workers      int    `toml:"workers"`      // 0 = NumCPU
	Thresholds   []int  `toml:"thresholds"`   // empty selects face.DefaultThresholds
	Output       Output `toml:"output"`
}

// Output describes the persisted image.
type Output struct {
	Width   int    `toml:"width"`  // fit target; 0 with Height 0 keeps the mosaic size
	Height  int    `toml:"height"`
	Format  string `toml:"format"` // png or jpeg
	Quality int    `toml:"quality"`
}

// Fit reports whether the mosaic should be fitted to Width×Height.
func (o Output) Fit() bool { return o.Width != 0 || o.Height != 0 }

// Default returns the "default" preset.
func Default() Config {
	return presets["default"]
}

// LoadFile decodes a TOML file over base. Keys the file does not set keep
// the value from base; unknown keys are an error.
func LoadFile(path string, base Config) (Config, error) {
	cfg := base
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return base, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return base, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Validate reports the first configuration error.
func (c Config) Validate() error {
	if c.TileSize <= 0 {
		return fmt.Errorf("%w: tile size must be positive, got %d", ErrInvalid, c.TileSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, c.Workers)
	}
	if c.Output.Fit() && (c.Output.Width <= 0 || c.Output.Height <= 0) {
		return fmt.Errorf("%w: output size must be positive, got %dx%d",
			ErrInvalid, c.Output.Width, c.Output.Height)
	}
	switch c.Format() {
	case "png", "jpeg":
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalid, c.Output.Format)
	}
	if c.Output.Quality < 0 || c.Output.Quality > 100 {
		return fmt.Errorf("%w: quality must be 0-100, got %d", ErrInvalid, c.Output.Quality)
	}
	if _, err := c.ClassifierThresholds(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Format returns the normalized output format name.
func (c Config) Format() string {
	f := strings.ToLower(c.Output.Format)
	switch f {
	case "":
		return "png"
	case "jpg":
		return "jpeg"
	}
	return f
}

// ClassifierThresholds returns the configured face partition.
func (c Config) ClassifierThresholds() (face.Thresholds, error) {
	if len(c.Thresholds) == 0 {
		return face.DefaultThresholds, nil
	}
	return face.ParseThresholds(c.Thresholds)
}
