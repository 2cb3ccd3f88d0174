package config

import (
	"fmt"
	"strings"
)

// Built-in presets.
var presets = map[string]Config{
	"default": {
		Preset:   "default",
		TileSize: DefaultTileSize,
		Output:   Output{Format: "png"},
	},
	"fine": {
		Preset:   "fine",
		TileSize: 16,
		Output:   Output{Format: "png"},
	},
	"coarse": {
		Preset:   "coarse",
		TileSize: 64,
		Output:   Output{Format: "png"},
	},
	"wallpaper": {
		Preset:   "wallpaper",
		TileSize: 20,
		Output:   Output{Width: 1920, Height: 1080, Format: "png"},
	},
	"print": {
		Preset:      "print",
		TileSize:    48,
		InvertTiles: true, // light dice with dark pips read better on paper
		Caption:     true,
		Output:      Output{Format: "png"},
	},
}

// Preset returns a preset by name. Unknown names are an ErrInvalid error
// listing the valid ones.
func Preset(name string) (Config, error) {
	p, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: unknown preset %q (valid: %s)",
			ErrInvalid, name, strings.Join(PresetNames(), ", "))
	}
	return p, nil
}

// PresetNames lists the built-in presets in a stable order.
func PresetNames() []string {
	return []string{"default", "fine", "coarse", "wallpaper", "print"}
}
