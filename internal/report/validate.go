package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fetzsav/dice/internal/hasher"
)

// Validate checks the report for internal consistency and verifies that
// each output exists under baseDir with the recorded size and hash. It
// returns one message per problem.
func (r *Report) Validate(baseDir string) []string {
	var errs []string

	if r.Version != SupportedVersion {
		errs = append(errs, fmt.Sprintf("unsupported report version: %d", r.Version))
	}

	seenPaths := map[string]string{}
	for key, m := range r.Mosaics {
		g := m.Grid
		if g.Cols <= 0 || g.Rows <= 0 || g.TileWidth <= 0 || g.TileHeight <= 0 {
			errs = append(errs, fmt.Sprintf("mosaic %q: invalid grid %+v", key, g))
		}
		if g.Cols*g.TileWidth > m.Source.Width || g.Rows*g.TileHeight > m.Source.Height {
			errs = append(errs, fmt.Sprintf("mosaic %q: grid %dx%d of %dx%d tiles exceeds source %dx%d",
				key, g.Cols, g.Rows, g.TileWidth, g.TileHeight, m.Source.Width, m.Source.Height))
		}

		placed := 0
		for _, n := range m.Faces {
			placed += n
		}
		if placed+m.Missing != g.Cells() {
			errs = append(errs, fmt.Sprintf("mosaic %q: %d faces + %d missing != %d cells",
				key, placed, m.Missing, g.Cells()))
		}

		o := m.Output
		if !o.Fitted && (o.Width != g.Cols*g.TileWidth || o.Height != g.Rows*g.TileHeight) {
			errs = append(errs, fmt.Sprintf("mosaic %q: output %dx%d does not match grid",
				key, o.Width, o.Height))
		}
		if o.Hash == "" {
			errs = append(errs, fmt.Sprintf("mosaic %q: missing hash", key))
		}
		if o.Path == "" {
			errs = append(errs, fmt.Sprintf("mosaic %q: missing output path", key))
			continue
		}
		if other, dup := seenPaths[o.Path]; dup {
			errs = append(errs, fmt.Sprintf("mosaic %q: output path %q also used by %q", key, o.Path, other))
		}
		seenPaths[o.Path] = key

		fullPath := filepath.Join(baseDir, filepath.FromSlash(o.Path))
		info, err := os.Stat(fullPath)
		if err != nil {
			errs = append(errs, fmt.Sprintf("mosaic %q: file not found: %s", key, o.Path))
			continue
		}
		if o.Size > 0 && info.Size() != o.Size {
			errs = append(errs, fmt.Sprintf("mosaic %q: size mismatch: report=%d, disk=%d",
				key, o.Size, info.Size()))
		}
		if o.Hash != "" {
			h, err := hasher.FileHash(fullPath, len(o.Hash))
			if err != nil {
				errs = append(errs, fmt.Sprintf("mosaic %q: %v", key, err))
			} else if h != o.Hash {
				errs = append(errs, fmt.Sprintf("mosaic %q: hash mismatch: report=%s, disk=%s", key, o.Hash, h))
			}
		}
	}

	// Verify stats consistency.
	tiles := 0
	for _, m := range r.Mosaics {
		tiles += m.Grid.Cells()
	}
	if r.Stats.TotalMosaics != len(r.Mosaics) {
		errs = append(errs, fmt.Sprintf("stats.total_mosaics mismatch: %d != %d", r.Stats.TotalMosaics, len(r.Mosaics)))
	}
	if r.Stats.TotalTiles != tiles {
		errs = append(errs, fmt.Sprintf("stats.total_tiles mismatch: %d != %d", r.Stats.TotalTiles, tiles))
	}

	return errs
}
