// Package mosaic composites a tile per grid cell of a brightness source
// and fits the result onto an output resolution.
package mosaic

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/fetzsav/dice/internal/face"
	"github.com/fetzsav/dice/internal/source"
)

// ErrInputTooSmall is returned when the source cannot hold a single tile.
var ErrInputTooSmall = errors.New("input too small for tile size")

// Tiles resolves a face to its tile image. All tiles share Size.
type Tiles interface {
	Size() image.Point
	Tile(id face.Identity) (image.Image, bool)
}

// Options tune a Composite call. The zero value classifies with the
// default thresholds on a single goroutine.
type Options struct {
	Thresholds *face.Thresholds
	Workers    int
	// OnRow, when set, is called once per finished grid row. It may be
	// called from several goroutines.
	OnRow func()
}

// Result is a composited canvas plus the grid it was built from.
type Result struct {
	Canvas     *image.NRGBA
	Cols, Rows int
	TileWidth  int
	TileHeight int
	Faces      face.Histogram
	Missing    int // cells left blank because their tile was absent
}

// Count returns the number of grid cells.
func (r *Result) Count() int { return r.Cols * r.Rows }

// Width returns the canvas width.
func (r *Result) Width() int { return r.Cols * r.TileWidth }

// Height returns the canvas height.
func (r *Result) Height() int { return r.Rows * r.TileHeight }

// Grid returns the cell dimensions a source of w×h yields for tiles of
// tw×th. Remainder strips are dropped.
func Grid(w, h, tw, th int) (cols, rows int) {
	if tw <= 0 || th <= 0 {
		return 0, 0
	}
	return w / tw, h / th
}

// Composite replaces every tile-sized cell of src with the tile matching
// the cell's mean brightness.
func Composite(src *source.Source, tiles Tiles, opts Options) (*Result, error) {
	ts := tiles.Size()
	cols, rows := Grid(src.Width(), src.Height(), ts.X, ts.Y)
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("%w: %dx%d source, %dx%d tiles",
			ErrInputTooSmall, src.Width(), src.Height(), ts.X, ts.Y)
	}

	thresholds := face.DefaultThresholds
	if opts.Thresholds != nil {
		thresholds = *opts.Thresholds
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}

	res := &Result{
		Canvas:     image.NewNRGBA(image.Rect(0, 0, cols*ts.X, rows*ts.Y)),
		Cols:       cols,
		Rows:       rows,
		TileWidth:  ts.X,
		TileHeight: ts.Y,
	}
	log.Debugf("composite: %dx%d source -> %dx%d grid (%d workers)",
		src.Width(), src.Height(), cols, rows, workers)

	// Rows write disjoint parts of the canvas, so workers need no locking
	// beyond merging their counters.
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	jobs := make(chan int, rows)
	for gy := 0; gy < rows; gy++ {
		jobs <- gy
	}
	close(jobs)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var faces face.Histogram
			missing := 0
			for gy := range jobs {
				for gx := 0; gx < cols; gx++ {
					cell := image.Rect(gx*ts.X, gy*ts.Y, (gx+1)*ts.X, (gy+1)*ts.Y)
					id := thresholds.Classify(src.Mean(cell))
					tile, ok := tiles.Tile(id)
					if !ok {
						log.Warnf("no tile for %v at cell (%d,%d); leaving it blank", id, gx, gy)
						missing++
						continue
					}
					faces.Add(id)
					draw.Draw(res.Canvas, cell, tile, tile.Bounds().Min, draw.Over)
				}
				if opts.OnRow != nil {
					opts.OnRow()
				}
			}
			mu.Lock()
			res.Faces.Merge(faces)
			res.Missing += missing
			mu.Unlock()
		}()
	}
	wg.Wait()

	return res, nil
}
