package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/fetzsav/dice/internal/caption"
	"github.com/fetzsav/dice/internal/hasher"
	"github.com/fetzsav/dice/internal/mosaic"
	"github.com/fetzsav/dice/internal/report"
	"github.com/fetzsav/dice/internal/source"
)

// processResult holds the result of processing a single source image.
type processResult struct {
	key    string
	mosaic report.Mosaic
	err    error
}

// processImage handles a single source image: load, composite, fit,
// caption, encode, write. Nothing is written unless every earlier step
// succeeded.
func processImage(src Source, j job) processResult {
	result := processResult{key: src.Key}
	s := j.settings

	gray, format, err := source.Load(src.AbsPath, source.Options{
		Invert: s.InvertSource,
		Square: s.Square,
	})
	if err != nil {
		result.err = err
		return result
	}

	if j.onGrid != nil {
		ts := j.tiles.Size()
		if _, rows := mosaic.Grid(gray.Width(), gray.Height(), ts.X, ts.Y); rows > 0 {
			j.onGrid(rows)
		}
	}

	res, err := mosaic.Composite(gray, j.tiles, mosaic.Options{
		Thresholds: &j.thresholds,
		Workers:    j.cellWorkers,
		OnRow:      j.onRow,
	})
	if err != nil {
		result.err = fmt.Errorf("%s: %w", src.RelPath, err)
		return result
	}
	if res.Missing > 0 {
		log.Warnf("%s: %d cells left blank", src.Key, res.Missing)
	}

	canvas := res.Canvas
	fitted := false
	if s.Output.Fit() {
		canvas, err = mosaic.Fit(canvas, s.Output.Width, s.Output.Height)
		if err != nil {
			result.err = fmt.Errorf("%s: %w", src.RelPath, err)
			return result
		}
		fitted = true
	}

	// The caption is decoration; a broken font costs the caption only.
	captioned := false
	if s.Caption {
		info := caption.Info{
			TileWidth:  res.TileWidth,
			TileHeight: res.TileHeight,
			Count:      res.Count(),
			Width:      canvas.Bounds().Dx(),
			Height:     canvas.Bounds().Dy(),
		}
		if err := caption.Overlay(canvas, info, s.CaptionFont); err != nil {
			log.Warnf("%s: caption skipped: %v", src.Key, err)
		} else {
			captioned = true
		}
	}

	data, err := j.encoder.Encode(canvas, s.Output.Quality)
	if err != nil {
		result.err = fmt.Errorf("encode %s: %w", src.Key, err)
		return result
	}

	outPath := j.outFile
	if outPath == "" {
		outPath = filepath.Join(j.baseDir, filepath.FromSlash(src.Key)+".dice."+j.encoder.Extension())
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		result.err = fmt.Errorf("create output dir: %w", err)
		return result
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		result.err = fmt.Errorf("write %s: %w", outPath, err)
		return result
	}

	relPath, err := filepath.Rel(j.baseDir, outPath)
	if err != nil {
		relPath = outPath
	}

	result.mosaic = report.Mosaic{
		Source: report.SourceInfo{
			Path:   src.RelPath,
			Width:  gray.Width(),
			Height: gray.Height(),
			Format: format,
			Size:   src.Size,
		},
		Grid: report.Grid{
			Cols:       res.Cols,
			Rows:       res.Rows,
			TileWidth:  res.TileWidth,
			TileHeight: res.TileHeight,
		},
		Faces:     res.Faces,
		Missing:   res.Missing,
		Captioned: captioned,
		Output: report.OutputInfo{
			Path:   filepath.ToSlash(relPath),
			Format: j.encoder.Format(),
			Width:  canvas.Bounds().Dx(),
			Height: canvas.Bounds().Dy(),
			Fitted: fitted,
			Size:   int64(len(data)),
			Hash:   hasher.ContentHash(data, hasher.HexLen),
		},
	}
	return result
}
