package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/fetzsav/dice/internal/config"
	"github.com/fetzsav/dice/internal/encoder"
	"github.com/fetzsav/dice/internal/face"
	"github.com/fetzsav/dice/internal/report"
	"github.com/fetzsav/dice/internal/tileset"
)

// Config holds all parameters for a pipeline run.
type Config struct {
	// Input is an image file or a directory of images.
	Input string
	// Output is the output directory. For a single input file it may
	// instead name the output image itself (png or jpg extension).
	Output   string
	Settings config.Config

	// OnStart is called once with the number of progress steps: one per
	// source in a batch, one per grid row for a single source. For a single
	// source it is not called if the source fails before compositing.
	OnStart func(total int)
	// OnStep is called after each step, successfully or not. It may be
	// called from several goroutines.
	OnStep func()
}

// Pipeline turns source images into dice mosaics.
type Pipeline struct {
	cfg        Config
	workers    int
	registry   *encoder.Registry
	reportDir  string
	reportPath string
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	workers := cfg.Settings.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pipeline{
		cfg:      cfg,
		workers:  workers,
		registry: encoder.NewRegistry(),
	}
}

// reportSuffix names the report of an explicit output image.
const reportSuffix = ".report.json"

// job is everything processImage needs besides the source.
type job struct {
	settings    config.Config
	thresholds  face.Thresholds
	tiles       *tileset.Set
	encoder     encoder.Encoder
	baseDir     string // directory the report and relative paths live in
	outFile     string // explicit output path, single input only
	cellWorkers int
	onGrid      func(rows int)
	onRow       func()
}

// Run executes the pipeline and returns the build report. Configuration
// and tile loading errors stop the run before any source is read. If any
// source fails, Run returns an error; mosaics of the other sources are
// still written.
func (p *Pipeline) Run() (*report.Report, error) {
	s := p.cfg.Settings
	if err := s.Validate(); err != nil {
		return nil, err
	}
	thresholds, err := s.ClassifierThresholds()
	if err != nil {
		return nil, err
	}

	tiles, err := loadTiles(s)
	if err != nil {
		return nil, fmt.Errorf("tiles: %w", err)
	}

	input, err := filepath.Abs(p.cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("resolve input: %w", err)
	}
	output, err := filepath.Abs(p.cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("resolve output: %w", err)
	}

	sources, err := ScanImages(input, output)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.Input)
	}
	log.Debugf("found %d images", len(sources))

	j := job{
		settings:   s,
		thresholds: thresholds,
		tiles:      tiles,
		baseDir:    output,
	}
	p.reportPath = filepath.Join(output, report.FileName)
	if len(sources) == 1 && IsImagePath(output) {
		j.outFile = output
		j.baseDir = filepath.Dir(output)
		j.encoder, err = p.registry.ForPath(output)
		// Named after the image so single builds sharing a directory keep
		// their own reports.
		p.reportPath = strings.TrimSuffix(output, filepath.Ext(output)) + reportSuffix
	} else {
		j.encoder = p.registry.Get(s.Format())
		if j.encoder == nil {
			err = fmt.Errorf("%w: no encoder for %q (available: %s)", config.ErrInvalid,
				s.Format(), strings.Join(p.registry.Available(), ", "))
		}
	}
	if err != nil {
		return nil, err
	}
	p.reportDir = j.baseDir

	// A lone image gets every worker for its grid; a batch spreads the
	// workers over images instead.
	imageWorkers := p.workers
	j.cellWorkers = 1
	onDone := p.cfg.OnStep
	if len(sources) == 1 {
		imageWorkers = 1
		j.cellWorkers = p.workers
		// Progress follows the grid rows of the lone image.
		j.onGrid, j.onRow = p.cfg.OnStart, p.cfg.OnStep
		onDone = nil
	} else if p.cfg.OnStart != nil {
		p.cfg.OnStart(len(sources))
	}

	results := make([]processResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, imageWorkers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			log.Debugf("processing: %s", s.Key)
			results[idx] = processImage(s, j)
			if results[idx].err == nil {
				log.Debugf("done: %s -> %s", s.Key, results[idx].mosaic.Output.Path)
			}
			if onDone != nil {
				onDone()
			}
		}(i, src)
	}
	wg.Wait()

	var errs []error
	for _, r := range results {
		if r.err != nil {
			log.Errorf("%s: %v", r.key, r.err)
			errs = append(errs, r.err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%d of %d images failed: %w", len(errs), len(sources), errors.Join(errs...))
	}

	rep := report.New(s.Preset)
	rep.BasePath = "./"
	rep.BuildInfo = &report.BuildInfo{
		Workers:      p.workers,
		TileSize:     s.TileSize,
		Tiles:        tilesLabel(s),
		Thresholds:   thresholds.Ints(),
		InvertSource: s.InvertSource,
		InvertTiles:  s.InvertTiles,
		Square:       s.Square,
	}
	for _, r := range results {
		rep.Mosaics[r.key] = r.mosaic
	}
	rep.ComputeStats()
	return rep, nil
}

// ReportDir returns the directory output paths in the report are relative
// to. It is set once Run has resolved the output layout.
func (p *Pipeline) ReportDir() string {
	return p.reportDir
}

// ReportPath returns where the report of the run belongs: FileName inside
// the output directory, or <name>.report.json next to an explicit output
// image.
func (p *Pipeline) ReportPath() string {
	return p.reportPath
}

func loadTiles(s config.Config) (*tileset.Set, error) {
	var (
		set *tileset.Set
		err error
	)
	if s.TilesDir == "" {
		set, err = tileset.Builtin(s.TileSize)
	} else {
		set, err = tileset.LoadDir(s.TilesDir, s.TileSize)
	}
	if err != nil {
		return nil, err
	}
	if s.InvertTiles {
		set.Invert()
	}
	return set, nil
}

func tilesLabel(s config.Config) string {
	if s.TilesDir == "" {
		return "builtin"
	}
	return s.TilesDir
}
