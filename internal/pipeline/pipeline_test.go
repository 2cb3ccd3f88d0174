package pipeline

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/fetzsav/dice/internal/config"
	"github.com/fetzsav/dice/internal/face"
	"github.com/fetzsav/dice/internal/mosaic"
	"github.com/fetzsav/dice/internal/report"
	"github.com/fetzsav/dice/internal/tileset"
)

func uniform(w, h int, v uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func settings(tileSize int) config.Config {
	c := config.Default()
	c.TileSize = tileSize
	c.Workers = 2
	return c
}

func TestRun_SingleFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in", "falcons.png")
	writePNG(t, in, uniform(100, 100, 30))
	out := filepath.Join(dir, "out")

	p := New(Config{Input: in, Output: out, Settings: settings(32)})
	rep, err := p.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if p.ReportDir() != out {
		t.Errorf("report dir: got %q", p.ReportDir())
	}
	if want := filepath.Join(out, report.FileName); p.ReportPath() != want {
		t.Errorf("report path: got %q, want %q", p.ReportPath(), want)
	}

	m, ok := rep.Mosaics["falcons"]
	if !ok {
		t.Fatalf("mosaic missing: %+v", rep.Mosaics)
	}
	if m.Grid.Cols != 3 || m.Grid.Rows != 3 {
		t.Errorf("grid: %+v", m.Grid)
	}
	if m.Output.Width != 96 || m.Output.Height != 96 {
		t.Errorf("output: %dx%d", m.Output.Width, m.Output.Height)
	}
	if m.Faces[face.One.Index()] != 9 {
		t.Errorf("faces: %v", m.Faces)
	}

	f, err := os.Open(filepath.Join(out, m.Output.Path))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 96 || b.Dy() != 96 {
		t.Errorf("output bounds: %v", b)
	}
	if errs := rep.Validate(out); len(errs) != 0 {
		t.Errorf("report invalid: %v", errs)
	}
}

func TestRun_UniformGrayUsesFaceFive(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "gray.png")
	writePNG(t, in, uniform(64, 64, 200))

	rep, err := New(Config{Input: in, Output: filepath.Join(dir, "out"), Settings: settings(32)}).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	m := rep.Mosaics["gray"]
	if m.Faces[face.Five.Index()] != 4 || m.Grid.Cells() != 4 {
		t.Errorf("faces: %v grid %+v", m.Faces, m.Grid)
	}
}

func TestRun_TileDirWithFiveImages(t *testing.T) {
	dir := t.TempDir()
	tiles := filepath.Join(dir, "dice")
	for i := 1; i <= 5; i++ {
		writePNG(t, filepath.Join(tiles, fmt.Sprintf("%dside.png", i)), uniform(8, 8, uint8(i*40)))
	}
	in := filepath.Join(dir, "in.png")
	writePNG(t, in, uniform(64, 64, 100))
	out := filepath.Join(dir, "out")

	s := settings(16)
	s.TilesDir = tiles
	_, err := New(Config{Input: in, Output: out, Settings: s}).Run()
	if !errors.Is(err, tileset.ErrTileCount) {
		t.Fatalf("got %v, want ErrTileCount", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output dir should not exist: %v", err)
	}
}

func TestRun_InputTooSmall(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tiny.png")
	writePNG(t, in, uniform(10, 10, 100))
	out := filepath.Join(dir, "out", "tiny.png")

	_, err := New(Config{Input: in, Output: out, Settings: settings(32)}).Run()
	if !errors.Is(err, mosaic.ErrInputTooSmall) {
		t.Fatalf("got %v, want ErrInputTooSmall", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("no output file expected: %v", err)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	s := settings(0)
	_, err := New(Config{Input: "does-not-matter.png", Output: t.TempDir(), Settings: s}).Run()
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("got %v, want ErrInvalid", err)
	}
}

func TestRun_ExplicitPathFitAndCaption(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writePNG(t, in, uniform(120, 60, 150))
	out := filepath.Join(dir, "nested", "deeper", "mosaic.png")

	s := settings(20)
	s.Output.Width, s.Output.Height = 300, 300
	s.Caption = true
	p := New(Config{Input: in, Output: out, Settings: s})
	rep, err := p.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if p.ReportDir() != filepath.Dir(out) {
		t.Errorf("report dir: got %q", p.ReportDir())
	}
	if want := filepath.Join(dir, "nested", "deeper", "mosaic.report.json"); p.ReportPath() != want {
		t.Errorf("report path: got %q, want %q", p.ReportPath(), want)
	}
	m := rep.Mosaics["in"]
	if m.Output.Path != "mosaic.png" || !m.Output.Fitted || !m.Captioned {
		t.Errorf("output: %+v captioned=%v", m.Output, m.Captioned)
	}
	if m.Output.Width != 300 || m.Output.Height != 300 {
		t.Errorf("fit size: %dx%d", m.Output.Width, m.Output.Height)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	// 120x60 mosaic fitted to 300x150, centered vertically.
	if _, _, _, a := img.At(150, 50).RGBA(); a != 0 {
		t.Errorf("top padding should be transparent")
	}
	if _, _, _, a := img.At(150, 150).RGBA(); a == 0 {
		t.Errorf("center should be opaque")
	}
	if errs := rep.Validate(p.ReportDir()); len(errs) != 0 {
		t.Errorf("report invalid: %v", errs)
	}
}

func TestRun_Deterministic(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "grad.png")
	img := image.NewNRGBA(image.Rect(0, 0, 90, 70))
	for y := 0; y < 70; y++ {
		for x := 0; x < 90; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 2), uint8(y * 3), 90, 255})
		}
	}
	writePNG(t, in, img)

	a, err := New(Config{Input: in, Output: filepath.Join(dir, "a"), Settings: settings(10)}).Run()
	if err != nil {
		t.Fatal(err)
	}
	s := settings(10)
	s.Workers = 1
	b, err := New(Config{Input: in, Output: filepath.Join(dir, "b"), Settings: s}).Run()
	if err != nil {
		t.Fatal(err)
	}
	if a.Mosaics["grad"].Output.Hash != b.Mosaics["grad"].Output.Hash {
		t.Errorf("hashes differ: %s vs %s", a.Mosaics["grad"].Output.Hash, b.Mosaics["grad"].Output.Hash)
	}
}

func TestRun_Directory(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	writePNG(t, filepath.Join(in, "a.png"), uniform(40, 40, 10))
	writePNG(t, filepath.Join(in, "sub", "b.png"), uniform(40, 40, 250))
	writePNG(t, filepath.Join(in, ".cache", "c.png"), uniform(40, 40, 250))
	os.WriteFile(filepath.Join(in, "notes.txt"), []byte("skip"), 0o644)
	out := filepath.Join(dir, "out")

	s := settings(8)
	s.Output.Format = "jpeg"
	var (
		started int
		done    atomic.Int32
	)
	rep, err := New(Config{
		Input: in, Output: out, Settings: s,
		OnStart: func(n int) { started = n },
		OnStep:  func() { done.Add(1) },
	}).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if started != 2 || done.Load() != 2 {
		t.Errorf("progress: started %d done %d", started, done.Load())
	}
	if len(rep.Mosaics) != 2 {
		t.Fatalf("mosaics: %v", rep.Mosaics)
	}
	if got := rep.Mosaics["sub/b"].Output.Path; got != "sub/b.dice.jpg" {
		t.Errorf("nested output path: %q", got)
	}
	if rep.Mosaics["sub/b"].Faces[face.Six.Index()] != 25 {
		t.Errorf("bright faces: %v", rep.Mosaics["sub/b"].Faces)
	}
	if errs := rep.Validate(out); len(errs) != 0 {
		t.Errorf("report invalid: %v", errs)
	}
}

func TestRun_BatchReportsFailures(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	writePNG(t, filepath.Join(in, "ok.png"), uniform(40, 40, 10))
	writePNG(t, filepath.Join(in, "small.png"), uniform(4, 4, 10))

	_, err := New(Config{Input: in, Output: filepath.Join(dir, "out"), Settings: settings(8)}).Run()
	if !errors.Is(err, mosaic.ErrInputTooSmall) {
		t.Fatalf("got %v, want ErrInputTooSmall", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "small.dice.png")); !os.IsNotExist(err) {
		t.Error("failed image must not leave output")
	}
}

func TestScanImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.PNG"), uniform(2, 2, 0))
	writePNG(t, filepath.Join(dir, "a", "x.jpg"), uniform(2, 2, 0))
	os.WriteFile(filepath.Join(dir, "readme.md"), nil, 0o644)

	sources, err := ScanImages(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 {
		t.Fatalf("sources: %+v", sources)
	}
	if sources[0].Key != "a/x" || sources[0].RelPath != "a/x.jpg" {
		t.Errorf("first: %+v", sources[0])
	}
	if sources[1].Key != "b" || sources[1].RelPath != "b.PNG" {
		t.Errorf("second: %+v", sources[1])
	}

	single, err := ScanImages(filepath.Join(dir, "b.PNG"), "")
	if err != nil || len(single) != 1 || single[0].Key != "b" {
		t.Errorf("single: %+v %v", single, err)
	}
	if _, err := ScanImages(filepath.Join(dir, "missing"), ""); err == nil {
		t.Error("missing input: expected error")
	}
}

func TestScanImages_SharedStem(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), uniform(2, 2, 0))
	writePNG(t, filepath.Join(dir, "a.jpg"), uniform(2, 2, 0))
	writePNG(t, filepath.Join(dir, "b.png"), uniform(2, 2, 0))

	sources, err := ScanImages(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	var keys []string
	for _, s := range sources {
		keys = append(keys, s.Key)
	}
	want := []string{"a.jpg", "a.png", "b"}
	if fmt.Sprint(keys) != fmt.Sprint(want) {
		t.Errorf("keys: got %v, want %v", keys, want)
	}
}

func TestScanImages_DuplicateKey(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "a.jpg", "a.png.jpg"} {
		writePNG(t, filepath.Join(dir, name), uniform(2, 2, 0))
	}
	if _, err := ScanImages(dir, ""); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("got %v, want ErrDuplicateKey", err)
	}
}

func TestRun_SharedStemKeepsBothMosaics(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	writePNG(t, filepath.Join(in, "a.png"), uniform(40, 40, 10))
	writePNG(t, filepath.Join(in, "a.jpg"), uniform(40, 40, 250))
	out := filepath.Join(dir, "out")

	rep, err := New(Config{Input: in, Output: out, Settings: settings(8)}).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rep.Mosaics) != 2 {
		t.Fatalf("mosaics: %v", rep.Mosaics)
	}
	dark, bright := rep.Mosaics["a.png"], rep.Mosaics["a.jpg"]
	if dark.Output.Path != "a.png.dice.png" || bright.Output.Path != "a.jpg.dice.png" {
		t.Errorf("paths: %q, %q", dark.Output.Path, bright.Output.Path)
	}
	if dark.Faces[face.One.Index()] != 25 || bright.Faces[face.Six.Index()] != 25 {
		t.Errorf("faces: %v, %v", dark.Faces, bright.Faces)
	}
	if errs := rep.Validate(out); len(errs) != 0 {
		t.Errorf("report invalid: %v", errs)
	}
}

func TestRun_OutputInsideInput(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "x.png"), uniform(40, 40, 100))
	out := filepath.Join(dir, "dice_out")

	for run := 1; run <= 2; run++ {
		rep, err := New(Config{Input: dir, Output: out, Settings: settings(8)}).Run()
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if _, ok := rep.Mosaics["x"]; !ok || len(rep.Mosaics) != 1 {
			t.Errorf("run %d: mosaics %v", run, rep.Mosaics)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "dice_out")); !os.IsNotExist(err) {
		t.Errorf("previous outputs were rescanned: %v", err)
	}
}

func TestRun_SingleSourceProgressFollowsRows(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writePNG(t, in, uniform(100, 100, 100))

	var (
		started int
		steps   atomic.Int32
	)
	_, err := New(Config{
		Input: in, Output: filepath.Join(dir, "out"), Settings: settings(32),
		OnStart: func(n int) { started = n },
		OnStep:  func() { steps.Add(1) },
	}).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if started != 3 || steps.Load() != 3 {
		t.Errorf("progress: started %d steps %d, want 3 rows", started, steps.Load())
	}
}
