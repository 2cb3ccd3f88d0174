//go:build ignore

// gen_fixtures creates small source images and a six-face tile directory
// for the E2E smoke test.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	for _, sub := range []string{"sources/portraits", "tiles"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	// Landscape gradient (JPEG, 400x225): every face appears left to right.
	save(filepath.Join(dir, "sources", "gradient.jpg"), gradient(400, 225))

	// Portraits (PNG, 150x200), three brightness levels.
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("portrait-%d.png", i)
		save(filepath.Join(dir, "sources", "portraits", name), disc(150, 200, uint8(i*70)))
	}

	// Tiles sorted by name map to faces 1..6, dark to light.
	for i := 1; i <= 6; i++ {
		name := fmt.Sprintf("%02d.png", i)
		save(filepath.Join(dir, "tiles", name), imaging.New(24, 24, color.Gray{Y: uint8(i * 40)}))
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 4 sources and 6 tiles in %s\n", dir)
}

func save(path string, img image.Image) {
	if err := imaging.Save(img, path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / w)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// disc draws a light circle on a background of the given level.
func disc(w, h int, base uint8) *image.NRGBA {
	img := imaging.New(w, h, color.NRGBA{R: base, G: base, B: base, A: 255})
	cx, cy, r := w/2, h/2, w/3
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetNRGBA(x, y, color.NRGBA{R: 240, G: 240, B: 240, A: 255})
			}
		}
	}
	return img
}
