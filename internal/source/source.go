// Package source turns a decoded image into the single-channel brightness
// field the mosaic is computed from.
package source

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Options control the preprocessing applied after luminance reduction.
type Options struct {
	Invert bool // negate brightness
	Square bool // crop to the top-left min(W,H) square
}

// Source is an immutable grid of 8-bit brightness samples.
type Source struct {
	gray *image.Gray
}

// FromImage reduces img to luminance (Rec. 601 weights), then applies the
// optional inversion and square crop.
func FromImage(img image.Image, opts Options) *Source {
	g := imaging.Grayscale(img)
	if opts.Invert {
		g = imaging.Invert(g)
	}
	if opts.Square {
		b := g.Bounds()
		side := b.Dx()
		if b.Dy() < side {
			side = b.Dy()
		}
		g = imaging.Crop(g, image.Rect(b.Min.X, b.Min.Y, b.Min.X+side, b.Min.Y+side))
	}

	// Grayscale leaves R=G=B, so one channel carries the brightness.
	b := g.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[y*g.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return &Source{gray: gray}
}

// FromGray wraps an existing brightness image without copying it.
func FromGray(g *image.Gray) *Source {
	return &Source{gray: g}
}

// Load opens and decodes path and reduces it with FromImage. The decoded
// format name is returned alongside.
func Load(path string, opts Options) (*Source, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}
	return FromImage(img, opts), format, nil
}

// Width returns the number of columns.
func (s *Source) Width() int { return s.gray.Bounds().Dx() }

// Height returns the number of rows.
func (s *Source) Height() int { return s.gray.Bounds().Dy() }

// Gray exposes the underlying samples. Callers must not modify them.
func (s *Source) Gray() *image.Gray { return s.gray }

// Mean returns the truncated arithmetic mean of the samples in r, which is
// relative to the source origin. An empty rectangle averages to 0.
func (s *Source) Mean(r image.Rectangle) uint8 {
	b := s.gray.Bounds()
	r = r.Add(b.Min).Intersect(b)
	count := uint64(r.Dx()) * uint64(r.Dy())
	if count == 0 {
		return 0
	}
	var sum uint64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := s.gray.Pix[s.gray.PixOffset(r.Min.X, y):]
		for _, v := range row[:r.Dx()] {
			sum += uint64(v)
		}
	}
	return uint8(sum / count)
}
