package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// JPEGEncoder encodes images to JPEG. JPEG has no alpha, so transparent
// areas are flattened onto Background first.
type JPEGEncoder struct {
	Background color.Color
}

func (e *JPEGEncoder) Format() string    { return "jpeg" }
func (e *JPEGEncoder) Extension() string { return "jpg" }

func (e *JPEGEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	bg := e.Background
	if bg == nil {
		bg = color.Black
	}
	b := img.Bounds()
	flat := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), bg), img, image.Point{}, 1.0)

	var buf bytes.Buffer
	buf.Grow(256 * 1024) // pre-alloc 256KB

	err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
