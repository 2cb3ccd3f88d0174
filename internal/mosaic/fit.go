package mosaic

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// ErrInvalidTarget is returned for a non-positive fit resolution.
var ErrInvalidTarget = errors.New("fit target must be positive")

// FitSize returns the largest w×h with the aspect ratio of srcW×srcH that
// fits inside targetW×targetH. Both results are at least 1.
func FitSize(srcW, srcH, targetW, targetH int) (int, int) {
	ratio := float64(srcW) / float64(srcH)
	var w, h int
	if float64(targetW)/float64(targetH) > ratio {
		h = targetH
		w = int(math.Round(float64(targetH) * ratio))
	} else {
		w = targetW
		h = int(math.Round(float64(targetW) / ratio))
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Fit resamples canvas to fit targetW×targetH and centers it on a
// transparent canvas of exactly that size.
func Fit(canvas image.Image, targetW, targetH int) (*image.NRGBA, error) {
	if targetW <= 0 || targetH <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidTarget, targetW, targetH)
	}
	b := canvas.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("fit: empty canvas")
	}

	w, h := FitSize(b.Dx(), b.Dy(), targetW, targetH)
	resized := imaging.Resize(canvas, w, h, imaging.Lanczos)

	// The target starts fully transparent, so pasting equals drawing over.
	dst := imaging.New(targetW, targetH, color.NRGBA{})
	offset := image.Pt((targetW-w)/2, (targetH-h)/2)
	return imaging.Paste(dst, resized, offset), nil
}
