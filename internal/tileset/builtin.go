package tileset

import (
	"image"
	"image/color"

	"github.com/srwiley/rasterx"

	"github.com/fetzsav/dice/internal/face"
)

// builtinRes is the resolution the default faces are drawn at before
// being resampled to the requested tile size.
const builtinRes = 512

var (
	dieBody = color.NRGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
	diePip  = color.NRGBA{R: 0xf4, G: 0xf4, B: 0xf4, A: 0xff}
)

// pip centers on a 4×4 lattice, per face.
var pipLayout = [face.Count][]image.Point{
	{{2, 2}},
	{{1, 1}, {3, 3}},
	{{1, 1}, {2, 2}, {3, 3}},
	{{1, 1}, {3, 1}, {1, 3}, {3, 3}},
	{{1, 1}, {3, 1}, {2, 2}, {1, 3}, {3, 3}},
	{{1, 1}, {3, 1}, {1, 2}, {3, 2}, {1, 3}, {3, 3}},
}

// Builtin returns the default dice: dark bodies with light pips, so that
// more pips means a brighter tile and the faces follow classifier order.
func Builtin(size int) (*Set, error) {
	images := make([]image.Image, face.Count)
	for i := range images {
		images[i] = drawFace(pipLayout[i], builtinRes)
	}
	return New(images, size)
}

// drawFace renders an opaque die body with anti-aliased pips.
func drawFace(pips []image.Point, res int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, res, res))
	scanner := rasterx.NewScannerGV(res, res, img, img.Bounds())
	filler := rasterx.NewFiller(res, res, scanner)

	filler.SetColor(dieBody)
	rasterx.AddRect(0, 0, float64(res), float64(res), 0, filler)
	filler.Draw()
	filler.Clear()

	step := float64(res) / 4
	radius := float64(res) / 10
	filler.SetColor(diePip)
	for _, p := range pips {
		rasterx.AddCircle(float64(p.X)*step, float64(p.Y)*step, radius, filler)
	}
	filler.Draw()
	return img
}
