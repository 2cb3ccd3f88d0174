// Package caption draws the debug text box summarizing a mosaic.
package caption

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Info is what the caption reports.
type Info struct {
	TileWidth, TileHeight int
	Count                 int
	Width, Height         int
}

// Text renders the single caption line.
func (i Info) Text() string {
	return fmt.Sprintf("Dice size: %dx%d, Total dice: %d, Image size: %dx%d",
		i.TileWidth, i.TileHeight, i.Count, i.Width, i.Height)
}

// Style fixes the look of the caption box.
type Style struct {
	Size       float64 // font size in points at 72 DPI
	Padding    int     // text offset from the box corner
	BoxHeight  int // minimum; grows to fit the face's ascent and descent
	CharWidth  int // approximate advance used to size the box
	Background color.Color
	Foreground color.Color
}

// DefaultStyle is an opaque black box with white 20pt text.
var DefaultStyle = Style{
	Size:       20,
	Padding:    5,
	BoxHeight:  24,
	CharWidth:  12,
	Background: color.NRGBA{A: 255},
	Foreground: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
}

// NewFace parses a TrueType/OpenType font and sizes it.
func NewFace(ttf []byte, size float64) (font.Face, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	return face, nil
}

// DefaultFace returns the embedded Go Bold face.
func DefaultFace(size float64) (font.Face, error) {
	return NewFace(gobold.TTF, size)
}

// LoadFace reads a font file from disk.
func LoadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return NewFace(data, size)
}

// Box returns the background rectangle for text, clipped to bounds. It is
// tall enough to hold the face's descenders below the padded baseline.
func Box(text string, face font.Face, style Style, bounds image.Rectangle) image.Rectangle {
	m := face.Metrics()
	h := 2*style.Padding + (m.Ascent + m.Descent).Ceil()
	if h < style.BoxHeight {
		h = style.BoxHeight
	}
	r := image.Rect(0, 0, len(text)*style.CharWidth, h).Add(bounds.Min)
	return r.Intersect(bounds)
}

// Draw fills the caption box in the top-left corner of dst and writes the
// caption text over it.
func Draw(dst draw.Image, info Info, face font.Face, style Style) {
	text := info.Text()
	b := dst.Bounds()
	draw.Draw(dst, Box(text, face, style, b), image.NewUniform(style.Background), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(style.Foreground),
		Face: face,
		// Dot is the baseline; shift by the ascent so the padding is
		// measured from the top of the glyphs.
		Dot: fixed.Point26_6{
			X: fixed.I(b.Min.X + style.Padding),
			Y: fixed.I(b.Min.Y+style.Padding) + face.Metrics().Ascent,
		},
	}
	d.DrawString(text)
}

// Overlay draws the caption with DefaultStyle. An empty fontPath selects
// the embedded face.
func Overlay(dst draw.Image, info Info, fontPath string) error {
	var (
		face font.Face
		err  error
	)
	if fontPath == "" {
		face, err = DefaultFace(DefaultStyle.Size)
	} else {
		face, err = LoadFace(fontPath, DefaultStyle.Size)
	}
	if err != nil {
		return err
	}
	defer face.Close()

	Draw(dst, info, face, DefaultStyle)
	return nil
}
