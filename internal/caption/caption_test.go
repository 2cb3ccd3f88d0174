package caption

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestInfoText(t *testing.T) {
	info := Info{TileWidth: 32, TileHeight: 32, Count: 9, Width: 96, Height: 96}
	want := "Dice size: 32x32, Total dice: 9, Image size: 96x96"
	if got := info.Text(); got != want {
		t.Errorf("text: got %q, want %q", got, want)
	}
}

func TestBox_Clipped(t *testing.T) {
	face, err := DefaultFace(DefaultStyle.Size)
	if err != nil {
		t.Fatal(err)
	}
	defer face.Close()

	m := face.Metrics()
	minHeight := DefaultStyle.Padding + (m.Ascent + m.Descent).Ceil()
	r := Box("abcd", face, DefaultStyle, image.Rect(0, 0, 30, 100))
	if r.Min != (image.Point{}) || r.Dx() != 30 || r.Dy() < minHeight || r.Dy() < DefaultStyle.BoxHeight {
		t.Errorf("box: got %v, want 30 wide and at least %d high", r, minHeight)
	}
	r = Box("ab", face, DefaultStyle, image.Rect(0, 0, 300, 10))
	if r != image.Rect(0, 0, 24, 10) {
		t.Errorf("box: got %v", r)
	}
}

func TestOverlay_DrawsBoxAndText(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 800, 100))
	info := Info{TileWidth: 8, TileHeight: 8, Count: 100, Width: 80, Height: 80}
	if err := Overlay(img, info, ""); err != nil {
		t.Fatalf("overlay: %v", err)
	}

	face, err := DefaultFace(DefaultStyle.Size)
	if err != nil {
		t.Fatal(err)
	}
	defer face.Close()
	box := Box(info.Text(), face, DefaultStyle, img.Bounds())
	white := 0
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c.A != 255 {
				t.Fatalf("box pixel (%d,%d) not opaque: %v", x, y, c)
			}
			if c.R > 128 {
				white++
			}
		}
	}
	if white == 0 {
		t.Error("no text pixels drawn inside the box")
	}
	if c := img.NRGBAAt(box.Max.X+5, 60); c != (color.NRGBA{}) {
		t.Errorf("pixel outside box touched: %v", c)
	}
	// Descenders ("g" in "Image") stay inside the box.
	for y := box.Max.Y; y < img.Bounds().Max.Y; y++ {
		for x := 0; x < img.Bounds().Max.X; x++ {
			if c := img.NRGBAAt(x, y); c.A != 0 {
				t.Fatalf("pixel (%d,%d) below box touched: %v", x, y, c)
			}
		}
	}
}

func TestOverlay_BadFont(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	if err := Overlay(img, Info{}, filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Error("missing font: expected error")
	}
	bad := filepath.Join(t.TempDir(), "bad.ttf")
	os.WriteFile(bad, []byte("nope"), 0o644)
	if err := Overlay(img, Info{}, bad); err == nil {
		t.Error("bad font: expected error")
	}
}
