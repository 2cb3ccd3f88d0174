// Package tileset loads and validates the six die-face tiles a mosaic is
// assembled from.
package tileset

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/fetzsav/dice/internal/face"
)

var (
	// ErrTileCount is returned when a set is built from anything but six sources.
	ErrTileCount = errors.New("tile set needs exactly 6 images")
	// ErrTileSize is returned for a non-positive resample target.
	ErrTileSize = errors.New("tile size must be positive")
)

// Tile is one face image. Every tile of a Set is Size×Size.
type Tile struct {
	Face  face.Identity
	Image *image.NRGBA
}

// Set is an immutable collection of one tile per face.
type Set struct {
	tiles [face.Count]Tile
	size  int
}

// New resamples six images to size×size with a Lanczos filter and assigns
// faces 1..6 in slice order.
func New(images []image.Image, size int) (*Set, error) {
	if len(images) != face.Count {
		return nil, fmt.Errorf("%w: got %d", ErrTileCount, len(images))
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrTileSize, size)
	}
	s := &Set{size: size}
	for i, img := range images {
		if img == nil || img.Bounds().Empty() {
			return nil, fmt.Errorf("tile %d: empty image", i+1)
		}
		s.tiles[i] = Tile{
			Face:  face.All[i],
			Image: imaging.Resize(img, size, size, imaging.Lanczos),
		}
	}
	return s, nil
}

// LoadFiles decodes six image files; the first path becomes face 1.
func LoadFiles(paths []string, size int) (*Set, error) {
	if len(paths) != face.Count {
		return nil, fmt.Errorf("%w: got %d", ErrTileCount, len(paths))
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrTileSize, size)
	}
	images := make([]image.Image, 0, len(paths))
	for _, p := range paths {
		img, err := decodeFile(p)
		if err != nil {
			return nil, err
		}
		log.Debugf("tile %d: %s (%dx%d)", len(images)+1, p, img.Bounds().Dx(), img.Bounds().Dy())
		images = append(images, img)
	}
	return New(images, size)
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tile %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode tile %s: %w", path, err)
	}
	return img, nil
}

// Size returns the shared tile dimensions.
func (s *Set) Size() image.Point { return image.Pt(s.size, s.size) }

// Tile returns the image for id.
func (s *Set) Tile(id face.Identity) (image.Image, bool) {
	if !id.Valid() {
		return nil, false
	}
	t := s.tiles[id.Index()]
	if t.Image == nil {
		return nil, false
	}
	return t.Image, true
}

// Tiles returns the tiles in face order.
func (s *Set) Tiles() []Tile {
	out := make([]Tile, len(s.tiles))
	copy(out, s.tiles[:])
	return out
}

// Invert inverts the color channels of every tile, leaving alpha as is.
// It is meant to be applied once, right after loading.
func (s *Set) Invert() {
	for i := range s.tiles {
		s.tiles[i].Image = imaging.Invert(s.tiles[i].Image)
	}
}
