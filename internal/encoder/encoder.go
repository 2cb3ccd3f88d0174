package encoder

import (
	"image"
)

// Encoder encodes an image to a specific format.
type Encoder interface {
	// Format returns the output format name ("png" or "jpeg").
	Format() string

	// Encode converts the image to bytes. Quality applies to lossy
	// formats only; 0 selects the encoder default.
	Encode(img image.Image, quality int) ([]byte, error)

	// Extension returns the file extension without dot.
	Extension() string
}
