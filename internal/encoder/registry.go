package encoder

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Registry maps format names and file extensions to encoders.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry creates a registry with the PNG and JPEG encoders.
func NewRegistry() *Registry {
	r := &Registry{
		encoders: make(map[string]Encoder),
	}
	for _, enc := range []Encoder{&PNGEncoder{}, &JPEGEncoder{}} {
		r.encoders[enc.Format()] = enc
	}
	return r
}

// Get returns an encoder for the given format, or nil if unknown.
// "jpg" is accepted as an alias of "jpeg".
func (r *Registry) Get(format string) Encoder {
	format = strings.ToLower(format)
	if format == "jpg" {
		format = "jpeg"
	}
	return r.encoders[format]
}

// ForPath picks the encoder matching the extension of path.
func (r *Registry) ForPath(path string) (Encoder, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if enc := r.Get(ext); enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("no encoder for %q", path)
}

// Available returns all format names.
func (r *Registry) Available() []string {
	var result []string
	for _, f := range []string{"png", "jpeg"} {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}
