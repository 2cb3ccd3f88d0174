package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source represents a discovered image file.
type Source struct {
	// AbsPath is the absolute path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the input directory.
	RelPath string
	// Key is the mosaic key (relpath without extension).
	Key string
	// Size is the file size in bytes.
	Size int64
}

// ErrDuplicateKey is returned when two sources would share an output name.
var ErrDuplicateKey = errors.New("sources map to the same output")

// imageExtensions lists recognized image file extensions.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// IsImagePath reports whether path has a recognized image extension.
func IsImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// ScanImages returns the sources for input: the file itself, or every
// image below the directory in lexical order. Hidden directories and the
// exclude directory (typically the output directory) are skipped.
// Sources sharing a stem, like a.png and a.jpg, keep their extension in
// the key so their outputs do not collide.
func ScanImages(input, exclude string) ([]Source, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if !info.IsDir() {
		name := filepath.Base(input)
		return []Source{newSource(input, name, info.Size())}, nil
	}

	var sources []Source
	err = filepath.Walk(input, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// Skip hidden directories.
			if strings.HasPrefix(info.Name(), ".") && path != input {
				return filepath.SkipDir
			}
			if exclude != "" && path != input && filepath.Clean(path) == filepath.Clean(exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || !IsImagePath(path) {
			return nil
		}

		relPath, err := filepath.Rel(input, path)
		if err != nil {
			return err
		}
		sources = append(sources, newSource(path, relPath, info.Size()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	stems := make(map[string]int, len(sources))
	for _, s := range sources {
		stems[s.Key]++
	}
	for i, s := range sources {
		if stems[s.Key] > 1 {
			sources[i].Key = s.RelPath
		}
	}
	seen := make(map[string]string, len(sources))
	for _, s := range sources {
		if other, dup := seen[s.Key]; dup {
			return nil, fmt.Errorf("%w: %s and %s", ErrDuplicateKey, other, s.RelPath)
		}
		seen[s.Key] = s.RelPath
	}
	return sources, nil
}

func newSource(path, relPath string, size int64) Source {
	ext := filepath.Ext(relPath)
	return Source{
		AbsPath: path,
		RelPath: filepath.ToSlash(relPath),
		Key:     filepath.ToSlash(strings.TrimSuffix(relPath, ext)),
		Size:    size,
	}
}
