package tileset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/fetzsav/dice/internal/face"
)

// ScanDir lists the regular files of dir sorted by path, following
// symlinks. The directory must hold exactly six of them; subdirectories
// are not descended into.
func ScanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read tile dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		mode := e.Type()
		if mode&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("tile %s: %w", path, err)
			}
			mode = info.Mode()
		}
		if !mode.IsRegular() {
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) != face.Count {
		return nil, fmt.Errorf("%w: %s contains %d files", ErrTileCount, dir, len(paths))
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadDir builds a set from the six files in dir, in lexicographic order.
func LoadDir(dir string, size int) (*Set, error) {
	paths, err := ScanDir(dir)
	if err != nil {
		return nil, err
	}
	return LoadFiles(paths, size)
}
