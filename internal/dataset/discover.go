package dataset

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ListImages returns the paths of the PNG files directly inside dir in
// directory order. Subdirectories and hidden files are skipped.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "list images")
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.ToLower(filepath.Ext(name)) != ".png" {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}

// LabelFor returns 1 when the file name contains "cat" and 0 otherwise.
// Only the base name is inspected.
func LabelFor(path string) float64 {
	if strings.Contains(filepath.Base(path), "cat") {
		return 1
	}
	return 0
}
