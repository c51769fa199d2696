// Package scan lists the card images of an input directory.
package scan

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when the input directory is missing or unreadable.
var ErrNotFound = errors.New("input directory not found")

// PNGs returns the names of the .png files in dir in ascending
// lexicographic order. The order determines card placement in the output
// document, so it must not depend on filesystem enumeration order.
// limit > 0 keeps only the first limit names. A directory with no matches
// yields an empty slice, not an error.
func PNGs(dir string, limit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		names = append(names, e.Name())
	}
	// os.ReadDir sorts entries by filename, which is exactly the order
	// the sheet needs; no re-sort required.
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}
