package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Split names one partition of a dataset.
type Split string

const (
	Train Split = "train"
	Dev   Split = "dev"
	Test  Split = "test"
)

// Splits lists every split in merge order.
var Splits = []Split{Train, Dev, Test}

// Suffix is the filename suffix identifying the split.
func (s Split) Suffix() string {
	return string(s) + ".tsv"
}

// FindSplit returns the first regular file in dir whose name ends with the
// split suffix. Files are considered in lexical order. ok is false when no
// file matches; a missing directory is an error.
func FindSplit(dir string, split Split) (path string, ok bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, fmt.Errorf("list dataset %s: %w", dir, err)
	}
	suffix := split.Suffix()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), suffix) {
			return filepath.Join(dir, entry.Name()), true, nil
		}
	}
	return "", false, nil
}
