package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

// Discover walks root two levels deep and returns every tagger/config pair,
// in lexical directory order. Plain files at either level are ignored.
func Discover(root string) ([]Target, error) {
	taggers, err := subdirectories(root)
	if err != nil {
		return nil, fmt.Errorf("discover targets in %s: %w", root, err)
	}
	var targets []Target
	for _, tagger := range taggers {
		configs, err := subdirectories(filepath.Join(root, tagger))
		if err != nil {
			return nil, fmt.Errorf("discover configs for %s: %w", tagger, err)
		}
		for _, cfg := range configs {
			targets = append(targets, Target{Tagger: tagger, Config: cfg})
		}
	}
	return targets, nil
}

func subdirectories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Targets returns the parsed ids, or every target under root when ids is empty.
func Targets(ids []string, root string) ([]Target, error) {
	if len(ids) > 0 {
		return ParseAll(ids)
	}
	return Discover(root)
}
