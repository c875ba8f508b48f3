package dataset

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Resolution describes the dataset folder a target trains on.
type Resolution struct {
	// Dir is the folder holding the split files.
	Dir string
	// Sources lists the dataset names from the config, in order.
	Sources []string
	// Merged is true when Dir was produced by merging several sources.
	Merged bool
}

// Resolver turns a dataset list file into a single dataset folder.
type Resolver struct {
	Root   string
	Logger *slog.Logger
}

// Resolve reads the dataset list at listPath. One entry resolves to
// {Root}/{entry} untouched; several are merged into {Root}/{mergedName}.
func (r Resolver) Resolve(listPath, mergedName string) (Resolution, error) {
	sources, err := ReadList(listPath)
	if err != nil {
		return Resolution{}, fmt.Errorf("%s: %w", listPath, err)
	}
	if len(sources) == 1 {
		return Resolution{Dir: filepath.Join(r.Root, sources[0]), Sources: sources}, nil
	}
	dir, err := Merger{Root: r.Root, Logger: r.Logger}.Merge(sources, mergedName)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Dir: dir, Sources: sources, Merged: true}, nil
}
