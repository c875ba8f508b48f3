package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrMissingDatasets reports a dataset list without a "datasets" key.
	ErrMissingDatasets = errors.New(`dataset list has no "datasets" key`)
	// ErrEmptyDatasetList reports a dataset list with no entries.
	ErrEmptyDatasetList = errors.New("dataset list is empty")
)

type listFile struct {
	Datasets *[]string `json:"datasets"`
}

// ReadList parses a {"datasets": [...]} file and returns the names in order.
func ReadList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset list: %w", err)
	}
	return ParseList(data)
}

// ParseList decodes dataset list JSON.
func ParseList(data []byte) ([]string, error) {
	var file listFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse dataset list: %w", err)
	}
	if file.Datasets == nil {
		return nil, ErrMissingDatasets
	}
	if len(*file.Datasets) == 0 {
		return nil, ErrEmptyDatasetList
	}
	return *file.Datasets, nil
}
