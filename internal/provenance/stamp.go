package provenance

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tagtrain/internal/dataset"
	"tagtrain/internal/logging"
)

// DatasetsFile is the provenance file name inside a docker context.
const DatasetsFile = "datasets.json"

type placeholder struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type stampedFile struct {
	Datasets []json.RawMessage `json:"datasets"`
}

// Stamper rewrites a docker context's datasets.json with manifest records.
type Stamper struct {
	ManifestPath string
	Logger       *slog.Logger
}

// Stamp replaces {dockerDir}/datasets.json, a name-only dataset list, with
// {"datasets": [records...]} in list order. The original list is not kept.
func (s Stamper) Stamp(dockerDir string) ([]json.RawMessage, error) {
	logger := logging.NewComponentLogger(s.Logger, "provenance")
	target := filepath.Join(dockerDir, DatasetsFile)

	names, err := dataset.ReadList(target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", target, err)
	}
	manifest, err := LoadManifest(s.ManifestPath)
	if err != nil {
		return nil, err
	}

	records, err := Resolve(manifest, names, logger)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(stampedFile{Datasets: records}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode stamped datasets: %w", err)
	}
	if err := os.WriteFile(target, append(data, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("write stamped datasets: %w", err)
	}
	return records, nil
}

// Resolve maps names to manifest records, substituting placeholders for
// names the manifest lacks.
func Resolve(manifest *Manifest, names []string, logger *slog.Logger) ([]json.RawMessage, error) {
	records := make([]json.RawMessage, 0, len(names))
	for _, name := range names {
		if record, ok := manifest.Lookup(name); ok {
			records = append(records, record.Raw)
			continue
		}
		logging.WarnWithContext(logger, "dataset not found in provenance manifest; recording unknown version", "provenance_unknown",
			logging.String("dataset", name),
			logging.String(logging.FieldErrorHint, "add a record whose trainingPath ends in the dataset name"),
			logging.String(logging.FieldImpact, "docker context lists the dataset with version unknown"),
		)
		raw, err := json.Marshal(placeholder{Name: name, Version: UnknownVersion})
		if err != nil {
			return nil, fmt.Errorf("encode placeholder for %s: %w", name, err)
		}
		records = append(records, raw)
	}
	return records, nil
}
