package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"tagtrain/internal/config"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadFile returns the contents of path.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// WriteTarget creates configs/{tagger}/{cfgName}/config.json and a
// datasets.json naming datasets.
func WriteTarget(t testing.TB, cfg *config.Config, tagger, cfgName string, datasets ...string) {
	t.Helper()

	dir := filepath.Join(cfg.Paths.ConfigsDir, tagger, cfgName)
	WriteFile(t, filepath.Join(dir, "config.json"), `{"modelname": "`+cfgName+`"}`)

	list, err := json.Marshal(map[string][]string{"datasets": datasets})
	if err != nil {
		t.Fatalf("encode dataset list: %v", err)
	}
	WriteFile(t, filepath.Join(dir, "datasets.json"), string(list))
}

// WriteDataset creates {datasets}/{name} with one file per entry of splits,
// keyed by file name.
func WriteDataset(t testing.TB, cfg *config.Config, name string, splits map[string]string) {
	t.Helper()

	dir := filepath.Join(cfg.Paths.DatasetsDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir dataset %s: %v", name, err)
	}
	for file, content := range splits {
		WriteFile(t, filepath.Join(dir, file), content)
	}
}

// WriteManifest writes the provenance manifest as a JSON array.
func WriteManifest(t testing.TB, cfg *config.Config, records ...map[string]any) {
	t.Helper()

	if records == nil {
		records = []map[string]any{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("encode manifest: %v", err)
	}
	WriteFile(t, cfg.Paths.ProvenanceManifest, string(data))
}

// WritePrefab writes files into prefabs/{tagger}.
func WritePrefab(t testing.TB, cfg *config.Config, tagger string, files map[string]string) {
	t.Helper()

	dir := filepath.Join(cfg.Paths.PrefabsDir, tagger)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir prefab %s: %v", tagger, err)
	}
	for name, content := range files {
		WriteFile(t, filepath.Join(dir, name), content)
	}
}
