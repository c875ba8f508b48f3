package dataset_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"tagtrain/internal/dataset"
	"tagtrain/internal/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr error
	}{
		{name: "single", input: `{"datasets": ["d1"]}`, want: []string{"d1"}},
		{name: "ordered", input: `{"datasets": ["b", "a"]}`, want: []string{"b", "a"}},
		{name: "missing key", input: `{"sets": ["a"]}`, wantErr: dataset.ErrMissingDatasets},
		{name: "empty", input: `{"datasets": []}`, wantErr: dataset.ErrEmptyDatasetList},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := dataset.ParseList([]byte(tc.input))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseList: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseList = %v, want %v", got, tc.want)
			}
		})
	}

	if _, err := dataset.ParseList([]byte(`{"datasets": [`)); err == nil {
		t.Fatal("expected parse error for malformed json")
	}
}

func TestFindSplitReturnsAbsentForMissingSplit(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "d1")
	writeFile(t, filepath.Join(dir, "d1.train.tsv"), "a\tb\n")

	path, ok, err := dataset.FindSplit(dir, dataset.Train)
	if err != nil || !ok {
		t.Fatalf("expected train split, ok=%v err=%v", ok, err)
	}
	if path != filepath.Join(dir, "d1.train.tsv") {
		t.Fatalf("unexpected train path %q", path)
	}

	for _, split := range []dataset.Split{dataset.Dev, dataset.Test} {
		path, ok, err := dataset.FindSplit(dir, split)
		if err != nil {
			t.Fatalf("FindSplit(%s) returned error: %v", split, err)
		}
		if ok || path != "" {
			t.Fatalf("expected absent %s split, got %q", split, path)
		}
	}
}

func TestFindSplitFirstMatchWinsAndSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "a.train.tsv"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "c.train.tsv"), "c")
	writeFile(t, filepath.Join(dir, "b.train.tsv"), "b")

	path, ok, err := dataset.FindSplit(dir, dataset.Train)
	if err != nil || !ok {
		t.Fatalf("expected match, ok=%v err=%v", ok, err)
	}
	if filepath.Base(path) != "b.train.tsv" {
		t.Fatalf("expected first regular file in order, got %q", path)
	}
}

func TestFindSplitMissingDirectory(t *testing.T) {
	if _, _, err := dataset.FindSplit(filepath.Join(t.TempDir(), "nope"), dataset.Train); err == nil {
		t.Fatal("expected error for missing dataset folder")
	}
}

func TestMergeConcatenatesSplitsWithBoundaries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "a.train.tsv"), "a1\tX\n")
	writeFile(t, filepath.Join(root, "a", "a.dev.tsv"), "a2\tY\n")
	writeFile(t, filepath.Join(root, "b", "b-train.tsv"), "b1\tZ\n")
	writeFile(t, filepath.Join(root, "b", "b-test.tsv"), "b3\tW\n")

	merger := dataset.Merger{Root: root, Logger: logging.NewNop()}
	dir, err := merger.Merge([]string{"a", "b"}, "pie-fast")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if dir != filepath.Join(root, "pie-fast") {
		t.Fatalf("unexpected merged dir %q", dir)
	}

	want := map[string]string{
		"train.tsv": "a1\tX\n\n\nb1\tZ\n\n\n",
		"dev.tsv":   "a2\tY\n\n\n",
		"test.tsv":  "b3\tW\n\n\n",
	}
	for name, content := range want {
		if got := readFile(t, filepath.Join(dir, name)); got != content {
			t.Fatalf("%s = %q, want %q", name, got, content)
		}
	}
}

func TestMergeWritesEmptySplitWhenNoSourceHasIt(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "train.tsv"), "x")
	writeFile(t, filepath.Join(root, "b", "train.tsv"), "y")

	dir, err := dataset.Merger{Root: root}.Merge([]string{"a", "b"}, "m")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got := readFile(t, filepath.Join(dir, "dev.tsv")); got != "" {
		t.Fatalf("expected empty dev split, got %q", got)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "a.train.tsv"), "one\n")
	writeFile(t, filepath.Join(root, "b", "b.train.tsv"), "two\n")

	merger := dataset.Merger{Root: root}
	dir, err := merger.Merge([]string{"a", "b"}, "m")
	if err != nil {
		t.Fatalf("first Merge: %v", err)
	}
	first := readFile(t, filepath.Join(dir, "train.tsv"))

	if _, err := merger.Merge([]string{"a", "b"}, "m"); err != nil {
		t.Fatalf("second Merge: %v", err)
	}
	second := readFile(t, filepath.Join(dir, "train.tsv"))
	if first != second {
		t.Fatalf("expected identical output across runs:\nfirst=%q\nsecond=%q", first, second)
	}
}

func TestMergeFailsForMissingSource(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "a.train.tsv"), "one\n")
	if _, err := (dataset.Merger{Root: root}).Merge([]string{"a", "missing"}, "m"); err == nil {
		t.Fatal("expected error for missing source folder")
	}
}

func TestResolveSingleDatasetSkipsMerge(t *testing.T) {
	root := t.TempDir()
	listPath := filepath.Join(t.TempDir(), "datasets.json")
	writeFile(t, listPath, `{"datasets": ["d1"]}`)

	res, err := dataset.Resolver{Root: root}.Resolve(listPath, "taggerX-cfgY")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Dir != filepath.Join(root, "d1") || res.Merged {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if _, err := os.Stat(filepath.Join(root, "taggerX-cfgY")); !os.IsNotExist(err) {
		t.Fatalf("expected no merge folder, stat err=%v", err)
	}
}

func TestResolveMultipleDatasetsMerges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "a.train.tsv"), "a")
	writeFile(t, filepath.Join(root, "b", "b.train.tsv"), "b")
	listPath := filepath.Join(t.TempDir(), "datasets.json")
	writeFile(t, listPath, `{"datasets": ["a", "b"]}`)

	res, err := dataset.Resolver{Root: root}.Resolve(listPath, "pie-fast")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Merged || res.Dir != filepath.Join(root, "pie-fast") {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if !reflect.DeepEqual(res.Sources, []string{"a", "b"}) {
		t.Fatalf("unexpected sources %v", res.Sources)
	}
	if got := readFile(t, filepath.Join(res.Dir, "train.tsv")); got != "a\n\nb\n\n" {
		t.Fatalf("unexpected merged train split %q", got)
	}
}

func TestResolveMissingListFile(t *testing.T) {
	_, err := dataset.Resolver{Root: t.TempDir()}.Resolve(filepath.Join(t.TempDir(), "datasets.json"), "m")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
