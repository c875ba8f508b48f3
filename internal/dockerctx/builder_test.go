package dockerctx_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"tagtrain/internal/config"
	"tagtrain/internal/dockerctx"
	"tagtrain/internal/layout"
	"tagtrain/internal/logging"
	"tagtrain/internal/testsupport"
)

var target = layout.Target{Tagger: "pie", Config: "fast"}

func setup(t *testing.T, opts ...testsupport.ConfigOption) (*config.Config, dockerctx.Builder) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	testsupport.WriteTarget(t, cfg, "pie", "fast", "a")
	testsupport.WriteManifest(t, cfg, map[string]any{"name": "A", "version": "1", "trainingPath": "corpora/a"})
	testsupport.WritePrefab(t, cfg, "pie", map[string]string{"Dockerfile": "FROM pie\n"})
	return cfg, dockerctx.NewBuilder(cfg, logging.NewNop())
}

func TestBuildFreshContextCopiesEverything(t *testing.T) {
	cfg, builder := setup(t)

	ctx, err := builder.Build(target)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	wantDir := filepath.Join(cfg.Paths.DockerDir, "pie", "fast")
	if ctx.Dir != wantDir || ctx.Existed || !ctx.PrefabCopied {
		t.Fatalf("unexpected context %+v", ctx)
	}

	if got := testsupport.ReadFile(t, filepath.Join(wantDir, "config.json")); got != `{"modelname": "fast"}` {
		t.Fatalf("unexpected config copy %q", got)
	}
	if got := testsupport.ReadFile(t, filepath.Join(wantDir, "Dockerfile")); got != "FROM pie\n" {
		t.Fatalf("unexpected prefab copy %q", got)
	}

	var stamped struct {
		Datasets []map[string]any `json:"datasets"`
	}
	if err := json.Unmarshal([]byte(testsupport.ReadFile(t, filepath.Join(wantDir, "datasets.json"))), &stamped); err != nil {
		t.Fatalf("decode stamped datasets: %v", err)
	}
	if len(stamped.Datasets) != 1 || stamped.Datasets[0]["name"] != "A" {
		t.Fatalf("expected stamped provenance record, got %v", stamped.Datasets)
	}
}

func TestBuildSkipsPrefabWhenContextExisted(t *testing.T) {
	cfg, builder := setup(t)
	dir := filepath.Join(cfg.Paths.DockerDir, "pie", "fast")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	ctx, err := builder.Build(target)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !ctx.Existed {
		t.Fatal("expected Existed for a pre-existing folder")
	}
	if ctx.PrefabCopied {
		t.Fatal("expected prefab copy to be skipped for a pre-existing folder")
	}
	if _, err := os.Stat(filepath.Join(dir, "Dockerfile")); !os.IsNotExist(err) {
		t.Fatalf("expected no prefab files, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.json")); err != nil {
		t.Fatalf("expected config.json to be copied regardless: %v", err)
	}
}

func TestBuildAlwaysPolicyRecopiesPrefab(t *testing.T) {
	cfg, builder := setup(t, testsupport.WithPrefabPolicy(config.PrefabAlways))
	if _, err := builder.Build(target); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	dockerfile := filepath.Join(cfg.Paths.DockerDir, "pie", "fast", "Dockerfile")
	testsupport.WriteFile(t, dockerfile, "edited")

	ctx, err := builder.Build(target)
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if !ctx.Existed || !ctx.PrefabCopied {
		t.Fatalf("unexpected context %+v", ctx)
	}
	if got := testsupport.ReadFile(t, dockerfile); got != "FROM pie\n" {
		t.Fatalf("expected prefab to overwrite edited file, got %q", got)
	}
}

func TestBuildRefreshesJSONOnRebuild(t *testing.T) {
	cfg, builder := setup(t)
	if _, err := builder.Build(target); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	dir := filepath.Join(cfg.Paths.DockerDir, "pie", "fast")
	first := testsupport.ReadFile(t, filepath.Join(dir, "datasets.json"))

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.ConfigsDir, "pie", "fast", "config.json"), `{"modelname": "v2"}`)
	if _, err := builder.Build(target); err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if got := testsupport.ReadFile(t, filepath.Join(dir, "config.json")); got != `{"modelname": "v2"}` {
		t.Fatalf("expected config.json overwritten, got %q", got)
	}
	if got := testsupport.ReadFile(t, filepath.Join(dir, "datasets.json")); got != first {
		t.Fatalf("expected identical stamped file across builds:\nfirst=%q\nsecond=%q", first, got)
	}
}

func TestBuildMissingPrefabIsNotAnError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteTarget(t, cfg, "pie", "fast", "a")
	testsupport.WriteManifest(t, cfg)

	ctx, err := dockerctx.NewBuilder(cfg, logging.NewNop()).Build(target)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ctx.PrefabCopied {
		t.Fatal("expected no prefab copy without a prefab folder")
	}
}

func TestBuildMissingConfigFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteManifest(t, cfg)
	if _, err := dockerctx.NewBuilder(cfg, logging.NewNop()).Build(target); err == nil {
		t.Fatal("expected error for missing config.json")
	}
}
