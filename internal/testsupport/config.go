package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tagtrain/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose working tree lives in a unique temp
// directory per test. Input roots are created empty; output roots are left
// for the code under test to create.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths = config.Paths{
		ConfigsDir:         filepath.Join(base, "configs"),
		DatasetsDir:        filepath.Join(base, "corpora", "datasets"),
		DockerDir:          filepath.Join(base, "docker"),
		LogsDir:            filepath.Join(base, "logs"),
		PrefabsDir:         filepath.Join(base, "prefabs"),
		TaggersDir:         filepath.Join(base, "taggers"),
		ProvenanceManifest: filepath.Join(base, "corpora", "datasets.json"),
	}
	cfgVal.Docker.ContextRoot = cfgVal.Paths.DockerDir

	for _, dir := range []string{cfgVal.Paths.ConfigsDir, cfgVal.Paths.DatasetsDir, cfgVal.Paths.PrefabsDir, cfgVal.Paths.TaggersDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPrefabPolicy sets the docker prefab copy policy.
func WithPrefabPolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Docker.PrefabPolicy = policy
	}
}

// WithHistory toggles the run ledger.
func WithHistory(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = enabled
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the binaries a training run
// shells out to are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"python3", "sh", "docker"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ConfigsDir)
}
