package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"tagtrain/internal/config"
	"tagtrain/internal/testsupport"
	"tagtrain/internal/trainer"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	exec       *stubExecutor
}

type stubExecutor struct {
	mu    sync.Mutex
	calls []trainer.Command
	code  int
}

func (s *stubExecutor) Run(_ context.Context, cmd trainer.Command) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, cmd)
	return s.code, nil
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	homeDir := filepath.Join(testsupport.BaseDir(cfg), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("TAGTRAIN_VERSION", "")
	t.Setenv("TAGTRAIN_DOCKER_TAG_PREFIX", "")

	configPath := filepath.Join(homeDir, ".config", "tagtrain", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	exec := &stubExecutor{}
	previous := trainerExecutor
	trainerExecutor = func() trainer.Executor { return exec }
	t.Cleanup(func() {
		trainerExecutor = previous
	})

	return &cliTestEnv{cfg: cfg, configPath: configPath, exec: exec}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
configs_dir = %q
datasets_dir = %q
docker_dir = %q
logs_dir = %q
prefabs_dir = %q
taggers_dir = %q
provenance_manifest = %q

[docker]
version = "1.2"
tag_prefix = "org/"
context_root = "docker"

[logging]
level = "error"
`,
		cfg.Paths.ConfigsDir,
		cfg.Paths.DatasetsDir,
		cfg.Paths.DockerDir,
		cfg.Paths.LogsDir,
		cfg.Paths.PrefabsDir,
		cfg.Paths.TaggersDir,
		cfg.Paths.ProvenanceManifest,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// seedTarget lays out a trainable tagger/config with one dataset and an
// existing virtual environment.
func seedTarget(t *testing.T, cfg *config.Config, tagger, name string) {
	t.Helper()
	testsupport.WriteTarget(t, cfg, tagger, name, "d1")
	testsupport.WriteDataset(t, cfg, "d1", map[string]string{"d1.train.tsv": "w\tT\n", "d1.dev.tsv": "v\tT\n"})
	testsupport.WriteManifest(t, cfg, map[string]any{"name": "D1", "version": "2", "trainingPath": "corpora/datasets/d1"})
	if err := os.MkdirAll(filepath.Join(cfg.Paths.TaggersDir, tagger, "venv"), 0o755); err != nil {
		t.Fatalf("mkdir venv: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
