package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestPrintsExplicitTargets(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "tagtrain.toml")
	content := fmt.Sprintf("[paths]\ndocker_dir = %q\n\n[docker]\nversion = \"1.2\"\ntag_prefix = \"org/\"\ncontext_root = \"docker\"\n", filepath.Join(dir, "docker"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", configPath, "nlp/fast", "nlp/accurate"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := "docker build -t org/nlp-fast:1.2 docker/nlp/fast\n" +
		"docker build -t org/nlp-accurate:1.2 docker/nlp/accurate\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}
