package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the working tree layout.
type Paths struct {
	ConfigsDir         string `toml:"configs_dir"`
	DatasetsDir        string `toml:"datasets_dir"`
	DockerDir          string `toml:"docker_dir"`
	LogsDir            string `toml:"logs_dir"`
	PrefabsDir         string `toml:"prefabs_dir"`
	TaggersDir         string `toml:"taggers_dir"`
	ProvenanceManifest string `toml:"provenance_manifest"`
}

// Docker contains settings for docker build contexts and image tags.
type Docker struct {
	Version      string `toml:"version"`
	TagPrefix    string `toml:"tag_prefix"`
	PrefabPolicy string `toml:"prefab_policy"`
	// ContextRoot is the docker output root as printed in build commands.
	// Defaults to paths.docker_dir exactly as written in the config.
	ContextRoot string `toml:"context_root"`
}

// Python contains settings for per-tagger virtual environments.
type Python struct {
	Interpreter        string `toml:"interpreter"`
	RequirementsScript string `toml:"requirements_script"`
	EntryScript        string `toml:"entry_script"`
}

// Trainer contains settings for the external trainer subprocess.
type Trainer struct {
	// TimeoutSeconds bounds a single trainer run. Zero waits indefinitely.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Pie contains settings for the pie tagger entry point.
type Pie struct {
	Device string `toml:"device"`
	Script string `toml:"script"`
}

// History contains settings for the SQLite run ledger.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for tagtrain.
//
// Configuration sections by subsystem:
//   - Paths: configs, datasets, docker output, logs, prefabs, taggers
//   - Docker: image version, tag prefix, prefab copy policy
//   - Python: interpreter and bootstrap script for virtual environments
//   - Trainer: subprocess limits
//   - Pie: device and script for the pie entry point
//   - History: run ledger location
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	Docker  Docker  `toml:"docker"`
	Python  Python  `toml:"python"`
	Trainer Trainer `toml:"trainer"`
	Pie     Pie     `toml:"pie"`
	History History `toml:"history"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tagtrain/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tagtrain.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories tagtrain writes into. Input trees
// (configs, datasets, prefabs, taggers) are never created here.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogsDir, c.Paths.DockerDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PythonBinary returns the interpreter used to create virtual environments.
func (c *Config) PythonBinary() string {
	return c.Python.Interpreter
}

// HistoryPath returns the run ledger database path.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(c.Paths.LogsDir, defaultHistoryFile)
}

// LockPath returns the path of the lock file guarding a training run.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogsDir, "tagtrain.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	expanded, err := expandHome(pathValue)
	if err != nil {
		return "", err
	}
	cleaned := filepath.Clean(expanded)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

func expandHome(pathValue string) (string, error) {
	if !strings.HasPrefix(pathValue, "~") {
		return pathValue, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if pathValue == "~" {
		return home, nil
	}
	if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
		return filepath.Join(home, pathValue[2:]), nil
	}
	return pathValue, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
