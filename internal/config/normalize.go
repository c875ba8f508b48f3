package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	// The manifest and context root derive from the paths as written, so
	// capture them before expansion.
	c.normalizeDocker()
	if strings.TrimSpace(c.Paths.ProvenanceManifest) == "" {
		c.Paths.ProvenanceManifest = defaultManifestPath(c.Paths.DatasetsDir)
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePython()
	if err := c.normalizePie(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key   string
		value *string
		def   string
	}{
		{"paths.configs_dir", &c.Paths.ConfigsDir, defaultConfigsDir},
		{"paths.datasets_dir", &c.Paths.DatasetsDir, defaultDatasetsDir},
		{"paths.docker_dir", &c.Paths.DockerDir, defaultDockerDir},
		{"paths.logs_dir", &c.Paths.LogsDir, defaultLogsDir},
		{"paths.prefabs_dir", &c.Paths.PrefabsDir, defaultPrefabsDir},
		{"paths.taggers_dir", &c.Paths.TaggersDir, defaultTaggersDir},
		{"paths.provenance_manifest", &c.Paths.ProvenanceManifest, ""},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.def
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeDocker() {
	c.Docker.Version = strings.TrimSpace(c.Docker.Version)
	if c.Docker.Version == "" {
		if value, ok := os.LookupEnv("TAGTRAIN_VERSION"); ok {
			c.Docker.Version = strings.TrimSpace(value)
		}
	}
	if c.Docker.Version == "" {
		c.Docker.Version = defaultDockerVersion
	}
	c.Docker.TagPrefix = strings.TrimSpace(c.Docker.TagPrefix)
	if c.Docker.TagPrefix == "" {
		if value, ok := os.LookupEnv("TAGTRAIN_DOCKER_TAG_PREFIX"); ok {
			c.Docker.TagPrefix = strings.TrimSpace(value)
		}
	}
	c.Docker.PrefabPolicy = strings.ToLower(strings.TrimSpace(c.Docker.PrefabPolicy))
	if c.Docker.PrefabPolicy == "" {
		c.Docker.PrefabPolicy = defaultPrefabPolicy
	}
	c.Docker.ContextRoot = strings.TrimSpace(c.Docker.ContextRoot)
	if c.Docker.ContextRoot == "" {
		root := strings.TrimSpace(c.Paths.DockerDir)
		if root == "" {
			root = defaultDockerDir
		}
		c.Docker.ContextRoot = filepath.Clean(root)
	}
}

func (c *Config) normalizePython() {
	c.Python.Interpreter = strings.TrimSpace(c.Python.Interpreter)
	if c.Python.Interpreter == "" {
		c.Python.Interpreter = defaultPythonInterpreter
	}
	c.Python.RequirementsScript = strings.TrimSpace(c.Python.RequirementsScript)
	if c.Python.RequirementsScript == "" {
		c.Python.RequirementsScript = defaultRequirementsScript
	}
	c.Python.EntryScript = strings.TrimSpace(c.Python.EntryScript)
	if c.Python.EntryScript == "" {
		c.Python.EntryScript = defaultEntryScript
	}
}

func (c *Config) normalizePie() error {
	c.Pie.Device = strings.TrimSpace(c.Pie.Device)
	if c.Pie.Device == "" {
		c.Pie.Device = defaultPieDevice
	}
	c.Pie.Script = strings.TrimSpace(c.Pie.Script)
	if c.Pie.Script != "" {
		expanded, err := expandPath(c.Pie.Script)
		if err != nil {
			return fmt.Errorf("pie.script: %w", err)
		}
		c.Pie.Script = expanded
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	c.History.Path = strings.TrimSpace(c.History.Path)
	if c.History.Path == "" {
		return nil
	}
	expanded, err := expandPath(c.History.Path)
	if err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	c.History.Path = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

// defaultManifestPath places the provenance manifest at the corpora root:
// the first segment of a relative datasets dir, or its parent otherwise.
func defaultManifestPath(datasetsDir string) string {
	dir := strings.TrimSpace(datasetsDir)
	if dir == "" {
		dir = defaultDatasetsDir
	}
	dir = filepath.Clean(dir)
	if filepath.IsAbs(dir) || strings.HasPrefix(dir, "~") {
		return filepath.Join(filepath.Dir(dir), "datasets.json")
	}
	first := strings.SplitN(filepath.ToSlash(dir), "/", 2)[0]
	return filepath.Join(first, "datasets.json")
}
