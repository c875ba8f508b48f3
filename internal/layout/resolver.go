package layout

import (
	"path/filepath"

	"tagtrain/internal/config"
)

// Paths holds every filesystem location derived from a Target.
type Paths struct {
	Target       Target
	ConfigFile   string
	DatasetsFile string
	DockerDir    string
	LogDir       string
	PrefabDir    string
	TaggerDir    string
}

// Resolver derives Paths from the configured roots.
type Resolver struct {
	ConfigsDir string
	DockerDir  string
	LogsDir    string
	PrefabsDir string
	TaggersDir string
}

// NewResolver builds a Resolver from the application config.
func NewResolver(cfg *config.Config) Resolver {
	return Resolver{
		ConfigsDir: cfg.Paths.ConfigsDir,
		DockerDir:  cfg.Paths.DockerDir,
		LogsDir:    cfg.Paths.LogsDir,
		PrefabsDir: cfg.Paths.PrefabsDir,
		TaggersDir: cfg.Paths.TaggersDir,
	}
}

// Resolve returns the paths for target. It never touches the filesystem, so
// a missing config only surfaces when a consumer opens ConfigFile. Config
// files follow the full identifier; the docker output folder is always
// {tagger}/{config}.
func (r Resolver) Resolve(target Target) Paths {
	configDir := filepath.Join(r.ConfigsDir, filepath.FromSlash(target.Dir()))
	return Paths{
		Target:       target,
		ConfigFile:   filepath.Join(configDir, "config.json"),
		DatasetsFile: filepath.Join(configDir, "datasets.json"),
		DockerDir:    filepath.Join(r.DockerDir, target.Tagger, target.Config),
		LogDir:       r.LogsDir,
		PrefabDir:    filepath.Join(r.PrefabsDir, target.Tagger),
		TaggerDir:    filepath.Join(r.TaggersDir, target.Tagger),
	}
}
