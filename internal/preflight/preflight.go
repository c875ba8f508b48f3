package preflight

import (
	"tagtrain/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks a training run needs.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	return []Result{
		CheckDirectoryReadable("Configs directory", cfg.Paths.ConfigsDir),
		// Merged datasets are written next to their sources.
		CheckDirectoryAccess("Datasets directory", cfg.Paths.DatasetsDir),
		CheckDirectoryReadable("Prefabs directory", cfg.Paths.PrefabsDir),
		// Virtual environments are created inside tagger folders.
		CheckDirectoryAccess("Taggers directory", cfg.Paths.TaggersDir),
		CheckFile("Provenance manifest", cfg.Paths.ProvenanceManifest),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}
