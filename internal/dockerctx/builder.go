package dockerctx

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"tagtrain/internal/config"
	"tagtrain/internal/fileutil"
	"tagtrain/internal/layout"
	"tagtrain/internal/logging"
	"tagtrain/internal/provenance"
)

const configFile = "config.json"

// Context describes a materialized docker build context.
type Context struct {
	Dir string
	// Existed reports whether Dir was present before the build started.
	Existed bool
	// PrefabCopied reports whether the prefab tree was copied into Dir.
	PrefabCopied bool
}

// Builder assembles docker contexts.
type Builder struct {
	Layout       layout.Resolver
	Stamper      provenance.Stamper
	PrefabPolicy string
	Logger       *slog.Logger
}

// NewBuilder wires a Builder from the application config.
func NewBuilder(cfg *config.Config, logger *slog.Logger) Builder {
	return Builder{
		Layout:       layout.NewResolver(cfg),
		Stamper:      provenance.Stamper{ManifestPath: cfg.Paths.ProvenanceManifest, Logger: logger},
		PrefabPolicy: cfg.Docker.PrefabPolicy,
		Logger:       logger,
	}
}

// Build creates or refreshes the docker context for target.
func (b Builder) Build(target layout.Target) (Context, error) {
	logger := logging.NewComponentLogger(b.Logger, "dockerctx").With(logging.String(logging.FieldTarget, target.String()))
	paths := b.Layout.Resolve(target)
	ctx := Context{Dir: paths.DockerDir}

	existed, err := dirExists(paths.DockerDir)
	if err != nil {
		return Context{}, err
	}
	ctx.Existed = existed

	if err := os.MkdirAll(paths.DockerDir, 0o755); err != nil {
		return Context{}, fmt.Errorf("create docker context: %w", err)
	}
	if err := fileutil.CopyFile(paths.ConfigFile, filepath.Join(paths.DockerDir, configFile)); err != nil {
		return Context{}, fmt.Errorf("copy %s: %w", configFile, err)
	}
	if err := fileutil.CopyFile(paths.DatasetsFile, filepath.Join(paths.DockerDir, provenance.DatasetsFile)); err != nil {
		return Context{}, fmt.Errorf("copy %s: %w", provenance.DatasetsFile, err)
	}
	if _, err := b.Stamper.Stamp(paths.DockerDir); err != nil {
		return Context{}, fmt.Errorf("stamp provenance: %w", err)
	}

	if !b.shouldCopyPrefab(existed) {
		logger.Debug("prefab copy skipped; docker context already existed", logging.String("dir", paths.DockerDir))
		return ctx, nil
	}
	copied, err := b.copyPrefab(paths, logger)
	if err != nil {
		return Context{}, err
	}
	ctx.PrefabCopied = copied

	logger.Info("docker context ready",
		logging.String("dir", paths.DockerDir),
		logging.Bool("existed", existed),
		logging.Bool("prefab_copied", copied),
	)
	return ctx, nil
}

func (b Builder) shouldCopyPrefab(existed bool) bool {
	if b.PrefabPolicy == config.PrefabAlways {
		return true
	}
	return !existed
}

func (b Builder) copyPrefab(paths layout.Paths, logger *slog.Logger) (bool, error) {
	ok, err := dirExists(paths.PrefabDir)
	if err != nil {
		return false, err
	}
	if !ok {
		logging.WarnWithContext(logger, "prefab folder missing; docker context has no prefab files", "prefab_missing",
			logging.String("prefab_dir", paths.PrefabDir),
			logging.String(logging.FieldErrorHint, "create the tagger's prefab folder with its Dockerfile"),
			logging.String(logging.FieldImpact, "docker build will fail without a Dockerfile"),
		)
		return false, nil
	}
	files, err := fileutil.CopyTree(paths.PrefabDir, paths.DockerDir)
	if err != nil {
		return false, fmt.Errorf("copy prefab: %w", err)
	}
	logger.Debug("prefab copied", logging.String("prefab_dir", paths.PrefabDir), logging.Int("files", files))
	return true, nil
}

func dirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.IsDir(), nil
}
