// Package dockertag renders `docker build` commands for trained docker
// contexts. Commands are printed for the operator to run, never executed.
package dockertag

import (
	"fmt"
	"io"
	"path"

	"tagtrain/internal/config"
	"tagtrain/internal/layout"
)

// Builder renders build commands for contexts below Root.
type Builder struct {
	// Root is printed exactly as configured; relative roots stay relative.
	Root    string
	Prefix  string
	Version string
}

// NewBuilder builds a Builder from the application config.
func NewBuilder(cfg *config.Config) Builder {
	return Builder{
		Root:    cfg.Docker.ContextRoot,
		Prefix:  cfg.Docker.TagPrefix,
		Version: cfg.Docker.Version,
	}
}

// Tag returns the image reference for target.
func (b Builder) Tag(target layout.Target) string {
	return fmt.Sprintf("%s%s-%s:%s", b.Prefix, target.Tagger, target.Config, b.Version)
}

// Line returns the build command for target. The context folder keeps the
// identifier's middle segments; the tag uses only tagger and config.
func (b Builder) Line(target layout.Target) string {
	return fmt.Sprintf("docker build -t %s %s", b.Tag(target), path.Join(b.Root, target.Dir()))
}

// Lines returns one build command per target, in order.
func (b Builder) Lines(targets []layout.Target) []string {
	lines := make([]string, 0, len(targets))
	for _, target := range targets {
		lines = append(lines, b.Line(target))
	}
	return lines
}

// Write prints one build command per line.
func (b Builder) Write(w io.Writer, targets []layout.Target) error {
	for _, line := range b.Lines(targets) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Print writes build commands for ids, or for every context found two
// levels below the docker output folder when ids is empty.
func Print(w io.Writer, cfg *config.Config, ids []string) error {
	targets, err := layout.Targets(ids, cfg.Paths.DockerDir)
	if err != nil {
		return err
	}
	return NewBuilder(cfg).Write(w, targets)
}
