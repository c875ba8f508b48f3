package layout

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
)

// ErrInvalidTarget reports an identifier that is not of the form tagger/config.
var ErrInvalidTarget = errors.New("invalid target")

// Target identifies one training configuration of a tagger.
type Target struct {
	Tagger string
	Config string
	// Rel is the identifier as given when it has middle segments, e.g.
	// "pie/group/fast". Empty for plain tagger/config targets.
	Rel string
}

// Dir returns the target's folder below the configs root, slash separated.
// Middle segments of the identifier are kept.
func (t Target) Dir() string {
	if t.Rel != "" {
		return t.Rel
	}
	return t.Tagger + "/" + t.Config
}

// String renders the target as tagger/config.
func (t Target) String() string {
	return t.Tagger + "/" + t.Config
}

// MergedName is the dataset folder name used when the target merges datasets.
func (t Target) MergedName() string {
	return t.Tagger + "-" + t.Config
}

// Parse converts a tagger/config identifier into a Target. Extra middle
// segments are tolerated: the first segment is the tagger, the last is the
// config, and the full identifier is kept in Rel.
func Parse(id string) (Target, error) {
	trimmed := strings.Trim(strings.TrimSpace(id), "/")
	if trimmed == "" {
		return Target{}, fmt.Errorf("%w %q: expected tagger/config", ErrInvalidTarget, id)
	}
	parts := strings.Split(path.Clean(trimmed), "/")
	if len(parts) < 2 {
		return Target{}, fmt.Errorf("%w %q: expected tagger/config", ErrInvalidTarget, id)
	}
	if slices.Contains(parts, "..") {
		return Target{}, fmt.Errorf("%w %q: parent segments are not allowed", ErrInvalidTarget, id)
	}
	target := Target{
		Tagger: strings.TrimSpace(parts[0]),
		Config: strings.TrimSpace(parts[len(parts)-1]),
	}
	if target.Tagger == "" || target.Config == "" {
		return Target{}, fmt.Errorf("%w %q: empty tagger or config", ErrInvalidTarget, id)
	}
	if len(parts) > 2 {
		target.Rel = strings.Join(parts, "/")
	}
	return target, nil
}

// ParseAll parses every identifier, stopping at the first invalid one.
func ParseAll(ids []string) ([]Target, error) {
	targets := make([]Target, 0, len(ids))
	for _, id := range ids {
		target, err := Parse(id)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}
