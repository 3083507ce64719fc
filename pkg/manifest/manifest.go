// Package manifest loads human-authored TOML pipeline definitions and turns
// them into step graphs.
//
// A manifest names its pipeline and declares steps with the steps they
// require:
//
//	name = "release"
//
//	[[steps]]
//	name = "check"
//
//	[[steps]]
//	name = "build"
//	requires = ["check"]
//
// Step declaration order becomes the graph's insertion order, which makes
// sequencing output deterministic for a given manifest.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/distkit/distkit/pkg/graph"
	"github.com/distkit/distkit/pkg/sequencer"
)

var (
	// ErrDuplicateStep is returned when a manifest declares the same step twice.
	ErrDuplicateStep = errors.New("duplicate step")

	// ErrMissingName is returned when a step declaration has no name.
	ErrMissingName = errors.New("step missing name")

	// ErrUnknownFormat is returned by [Detect] for unrecognized file extensions.
	ErrUnknownFormat = errors.New("unknown manifest format")
)

// Manifest is a parsed pipeline definition.
type Manifest struct {
	Name  string `toml:"name"`
	Steps []Step `toml:"steps"`
}

// Step declares one named step and the steps it requires.
type Step struct {
	Name     string   `toml:"name"`
	Requires []string `toml:"requires"`
}

// Load reads and parses a TOML manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

// Parse parses TOML manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Sequencer builds the step graph declared by the manifest.
//
// Declared steps are registered first, in declaration order; requirement
// edges follow. A step named in requires but never declared is registered
// implicitly when first referenced. Duplicate declarations, unnamed steps,
// and self-requirements are errors.
func (m *Manifest) Sequencer() (*sequencer.Sequencer, error) {
	s := sequencer.New()

	seen := make(map[string]bool, len(m.Steps))
	for i, step := range m.Steps {
		if step.Name == "" {
			return nil, fmt.Errorf("%w: step %d", ErrMissingName, i+1)
		}
		if seen[step.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStep, step.Name)
		}
		seen[step.Name] = true
		s.AddNode(step.Name)
	}

	for _, step := range m.Steps {
		for _, req := range step.Requires {
			if err := s.Add(req, step.Name); err != nil {
				return nil, fmt.Errorf("step %s: %w", step.Name, err)
			}
		}
	}
	return s, nil
}

// Detect loads a step graph from path based on its extension: ".toml" is
// parsed as a manifest, ".json" as a serialized graph. Anything else
// returns [ErrUnknownFormat].
func Detect(path string) (*sequencer.Sequencer, error) {
	switch ext := filepath.Ext(path); ext {
	case ".toml":
		m, err := Load(path)
		if err != nil {
			return nil, err
		}
		return m.Sequencer()
	case ".json":
		return graph.ReadFile(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}
