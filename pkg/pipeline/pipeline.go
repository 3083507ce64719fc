// Package pipeline provides the load → sequence → export pipeline.
//
// This package implements the orchestration shared by the CLI and the
// inspection server. By centralizing this logic, both entry points get
// the same validation, caching, and observability behavior.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a step graph from a TOML manifest or graph JSON file
//  2. Sequence: Compute the execution order for a chosen final step
//  3. Export: Serialize or render the graph (text, JSON, DOT, SVG, PNG)
//
// Each stage can be run independently or as part of the complete
// pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{
//	    Input:  "steps.toml",
//	    Final:  "deploy",
//	    Format: pipeline.FormatText,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Artifact)
package pipeline

import (
	"fmt"
	"time"

	"github.com/distkit/distkit/pkg/sequencer"
)

// Format constants for export formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported export formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// artifactTTL bounds how long rendered images are reused from the
// cache.
const artifactTTL = 24 * time.Hour

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: text, json, dot, svg, png)", format)
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run. The struct
// supports JSON serialization for API requests.
type Options struct {
	// Input is the path to a TOML manifest or graph JSON file.
	Input string `json:"input"`

	// Final selects the step to sequence towards. When empty, the
	// sequencing stage is skipped and text export lists every step.
	Final string `json:"final,omitempty"`

	// Format selects the export format. Defaults to FormatText.
	Format string `json:"format,omitempty"`

	// Refresh bypasses the artifact cache for rendered images.
	Refresh bool `json:"refresh,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" {
		return fmt.Errorf("input is required")
	}
	if o.Format == "" {
		o.Format = FormatText
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// =============================================================================
// Result - Pipeline Outputs
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Sequencer is the loaded step graph.
	Sequencer *sequencer.Sequencer

	// GraphHash is the content hash of the serialized graph.
	GraphHash string

	// Steps is the execution order for Options.Final, when set.
	Steps []string

	// Artifact is the exported output in Options.Format.
	Artifact []byte

	// Format records the format Artifact holds.
	Format string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	StepCount    int
	EdgeCount    int
	LoadTime     time.Duration
	SequenceTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for a pipeline run.
type CacheInfo struct {
	RenderHit bool // Whether the rendered artifact came from cache
}
