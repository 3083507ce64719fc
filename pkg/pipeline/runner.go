package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/distkit/distkit/pkg/cache"
	"github.com/distkit/distkit/pkg/graph"
	"github.com/distkit/distkit/pkg/manifest"
	"github.com/distkit/distkit/pkg/observability"
	"github.com/distkit/distkit/pkg/render"
	"github.com/distkit/distkit/pkg/sequencer"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating the logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache backend.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Logger: logger,
	}
}

// Execute runs the complete load → sequence → export pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Format: opts.Format}

	// Stage 1: Load
	loadStart := time.Now()
	seq, err := r.Load(ctx, opts.Input)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Sequencer = seq
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.StepCount = seq.StepCount()
	result.Stats.EdgeCount = seq.EdgeCount()

	// Compute graph hash for cache keys and API responses
	if data, err := graph.Marshal(seq); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	r.Logger.Info("loaded steps",
		"input", opts.Input,
		"steps", seq.StepCount(),
		"edges", seq.EdgeCount(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Sequence
	if opts.Final != "" {
		sequenceStart := time.Now()
		steps, err := r.Sequence(ctx, seq, opts.Final)
		if err != nil {
			return nil, fmt.Errorf("sequence: %w", err)
		}
		result.Steps = steps
		result.Stats.SequenceTime = time.Since(sequenceStart)

		r.Logger.Info("sequenced steps",
			"final", opts.Final,
			"count", len(steps),
			"duration", result.Stats.SequenceTime)
	}

	// Stage 3: Export
	steps := result.Steps
	if steps == nil {
		steps = seq.Steps()
	}
	renderStart := time.Now()
	artifact, hit, err := r.export(ctx, seq, steps, opts.Format, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifact = artifact
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("exported output",
		"format", opts.Format,
		"bytes", len(artifact),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads a step graph from a TOML manifest or graph JSON file.
func (r *Runner) Load(ctx context.Context, input string) (seq *sequencer.Sequencer, err error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, input)
	start := time.Now()
	defer func() {
		steps := 0
		if seq != nil {
			steps = seq.StepCount()
		}
		hooks.OnLoadComplete(ctx, input, steps, time.Since(start), err)
	}()

	return manifest.Detect(input)
}

// Sequence computes the execution order that ends at final.
func (r *Runner) Sequence(ctx context.Context, seq *sequencer.Sequencer, final string) (steps []string, err error) {
	hooks := observability.Pipeline()
	hooks.OnSequenceStart(ctx, final, seq.StepCount())
	start := time.Now()
	defer func() {
		hooks.OnSequenceComplete(ctx, final, time.Since(start), err)
	}()

	return seq.GetSteps(final)
}

// Export serializes or renders seq in the given format. Text output
// lists every registered step.
func (r *Runner) Export(ctx context.Context, seq *sequencer.Sequencer, format string) ([]byte, error) {
	data, _, err := r.ExportWithCacheInfo(ctx, seq, format, false)
	return data, err
}

// ExportWithCacheInfo is Export with cache hit info for rendered
// artifacts.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, seq *sequencer.Sequencer, format string, refresh bool) ([]byte, bool, error) {
	return r.export(ctx, seq, seq.Steps(), format, refresh)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) export(ctx context.Context, seq *sequencer.Sequencer, steps []string, format string, refresh bool) (data []byte, hit bool, err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, format, time.Since(start), err)
	}()

	switch format {
	case FormatText:
		if len(steps) == 0 {
			return nil, false, nil
		}
		return []byte(strings.Join(steps, "\n") + "\n"), false, nil
	case FormatJSON:
		data, err := graph.Marshal(seq)
		return data, false, err
	case FormatDOT:
		return []byte(seq.Dot()), false, nil
	case FormatSVG, FormatPNG:
		return r.renderImage(ctx, seq, format, refresh)
	}
	return nil, false, ValidateFormat(format)
}

// renderImage renders seq via Graphviz, reusing cached artifacts keyed
// by the content hash of the DOT output.
func (r *Runner) renderImage(ctx context.Context, seq *sequencer.Sequencer, format string, refresh bool) ([]byte, bool, error) {
	dot := seq.Dot()
	key := fmt.Sprintf("render:%s:%s", format, cache.Hash([]byte(dot)))

	if !refresh {
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			return data, true, nil
		}
	}

	var data []byte
	var err error
	switch format {
	case FormatSVG:
		data, err = render.SVG(ctx, dot)
	case FormatPNG:
		data, err = render.PNG(ctx, dot)
	}
	if err != nil {
		return nil, false, err
	}

	_ = r.Cache.Set(ctx, key, data, artifactTTL)
	return data, false, nil
}
