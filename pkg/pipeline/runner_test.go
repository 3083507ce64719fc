package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/distkit/distkit/pkg/cache"
	"github.com/distkit/distkit/pkg/graph"
	"github.com/distkit/distkit/pkg/manifest"
	"github.com/distkit/distkit/pkg/observability"
	"github.com/distkit/distkit/pkg/sequencer"
)

const testManifest = `name = "release"

[[steps]]
name = "check"

[[steps]]
name = "build"
requires = ["check"]

[[steps]]
name = "test"
requires = ["build"]
`

func writeManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "steps.toml")
	if err := os.WriteFile(path, []byte(testManifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil)
	if r.Cache == nil {
		t.Error("Cache should default to a null cache")
	}
	if r.Logger == nil {
		t.Error("Logger should have a default")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestRunnerLoad(t *testing.T) {
	r := NewRunner(nil, nil)
	seq, err := r.Load(context.Background(), writeManifest(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if seq.StepCount() != 3 {
		t.Errorf("StepCount() = %d, want 3", seq.StepCount())
	}
}

func TestRunnerLoadErrors(t *testing.T) {
	r := NewRunner(nil, nil)
	ctx := context.Background()

	if _, err := r.Load(ctx, filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load of missing file succeeded")
	}
	if _, err := r.Load(ctx, "steps.yaml"); !errors.Is(err, manifest.ErrUnknownFormat) {
		t.Errorf("Load error = %v, want manifest.ErrUnknownFormat", err)
	}
}

func TestRunnerSequence(t *testing.T) {
	r := NewRunner(nil, nil)
	ctx := context.Background()
	seq, err := r.Load(ctx, writeManifest(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	steps, err := r.Sequence(ctx, seq, "test")
	if err != nil {
		t.Fatalf("Sequence failed: %v", err)
	}
	want := []string{"check", "build", "test"}
	if len(steps) != len(want) {
		t.Fatalf("Sequence returned %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("steps[%d] = %q, want %q", i, steps[i], want[i])
		}
	}

	if _, err := r.Sequence(ctx, seq, "deploy"); !errors.Is(err, sequencer.ErrUnknownStep) {
		t.Errorf("Sequence error = %v, want sequencer.ErrUnknownStep", err)
	}
}

func TestRunnerExecuteText(t *testing.T) {
	r := NewRunner(nil, nil)
	result, err := r.Execute(context.Background(), Options{
		Input: writeManifest(t),
		Final: "test",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if got := string(result.Artifact); got != "check\nbuild\ntest\n" {
		t.Errorf("Artifact = %q, want %q", got, "check\nbuild\ntest\n")
	}
	if result.Format != FormatText {
		t.Errorf("Format = %q, want %q", result.Format, FormatText)
	}
	if result.Stats.StepCount != 3 || result.Stats.EdgeCount != 2 {
		t.Errorf("Stats = %d steps, %d edges, want 3 and 2",
			result.Stats.StepCount, result.Stats.EdgeCount)
	}
	if len(result.GraphHash) != 64 {
		t.Errorf("GraphHash = %q, want a sha256 hex digest", result.GraphHash)
	}
	if len(result.Steps) != 3 {
		t.Errorf("Steps = %v, want 3 entries", result.Steps)
	}
}

func TestRunnerExecuteJSON(t *testing.T) {
	r := NewRunner(nil, nil)
	result, err := r.Execute(context.Background(), Options{
		Input:  writeManifest(t),
		Format: FormatJSON,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	g, err := graph.Unmarshal(result.Artifact)
	if err != nil {
		t.Fatalf("artifact is not graph JSON: %v", err)
	}
	if len(g.Nodes) != 3 || len(g.Edges) != 2 {
		t.Errorf("decoded graph has %d nodes, %d edges, want 3 and 2",
			len(g.Nodes), len(g.Edges))
	}
}

func TestRunnerExecuteDOT(t *testing.T) {
	r := NewRunner(nil, nil)
	result, err := r.Execute(context.Background(), Options{
		Input:  writeManifest(t),
		Format: FormatDOT,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	dot := string(result.Artifact)
	for _, want := range []string{"digraph G {", "check -> build;", "build -> test;"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}

func TestRunnerExecuteRenderCached(t *testing.T) {
	r := NewRunner(cache.NewMemoryCache(), nil)
	opts := Options{Input: writeManifest(t), Format: FormatSVG}
	ctx := context.Background()

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute failed: %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first render reported a cache hit")
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute failed: %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second render missed the cache")
	}
	if string(first.Artifact) != string(second.Artifact) {
		t.Error("cached artifact differs from rendered artifact")
	}

	refreshed, err := r.Execute(ctx, Options{Input: opts.Input, Format: FormatSVG, Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute failed: %v", err)
	}
	if refreshed.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestRunnerExecuteUnknownFinal(t *testing.T) {
	r := NewRunner(nil, nil)
	_, err := r.Execute(context.Background(), Options{
		Input: writeManifest(t),
		Final: "deploy",
	})
	if !errors.Is(err, sequencer.ErrUnknownStep) {
		t.Errorf("Execute error = %v, want sequencer.ErrUnknownStep", err)
	}
}

func TestRunnerExport(t *testing.T) {
	r := NewRunner(nil, nil)
	ctx := context.Background()
	seq, err := r.Load(ctx, writeManifest(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	data, err := r.Export(ctx, seq, FormatText)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if string(data) != "check\nbuild\ntest\n" {
		t.Errorf("Export = %q, want all steps in insertion order", data)
	}

	if _, err := r.Export(ctx, seq, "pdf"); err == nil {
		t.Error("Export with unsupported format succeeded")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	loads     []string
	loadSteps int
	sequences []string
	renders   []string
}

func (h *recordingHooks) OnLoadStart(ctx context.Context, input string) {
	h.loads = append(h.loads, input)
}

func (h *recordingHooks) OnLoadComplete(ctx context.Context, input string, steps int, d time.Duration, err error) {
	h.loadSteps = steps
}

func (h *recordingHooks) OnSequenceStart(ctx context.Context, final string, steps int) {
	h.sequences = append(h.sequences, final)
}

func (h *recordingHooks) OnRenderStart(ctx context.Context, format string) {
	h.renders = append(h.renders, format)
}

func TestRunnerEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := NewRunner(nil, nil)
	input := writeManifest(t)
	if _, err := r.Execute(context.Background(), Options{Input: input, Final: "test"}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(hooks.loads) != 1 || hooks.loads[0] != input {
		t.Errorf("load hooks = %v, want [%s]", hooks.loads, input)
	}
	if hooks.loadSteps != 3 {
		t.Errorf("OnLoadComplete steps = %d, want 3", hooks.loadSteps)
	}
	if len(hooks.sequences) != 1 || hooks.sequences[0] != "test" {
		t.Errorf("sequence hooks = %v, want [test]", hooks.sequences)
	}
	if len(hooks.renders) != 1 || hooks.renders[0] != FormatText {
		t.Errorf("render hooks = %v, want [text]", hooks.renders)
	}
}
