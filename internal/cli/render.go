package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/distkit/distkit/pkg/pipeline"
)

// renderCommand creates the render command for producing graph images.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		format  string
		output  string
		refresh bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "render <input>",
		Short: "Render the step graph to SVG or PNG",
		Long: `Render the step graph to an image.

The graph is laid out with Graphviz compiled to WebAssembly, so no system
Graphviz installation is required. Rendered artifacts are cached locally,
keyed by the graph content, so repeated renders of an unchanged graph are
served from cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != pipeline.FormatSVG && format != pipeline.FormatPNG {
				return fmt.Errorf("invalid format: %q (must be one of: svg, png)", format)
			}
			return c.runRender(cmd.Context(), args[0], format, output, refresh, noCache)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatSVG, "output format: svg (default), png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-render even if a cached artifact exists")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender renders the graph and writes the image artifact.
func (c *CLI) runRender(ctx context.Context, input, format, output string, refresh, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", format))
	spinner.Start()

	res, err := runner.Execute(ctx, pipeline.Options{Input: input, Format: format, Refresh: refresh})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if spinner.Cancelled() {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(res.Artifact); err != nil {
		return err
	}

	printSuccess("Render complete")
	printFile(outputPath)
	printStats(res.Stats.StepCount, res.Stats.EdgeCount, res.CacheInfo.RenderHit)
	return nil
}
