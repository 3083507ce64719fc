package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/distkit/distkit/pkg/pipeline"
)

// stepsCommand creates the steps command for computing execution order.
func (c *CLI) stepsCommand() *cobra.Command {
	var (
		final       string
		output      string
		interactive bool
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "steps <input>",
		Short: "Compute the ordered steps leading up to a target",
		Long: `Compute the ordered steps leading up to a target step.

The input is a TOML manifest or a graph JSON file. The output lists every
step the target depends on, one per line, in an order where each step
comes after all of its predecessors.

Examples:
  distkit steps build.toml --final test
  distkit steps graph.json --final deploy -o steps.txt
  distkit steps build.toml --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if final == "" && !interactive {
				return fmt.Errorf("missing --final (or use --interactive to pick one)")
			}
			return c.runSteps(cmd.Context(), args[0], final, output, interactive, noCache)
		},
	}

	cmd.Flags().StringVarP(&final, "final", "t", "", "target step to sequence towards")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick the target step interactively")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runSteps sequences the graph towards final and writes the step list.
func (c *CLI) runSteps(ctx context.Context, input, final, output string, interactive, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if interactive {
		seq, err := runner.Load(ctx, input)
		if err != nil {
			return err
		}
		steps := seq.Steps()
		if len(steps) == 0 {
			printWarning("No steps in %s", input)
			return nil
		}
		final, err = pickStep(steps)
		if err != nil {
			return err
		}
		if final == "" {
			printDetail("No selection made")
			return nil
		}
	}

	res, err := runner.Execute(ctx, pipeline.Options{Input: input, Final: final, Format: pipeline.FormatText})
	if err != nil {
		return err
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(res.Artifact); err != nil {
		return err
	}

	if output != "" {
		printSuccess("Sequenced %d steps", len(res.Steps))
		printFile(output)
		printStats(res.Stats.StepCount, res.Stats.EdgeCount, false)
	}
	return nil
}
