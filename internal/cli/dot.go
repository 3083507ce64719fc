package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/distkit/distkit/pkg/pipeline"
)

// dotCommand creates the dot command for DOT format export.
func (c *CLI) dotCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dot <input>",
		Short: "Export the step graph in Graphviz DOT format",
		Long: `Export the step graph in Graphviz DOT format.

The output can be piped into Graphviz tools or rendered directly with
'distkit render'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDot(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

// runDot exports the graph as DOT and writes it to output.
func (c *CLI) runDot(ctx context.Context, input, output string) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, pipeline.Options{Input: input, Format: pipeline.FormatDOT})
	if err != nil {
		return err
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(append(res.Artifact, '\n')); err != nil {
		return err
	}

	if output != "" {
		printSuccess("Exported DOT graph")
		printFile(output)
		printNewline()
		printNextStep("Render", appName+" render "+input+" -f svg")
	}
	return nil
}
