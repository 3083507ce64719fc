package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// connectionsCommand creates the connections command for cycle inspection.
func (c *CLI) connectionsCommand() *cobra.Command {
	var (
		output string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "connections <input>",
		Short: "List strongly connected components of the step graph",
		Long: `List the strongly connected components of the step graph.

Each output line holds one component. A component with more than one step
means those steps form a dependency cycle; a singleton component is a
step that takes part in no cycle.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConnections(cmd.Context(), args[0], output, asJSON)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write components as JSON")

	return cmd
}

// runConnections loads the graph and writes its strongly connected components.
func (c *CLI) runConnections(ctx context.Context, input, output string, asJSON bool) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	t := newTimer(c.Logger)
	seq, err := runner.Load(ctx, input)
	if err != nil {
		return err
	}
	components := seq.StrongConnections()
	t.done(fmt.Sprintf("Found %d strongly connected components", len(components)))

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if asJSON {
		if components == nil {
			components = [][]string{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(components); err != nil {
			return err
		}
	} else {
		for _, comp := range components {
			fmt.Fprintln(out, strings.Join(comp, " "))
		}
	}

	if output != "" {
		printSuccess("Wrote %d components", len(components))
		printFile(output)
	}
	return nil
}
