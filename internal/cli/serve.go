package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/distkit/distkit/internal/server"
)

// serveCommand creates the serve command for the inspection API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <input>",
		Short: "Serve a read-only inspection API over a graph",
		Long: `Serve a read-only HTTP API for inspecting a step graph.

The graph is loaded once at startup. Endpoints:

  GET /healthz        liveness probe
  GET /graph          graph snapshot as JSON
  GET /graph.dot      graph snapshot in DOT form
  GET /steps/{final}  ordered steps leading up to final
  GET /connections    strongly connected components

The server runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

// runServe loads the graph and serves the inspection API until ctx is
// cancelled.
func (c *CLI) runServe(ctx context.Context, input, addr string) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	seq, err := runner.Load(ctx, input)
	if err != nil {
		return err
	}

	printInfo("Serving %s on %s", input, addr)
	printStats(seq.StepCount(), seq.EdgeCount(), false)

	return server.New(seq, c.Logger).ListenAndServe(ctx, addr)
}
