package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridkit/pkg/server"
)

// serveOpts holds options for the serve command.
type serveOpts struct {
	source sourceOpts
	addr   string
}

// serveCommand creates the serve command exposing an engine over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: server.DefaultAddr}

	cmd := &cobra.Command{
		Use:   "serve [records]",
		Short: "Serve grouped records over a JSON HTTP API",
		Long: `Load records and serve the grid engine over HTTP until interrupted.

Clients can read groups, the display sequence and column layouts, toggle
groups, and add, update, move or remove records.`,
		Example: `  gridkit serve staff.json --by dept --addr :8080
  curl localhost:8080/display`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], &opts)
		},
	}

	opts.source.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, opts *serveOpts) error {
	engine, err := c.loadEngine(ctx, input, &opts.source)
	if err != nil {
		return err
	}

	srv := server.New(engine, server.Options{
		Logger:  loggerFromContext(ctx),
		IDField: opts.source.idField,
	})

	st := engine.Stats()
	printInfo("Serving %s on %s", input, StyleValue.Render("http://"+opts.addr))
	printDetail(statsLine(st.Rows, st.Groups, st.Levels))
	printNextStep("Try", fmt.Sprintf("curl http://%s/groups", opts.addr))

	return srv.ListenAndServe(ctx, opts.addr)
}
