package cli

import (
	"context"
	"errors"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// browseCommand creates the browse command for exploring groups interactively.
func (c *CLI) browseCommand() *cobra.Command {
	var opts sourceOpts

	cmd := &cobra.Command{
		Use:   "browse [records]",
		Short: "Explore grouped records in the terminal",
		Long: `Open an interactive grid over the records.

Move with the arrow keys or j/k, toggle the group under the cursor with
enter or space, and expand or collapse every group with e and c. Column
widths follow the terminal width.`,
		Example: `  gridkit browse staff.json --by dept,team --closed`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), args[0], &opts)
		},
	}

	opts.register(cmd)

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, input string, opts *sourceOpts) error {
	engine, err := c.loadEngine(ctx, input, opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewGridModel(engine, filepath.Base(input)), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}
