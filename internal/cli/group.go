package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridkit/pkg/errors"
	"github.com/matzehuels/gridkit/pkg/grid"
	"github.com/matzehuels/gridkit/pkg/records"
	"github.com/matzehuels/gridkit/pkg/render/text"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// groupOpts holds options for the group command.
type groupOpts struct {
	source sourceOpts
	format string
	output string
	toggle []string
}

// groupCommand creates the group command for printing or exporting the
// grouped display sequence.
func (c *CLI) groupCommand() *cobra.Command {
	opts := groupOpts{format: formatText}

	cmd := &cobra.Command{
		Use:   "group [records]",
		Short: "Group records and print the display sequence",
		Long: `Group records into a collapsible hierarchy and print it.

The text format prints headers, rows and aggregate rows with column widths
from the layout. The json format exports the grouped data, one entry per
group header followed by its rows.`,
		Example: `  # Group by department, then team
  gridkit group staff.json --by dept,team

  # Start closed and open one group
  gridkit group staff.csv --by dept --closed --toggle Eng

  # Export grouped data
  gridkit group staff.json --by dept -f json -o grouped.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGroup(cmd.Context(), args[0], &opts)
		},
	}

	opts.source.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text or json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringSliceVarP(&opts.toggle, "toggle", "t", nil, "toggle groups by slash-separated path (e.g. Eng/Backend)")

	return cmd
}

func (c *CLI) runGroup(ctx context.Context, input string, opts *groupOpts) error {
	if opts.format != formatText && opts.format != formatJSON {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %s (must be 'text' or 'json')", opts.format)
	}

	engine, err := c.loadEngine(ctx, input, &opts.source)
	if err != nil {
		return err
	}
	for _, p := range opts.toggle {
		path, err := resolvePath(engine, p)
		if err != nil {
			return err
		}
		if err := engine.ToggleGroup(path...); err != nil {
			return err
		}
	}

	if opts.output == "" {
		return writeGroup(os.Stdout, engine, opts.format, true)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.output, err)
	}
	defer f.Close()
	if err := writeGroup(f, engine, opts.format, false); err != nil {
		return err
	}

	st := engine.Stats()
	printSuccess("Grouped %s", input)
	printFile(opts.output)
	printStats(st.Rows, st.Groups, st.Levels)
	printNextStep("Browse interactively", fmt.Sprintf("%s browse %s", appName, input))
	return nil
}

// writeGroup writes the engine's current state in format.
func writeGroup(w io.Writer, engine *grid.Engine, format string, styled bool) error {
	if format == formatJSON {
		return records.WriteGrouped(engine.Tree().GroupedData(), w)
	}
	alloc := engine.Layout()
	r := text.New(engine.Columns(), alloc.Widths, text.Options{Styled: styled})
	return r.Write(w, engine.DisplaySequence())
}
