package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridkit/pkg/errors"
	"github.com/matzehuels/gridkit/pkg/render/treeviz"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// treeOpts holds options for the tree command.
type treeOpts struct {
	source   sourceOpts
	format   string
	output   string
	detailed bool
	rows     int
}

// treeCommand creates the tree command for drawing the group hierarchy.
func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "tree [records]",
		Short: "Draw the group hierarchy as DOT, SVG or PNG",
		Long: `Draw the group hierarchy with Graphviz.

Each group becomes a box labelled with its header; closed groups are dashed.
DOT output goes to stdout unless --output is given. SVG and PNG are written
next to the input file by default.`,
		Example: `  gridkit tree staff.json --by dept,team
  gridkit tree staff.json --by dept --format dot | dot -Tpdf > groups.pdf
  gridkit tree staff.json --by dept --detailed --rows 3 -o groups.png -f png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd.Context(), args[0], &opts)
		},
	}

	opts.source.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg or png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label groups with their level and field")
	cmd.Flags().IntVar(&opts.rows, "rows", 0, "list up to this many row IDs per leaf group")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, input string, opts *treeOpts) error {
	logger := loggerFromContext(ctx)

	switch opts.format {
	case formatDOT, formatSVG, formatPNG:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %s (must be 'dot', 'svg', or 'png')", opts.format)
	}
	if opts.rows < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "--rows cannot be negative")
	}

	engine, err := c.loadEngine(ctx, input, &opts.source)
	if err != nil {
		return err
	}
	dot := treeviz.ToDOT(engine.Tree(), treeviz.Options{Detailed: opts.detailed, Rows: opts.rows})

	var data []byte
	switch opts.format {
	case formatDOT:
		if opts.output == "" {
			_, err := fmt.Fprint(os.Stdout, dot)
			return err
		}
		data = []byte(dot)
	case formatSVG:
		data, err = treeviz.RenderSVG(dot)
	case formatPNG:
		data, err = treeviz.RenderPNG(dot)
	}
	if err != nil {
		return err
	}
	logger.Debugf("Generated %s: %d bytes", opts.format, len(data))

	path := opts.output
	if path == "" {
		path = basePath(input) + "." + opts.format
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	st := engine.Stats()
	printSuccess("Drew %s", plural(st.Groups, "group"))
	printFile(path)
	return nil
}
