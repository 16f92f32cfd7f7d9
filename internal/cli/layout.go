package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridkit/pkg/grid"
	"github.com/matzehuels/gridkit/pkg/layout"
)

// layoutOpts holds options for the layout command.
type layoutOpts struct {
	source sourceOpts
	json   bool
}

// layoutCommand creates the layout command for computing column widths.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [records]",
		Short: "Compute column widths for a viewport",
		Long: `Compute column widths for the records in a viewport of the given width.

Content-sized modes measure every value of each column; fitColumns
distributes the viewport proportionally, honouring fixed and percentage
widths as well as min/max bounds from the config file.`,
		Example: `  gridkit layout staff.json --width 120 --mode fitColumns
  gridkit layout staff.csv --columns name,dept,salary --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], &opts)
		},
	}

	opts.source.register(cmd)
	cmd.Flags().BoolVar(&opts.json, "json", false, "print widths as JSON")

	return cmd
}

type widthJSON struct {
	Field string `json:"field"`
	Width int    `json:"width"`
}

type allocationJSON struct {
	Mode    layout.Mode `json:"mode"`
	Width   int         `json:"width"`
	Total   int         `json:"total"`
	Slack   int         `json:"slack"`
	Columns []widthJSON `json:"columns"`
}

func (c *CLI) runLayout(ctx context.Context, input string, opts *layoutOpts) error {
	engine, err := c.loadEngine(ctx, input, &opts.source)
	if err != nil {
		return err
	}
	alloc := engine.Layout()

	if opts.json {
		return writeAllocation(os.Stdout, engine, alloc)
	}

	printKeyValue("mode", engine.Driver().Mode().String())
	printKeyValue("viewport", strconv.Itoa(engine.Driver().Available()))
	printKeyValue("total", strconv.Itoa(alloc.Total))
	fmt.Println(widthTable(engine.Columns(), alloc))
	if err := alloc.Err(); err != nil {
		printWarning("%v", err)
	}
	return nil
}

func writeAllocation(w io.Writer, engine *grid.Engine, alloc layout.Allocation) error {
	out := allocationJSON{
		Mode:    engine.Driver().Mode(),
		Width:   engine.Driver().Available(),
		Total:   alloc.Total,
		Slack:   alloc.Slack,
		Columns: []widthJSON{},
	}
	for i, col := range engine.Columns() {
		if col.Hidden {
			continue
		}
		out.Columns = append(out.Columns, widthJSON{Field: col.Field, Width: alloc.Widths[i]})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// widthTable renders one row per visible column.
func widthTable(cols []*layout.Column, alloc layout.Allocation) string {
	var rows [][]string
	for i, col := range cols {
		if col.Hidden {
			continue
		}
		declared := "auto"
		if !col.Width.IsZero() {
			declared = col.Width.String()
		}
		rows = append(rows, []string{col.Field, declared, bound(col.MinWidth), bound(col.MaxWidth), strconv.Itoa(alloc.Widths[i])})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Field", "Declared", "Min", "Max", "Width").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 4:
				return StyleNumber
			}
			return StyleValue
		}).
		Render()
}

func bound(n int) string {
	if n <= 0 {
		return "-"
	}
	return strconv.Itoa(n)
}
