// Package text renders a display sequence as fixed-width terminal lines.
//
// Column widths come from a [layout.Allocation]; cell text is truncated and
// padded with go-runewidth so wide runes line up. Group headers are indented
// by level and prefixed with an open/closed marker. Aggregate rows render like
// records, from the field-to-value map produced by the aggregator.
//
//	r := text.New(cols, alloc.Widths, text.Options{Styled: true})
//	for _, line := range r.Render(engine.DisplaySequence()) {
//	    fmt.Println(line)
//	}
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/gridkit/pkg/grouping"
	"github.com/matzehuels/gridkit/pkg/layout"
)

// =============================================================================
// Styles
// =============================================================================

// Styles holds the lipgloss styles applied when rendering styled output.
type Styles struct {
	Title     lipgloss.Style
	Header    lipgloss.Style
	Aggregate lipgloss.Style
	Row       lipgloss.Style
}

// DefaultStyles returns the default palette.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36")),
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
		Aggregate: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		Row:       lipgloss.NewStyle(),
	}
}

const (
	markerOpen   = "▾"
	markerClosed = "▸"
	ellipsis     = "…"

	// DefaultIndent is the per-level indentation of group headers.
	DefaultIndent = 2
)

// Options configures a Renderer.
type Options struct {
	// Styled applies Styles to every line. Plain output is used for files
	// and pipes.
	Styled bool
	Styles *Styles
	// Indent is the number of cells each header level is indented by.
	Indent int
}

// Renderer turns display items into lines.
type Renderer struct {
	cols   []*layout.Column
	widths []int
	total  int
	indent int
	styled bool
	styles Styles
}

// New creates a renderer. widths is indexed like cols; hidden columns are
// skipped regardless of their width.
func New(cols []*layout.Column, widths []int, opts Options) *Renderer {
	r := &Renderer{
		cols:   cols,
		widths: widths,
		indent: opts.Indent,
		styled: opts.Styled,
		styles: DefaultStyles(),
	}
	if r.indent <= 0 {
		r.indent = DefaultIndent
	}
	if opts.Styles != nil {
		r.styles = *opts.Styles
	}
	for i, c := range cols {
		if !c.Hidden && i < len(widths) {
			r.total += widths[i]
		}
	}
	return r
}

// Width returns the total line width.
func (r *Renderer) Width() int { return r.total }

// TitleLine renders the column titles.
func (r *Renderer) TitleLine() string {
	line := r.cells(func(c *layout.Column) string {
		if c.Title != "" {
			return c.Title
		}
		return c.Field
	})
	return r.style(r.styles.Title, line)
}

// Line renders one display item.
func (r *Renderer) Line(item grouping.Item) string {
	switch item.Kind {
	case grouping.KindHeader:
		marker := markerClosed
		if item.Group.Visible() {
			marker = markerOpen
		}
		line := strings.Repeat(" ", item.Level*r.indent) + marker + " " + item.Header
		return r.style(r.styles.Header, Fit(line, r.total))
	case grouping.KindAggregateTop, grouping.KindAggregateBottom:
		values, _ := item.Aggregate.(map[string]any)
		line := r.cells(func(c *layout.Column) string {
			return layout.FormatValue(layout.Value(values, c.Field))
		})
		return r.style(r.styles.Aggregate, line)
	case grouping.KindRow:
		line := r.cells(func(c *layout.Column) string {
			return layout.FormatValue(layout.Value(item.Row.Data, c.Field))
		})
		return r.style(r.styles.Row, line)
	}
	return ""
}

// Render renders the title line followed by every item.
func (r *Renderer) Render(items []grouping.Item) []string {
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, r.TitleLine())
	for _, it := range items {
		lines = append(lines, r.Line(it))
	}
	return lines
}

// Write renders items to w, one line each.
func (r *Renderer) Write(w io.Writer, items []grouping.Item) error {
	for _, line := range r.Render(items) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) cells(text func(*layout.Column) string) string {
	var b strings.Builder
	for i, c := range r.cols {
		if c.Hidden || i >= len(r.widths) {
			continue
		}
		b.WriteString(Cell(text(c), r.widths[i]))
	}
	return b.String()
}

func (r *Renderer) style(s lipgloss.Style, line string) string {
	if !r.styled {
		return line
	}
	return s.Render(line)
}

// Cell fits s into a cell of width cells, keeping one trailing cell as the
// column gap.
func Cell(s string, width int) string {
	if width <= 1 {
		return strings.Repeat(" ", max(width, 0))
	}
	return runewidth.FillRight(runewidth.Truncate(s, width-1, ellipsis), width)
}

// Fit truncates s to width cells and pads it to exactly width.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, width, ellipsis), width)
}
