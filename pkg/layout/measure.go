package layout

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/gridkit/pkg/cache"
)

// Measurer computes the natural content width of a column.
type Measurer interface {
	Measure(c *Column, rows []map[string]any) int
}

// DefaultPadding is the horizontal padding added to measured text widths.
const DefaultPadding = 2

// TextMeasurer measures content as terminal cells: the display width of the
// formatted value, as reported by go-runewidth, plus padding. String widths
// are cached since the same values recur across rows and relayouts.
type TextMeasurer struct {
	Padding int
	Format  func(v any) string

	widths cache.Cache[string, int]
}

// NewTextMeasurer creates a measurer whose width cache holds up to size
// strings. A non-positive size uses cache.DefaultSize.
func NewTextMeasurer(padding, size int) *TextMeasurer {
	widths, err := cache.NewLRU[string, int](size)
	if err != nil {
		widths = cache.NewNullCache[string, int]()
	}
	return &TextMeasurer{Padding: padding, widths: widths}
}

// Width returns the display width of s in cells.
func (m *TextMeasurer) Width(s string) int {
	if m.widths == nil {
		return runewidth.StringWidth(s)
	}
	if w, ok := m.widths.Get(s); ok {
		return w
	}
	w := runewidth.StringWidth(s)
	m.widths.Set(s, w)
	return w
}

// Measure implements Measurer. The title counts as content.
func (m *TextMeasurer) Measure(c *Column, rows []map[string]any) int {
	w := m.Width(c.Title)
	for _, row := range rows {
		w = max(w, m.Width(m.format(Value(row, c.Field))))
	}
	return w + m.Padding
}

func (m *TextMeasurer) format(v any) string {
	if m.Format != nil {
		return m.Format(v)
	}
	return FormatValue(v)
}

// FormatValue renders a cell value as text. Nil renders empty.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
	default:
		return fmt.Sprint(v)
	}
}

// Value reads field from row; dotted names address nested maps.
func Value(row map[string]any, field string) any {
	if v, ok := row[field]; ok || !strings.Contains(field, ".") {
		return v
	}
	var cur any = row
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

var _ Measurer = (*TextMeasurer)(nil)
