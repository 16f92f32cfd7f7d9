package layout

import (
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridkit/pkg/errors"
)

type countingMeasurer struct {
	calls int
}

func (m *countingMeasurer) Measure(c *Column, rows []map[string]any) int {
	m.calls++
	return 10 * len(rows)
}

func quietOptions(m Measurer) Options {
	return Options{Logger: log.New(io.Discard), Measurer: m}
}

func TestDriver_FitColumns(t *testing.T) {
	d := NewDriver(FitColumns, quietOptions(nil))
	cols := flexColumns(1, 1, 2)
	d.SetColumns(cols)
	if err := d.Resize(401); err != nil {
		t.Fatalf("Resize() error: %v", err)
	}

	alloc := d.Layout(false)
	if want := []int{100, 100, 201}; !slices.Equal(alloc.Widths, want) {
		t.Errorf("Widths = %v, want %v", alloc.Widths, want)
	}
	for i, c := range cols {
		if c.Current != alloc.Widths[i] {
			t.Errorf("column %d Current = %d, want %d", i, c.Current, alloc.Widths[i])
		}
	}
}

func TestDriver_Scrollbar(t *testing.T) {
	d := NewDriver(FitColumns, quietOptions(nil))
	d.SetColumns(flexColumns(1, 1))
	_ = d.Resize(100)

	d.SetScrollbar(10, true)
	if got := d.Layout(false).Total; got != 90 {
		t.Errorf("Total with scrollbar = %d, want 90", got)
	}
	d.SetScrollbar(0, false)
	if got := d.Layout(false).Total; got != 100 {
		t.Errorf("Total without scrollbar = %d, want 100", got)
	}
}

func TestDriver_MeasuresInFitData(t *testing.T) {
	m := &countingMeasurer{}
	d := NewDriver(FitData, quietOptions(m))
	d.SetColumns([]*Column{{Field: "a"}, {Field: "b", UserSized: true, Width: Px(42)}})
	_ = d.Resize(500)

	d.DataChanged([]map[string]any{{"a": 1}, {"a": 2}})
	alloc := d.Layout(true)
	if m.calls != 1 {
		t.Errorf("Measure() called %d times, want 1 (user-sized columns are skipped)", m.calls)
	}
	if want := []int{20, 42}; !slices.Equal(alloc.Widths, want) {
		t.Errorf("Widths = %v, want %v", alloc.Widths, want)
	}

	// No change, no re-measure.
	d.Layout(false)
	if m.calls != 1 {
		t.Errorf("Measure() called %d times after a clean relayout, want 1", m.calls)
	}
}

func TestDriver_FitColumnsSkipsMeasuring(t *testing.T) {
	m := &countingMeasurer{}
	d := NewDriver(FitColumns, quietOptions(m))
	d.SetColumns(flexColumns(1))
	_ = d.Resize(100)

	d.DataChanged([]map[string]any{{"a": 1}})
	d.Layout(true)
	if m.calls != 0 {
		t.Errorf("Measure() called %d times in fitColumns, want 0", m.calls)
	}

	opts := quietOptions(m)
	opts.ColumnsOnNewData = true
	d = NewDriver(FitColumns, opts)
	d.SetColumns(flexColumns(1))
	d.DataChanged([]map[string]any{{"a": 1}})
	d.Layout(true)
	if m.calls != 1 {
		t.Errorf("Measure() called %d times with ColumnsOnNewData, want 1", m.calls)
	}
}

func TestDriver_UnknownModeFallsBack(t *testing.T) {
	d := NewDriver(Mode("masonry"), quietOptions(nil))
	if d.Mode() != FitData {
		t.Errorf("Mode() = %q, want %q", d.Mode(), FitData)
	}
}

func TestDriver_ResizeRejectsNegative(t *testing.T) {
	d := NewDriver(FitColumns, quietOptions(nil))
	_ = d.Resize(50)
	err := d.Resize(-1)
	if !errors.Is(err, errors.ErrCodeInvalidWidth) {
		t.Errorf("Resize(-1) error = %v, want INVALID_WIDTH", err)
	}
	if d.Width() != 50 {
		t.Errorf("Width() = %d after rejected resize, want 50", d.Width())
	}
}

func TestDriver_Idempotent(t *testing.T) {
	d := NewDriver(FitColumns, quietOptions(nil))
	d.SetColumns([]*Column{{MinWidth: 30}, {Width: Percent(20)}, {Grow: 3}})
	_ = d.Resize(777)

	first := d.Layout(false)
	first.Widths[0] = -1 // results must not alias the memo
	second := d.Layout(false)
	third := Compute(FitColumns, d.Columns(), 777)
	if !slices.Equal(second.Widths, third.Widths) {
		t.Errorf("memoized Widths = %v, computed %v", second.Widths, third.Widths)
	}
}

func TestParseWidth(t *testing.T) {
	tests := []struct {
		in      string
		want    Width
		wantErr bool
	}{
		{"", Width{}, false},
		{"150", Px(150), false},
		{"150px", Px(150), false},
		{" 80PX ", Px(80), false},
		{"25%", Percent(25), false},
		{"12.7", Px(12), false},
		{"-3", Width{}, true},
		{"wide", Width{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWidth(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWidth(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseWidth(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"fitColumns":       FitColumns,
		"fit-columns":      FitColumns,
		"FITDATA":          FitData,
		"fit-data-stretch": FitDataStretch,
		"fitDataFill":      FitDataFill,
		"fit-data-table":   FitDataTable,
	}
	for in, want := range tests {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v, want %q", in, got, err, want)
		}
	}
	if _, err := ParseMode("grid"); !errors.Is(err, errors.ErrCodeInvalidMode) {
		t.Errorf("ParseMode(grid) error = %v, want INVALID_MODE", err)
	}
}

func TestTextMeasurer(t *testing.T) {
	m := NewTextMeasurer(2, 16)
	col := &Column{Field: "name", Title: "Name"}
	rows := []map[string]any{
		{"name": "Ada"},
		{"name": "日本語"}, // three wide runes
		{"name": nil},
	}
	if got := m.Measure(col, rows); got != 8 {
		t.Errorf("Measure() = %d, want 8", got)
	}

	nested := &Column{Field: "user.name"}
	if got := m.Measure(nested, []map[string]any{{"user": map[string]any{"name": "Grace"}}}); got != 7 {
		t.Errorf("Measure() nested = %d, want 7", got)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{3.0, "3"},
		{2.5, "2.5"},
		{42, "42"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
