package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridkit/pkg/errors"
	"github.com/matzehuels/gridkit/pkg/grouping"
	"github.com/matzehuels/gridkit/pkg/layout"
	"github.com/matzehuels/gridkit/pkg/records"
)

const sample = `
[grouping]
by = ["dept", "team"]
start_open = [true, false]
headers = ["{key}: {count}"]
values = [["Eng", "Ops"]]
closed_show_calcs = true

[layout]
mode = "fit-columns"
width = 120
scrollbar = 1

[[columns]]
field = "name"
width = "30%"
min_width = 10

[[columns]]
field = "salary"
title = "Salary"
grow = 2

[[aggregates]]
field = "salary"
func = "sum"
`

func TestParse(t *testing.T) {
	cfg, err := Parse(sample)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !slices.Equal(cfg.Grouping.By, []string{"dept", "team"}) {
		t.Errorf("Grouping.By = %v", cfg.Grouping.By)
	}
	if cfg.Layout.Width != 120 || cfg.Layout.Scrollbar != 1 {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if len(cfg.Columns) != 2 || len(cfg.Aggregates) != 1 {
		t.Errorf("Columns = %d, Aggregates = %d, want 2, 1", len(cfg.Columns), len(cfg.Aggregates))
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse("")
	if err != nil {
		t.Fatalf("Parse(\"\") error: %v", err)
	}
	def := Default()
	if cfg.Layout != def.Layout {
		t.Errorf("Layout = %+v, want %+v", cfg.Layout, def.Layout)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"syntax", "[grouping\nby = 1"},
		{"unknown key", "[grouping]\ngroup_by = [\"a\"]"},
		{"bad mode", "[layout]\nmode = \"masonry\""},
		{"bad width", "[[columns]]\nfield = \"a\"\nwidth = \"wide\""},
		{"duplicate column", "[[columns]]\nfield = \"a\"\n[[columns]]\nfield = \"a\""},
		{"bad calc", "[[aggregates]]\nfield = \"a\"\nfunc = \"median\""},
		{"bad position", "[[aggregates]]\nfield = \"a\"\nfunc = \"sum\"\nposition = \"side\""},
		{"too many start_open", "[grouping]\nby = [\"a\"]\nstart_open = [true, false]"},
		{"empty level field", "[grouping]\nby = [\"\"]"},
		{"negative open_below", "[grouping]\nopen_below = -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.text); err == nil {
				t.Errorf("Parse() error = nil, want error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Layout.Mode != "fit-columns" {
		t.Errorf("Layout.Mode = %q", cfg.Layout.Mode)
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	cfg, err := Parse(sample)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out", FileName)
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after Save() error: %v", err)
	}
	if !slices.Equal(again.Grouping.By, cfg.Grouping.By) || again.Layout != cfg.Layout {
		t.Errorf("round trip = %+v, want %+v", again, cfg)
	}
}

func TestConfig_GroupingConfig(t *testing.T) {
	cfg, _ := Parse(sample)
	g, err := cfg.GroupingConfig()
	if err != nil {
		t.Fatalf("GroupingConfig() error: %v", err)
	}
	if len(g.Levels) != 2 || g.Levels[1].Field != "team" {
		t.Errorf("Levels = %+v", g.Levels)
	}
	if len(g.StartOpen) != 2 || !g.StartOpen[0].IsOpen() || g.StartOpen[1].IsOpen() {
		t.Errorf("StartOpen = %+v", g.StartOpen)
	}
	if g.Aggregator == nil || !g.Aggregator.HasBottom() {
		t.Error("Aggregator not attached")
	}
	if got := g.Headers[0]("Eng", 3, nil); got != "Eng: 3" {
		t.Errorf("header = %q, want %q", got, "Eng: 3")
	}
}

func TestConfig_NumericValuesMatchRecords(t *testing.T) {
	cfg, err := Parse("[grouping]\nby = [\"year\"]\nvalues = [[2023, 2024]]")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		read func() ([]*grouping.Row, error)
	}{
		{"json", func() ([]*grouping.Row, error) {
			return records.ReadJSON(strings.NewReader(`[{"id":"a","year":2024},{"id":"b","year":2023}]`), records.Options{})
		}},
		{"csv inferred", func() ([]*grouping.Row, error) {
			return records.ReadCSV(strings.NewReader("id,year\na,2024\nb,2023\n"), records.Options{InferTypes: true})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := tt.read()
			if err != nil {
				t.Fatal(err)
			}
			g, err := cfg.GroupingConfig()
			if err != nil {
				t.Fatal(err)
			}
			g.Logger = log.New(io.Discard)
			tree, err := grouping.New(g)
			if err != nil {
				t.Fatal(err)
			}
			tree.Rebuild(rows)

			if got := tree.RowCount(); got != 2 {
				t.Errorf("RowCount() = %d, want 2", got)
			}
			if n := tree.GroupByPath(float64(2024)); n == nil || n.RowCount() != 1 {
				t.Error("GroupByPath(float64 2024) did not find the 2024 group")
			}
		})
	}
}

func TestConfig_OpenBelow(t *testing.T) {
	cfg, err := Parse("[grouping]\nby = [\"dept\"]\nstart_open = [false]\nopen_below = 3")
	if err != nil {
		t.Fatal(err)
	}
	g, _ := cfg.GroupingConfig()
	if len(g.StartOpen) != 1 || !g.StartOpen[0].IsComputed() {
		t.Fatalf("StartOpen = %+v, want one computed entry", g.StartOpen)
	}
	pred := OpenBelow(3)
	if !pred("x", 2, nil) || pred("x", 3, nil) {
		t.Error("OpenBelow(3) should open groups with fewer than 3 rows")
	}
}

func TestHeaderTemplate(t *testing.T) {
	h := HeaderTemplate("{key} has {count}")
	if got := h(nil, 0, nil); got != " has 0" {
		t.Errorf("header(nil) = %q", got)
	}
	if got := h(4.5, 2, nil); got != "4.5 has 2" {
		t.Errorf("header(4.5) = %q", got)
	}
}

func TestConfig_LayoutColumns(t *testing.T) {
	cfg, _ := Parse(sample)
	cols, err := cfg.LayoutColumns()
	if err != nil {
		t.Fatalf("LayoutColumns() error: %v", err)
	}
	if cols[0].Width != layout.Percent(30) || !cols[0].UserSized || cols[0].Title != "name" {
		t.Errorf("cols[0] = %+v", cols[0])
	}
	if cols[1].Grow != 2 || cols[1].UserSized || cols[1].Title != "Salary" {
		t.Errorf("cols[1] = %+v", cols[1])
	}

	opts := cfg.GridOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Mode != layout.FitColumns || opts.ScrollbarWidth != 1 {
		t.Errorf("GridOptions() = %+v", opts)
	}
}

func TestInferColumns(t *testing.T) {
	rows := []*grouping.Row{
		grouping.NewRow("1", map[string]any{"name": "Ada", "dept": "Eng"}),
		grouping.NewRow("2", map[string]any{"age": 36, "name": "Bob"}),
	}
	var fields []string
	for _, c := range InferColumns(rows, "dept") {
		fields = append(fields, c.Field)
	}
	if want := []string{"name", "age"}; !slices.Equal(fields, want) {
		t.Errorf("InferColumns() = %v, want %v", fields, want)
	}
}
