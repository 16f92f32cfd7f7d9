package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridkit/pkg/config"
	"github.com/matzehuels/gridkit/pkg/grid"
	"github.com/matzehuels/gridkit/pkg/grouping"
	"github.com/matzehuels/gridkit/pkg/layout"
)

const staffJSON = `[
  {"id": "1", "name": "Ada", "dept": "Eng"},
  {"id": "2", "name": "Bob", "dept": "Ops"},
  {"id": "3", "name": "Cy", "dept": "Eng"}
]`

func writeStaff(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staff.json")
	if err := os.WriteFile(path, []byte(staffJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testCLI() (*CLI, context.Context) {
	c := New(io.Discard, LogInfo)
	return c, withLogger(context.Background(), c.Logger)
}

func loadStaff(t *testing.T, o sourceOpts) *grid.Engine {
	t.Helper()
	c, ctx := testCLI()
	engine, err := c.loadEngine(ctx, writeStaff(t), &o)
	if err != nil {
		t.Fatalf("loadEngine() error: %v", err)
	}
	return engine
}

func TestRootCommand_Subcommands(t *testing.T) {
	c, _ := testCLI()
	root := c.RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"group", "layout", "tree", "browse", "serve", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("RootCommand() missing %q, have %v", want, names)
		}
	}
}

func TestRecordArgCompletion(t *testing.T) {
	c, _ := testCLI()
	root := c.RootCommand()

	for _, name := range []string{"group", "layout", "tree", "browse", "serve"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := root.Find([]string{name})
			if err != nil || cmd.ValidArgsFunction == nil {
				t.Fatalf("%s has no records completion (err %v)", name, err)
			}
			exts, dir := cmd.ValidArgsFunction(cmd, nil, "")
			if !slices.Equal(exts, []string{"json", "csv"}) || dir != cobra.ShellCompDirectiveFilterFileExt {
				t.Errorf("first arg completion = %v, %v", exts, dir)
			}
			if _, dir := cmd.ValidArgsFunction(cmd, []string{"staff.json"}, ""); dir != cobra.ShellCompDirectiveNoFileComp {
				t.Errorf("second arg directive = %v, want NoFileComp", dir)
			}
		})
	}
}

func TestCompletionCommand(t *testing.T) {
	c, ctx := testCLI()
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"completion", "bash"})
	if err := root.ExecuteContext(ctx); err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out.String(), "__start_gridkit") {
		t.Errorf("bash script does not complete gridkit:\n%.200s", out.String())
	}

	root.SetErr(io.Discard)
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.ExecuteContext(ctx); err == nil {
		t.Error("completion accepted an unsupported shell")
	}
}

func TestSourceOpts_Apply(t *testing.T) {
	cfg := config.Default()
	cfg.Grouping.StartOpen = []bool{true, true}
	cfg.Grouping.Headers = []string{"{key}"}

	o := sourceOpts{by: []string{"dept"}, closed: true, mode: "fit-columns", width: 80}
	o.apply(cfg)

	if !slices.Equal(cfg.Grouping.By, []string{"dept"}) {
		t.Errorf("By = %v, want [dept]", cfg.Grouping.By)
	}
	if !slices.Equal(cfg.Grouping.StartOpen, []bool{false}) {
		t.Errorf("StartOpen = %v, want [false]", cfg.Grouping.StartOpen)
	}
	if cfg.Grouping.Headers != nil {
		t.Errorf("Headers = %v, want reset", cfg.Grouping.Headers)
	}
	if cfg.Layout.Mode != "fit-columns" || cfg.Layout.Width != 80 {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
}

func TestSelectColumns(t *testing.T) {
	cols := []*layout.Column{{Field: "a", MinWidth: 5}, {Field: "b"}}

	got, err := selectColumns(cols, []string{"b", " c ", "a"})
	if err != nil {
		t.Fatal(err)
	}
	var fields []string
	for _, c := range got {
		fields = append(fields, c.Field)
	}
	if !slices.Equal(fields, []string{"b", "c", "a"}) {
		t.Errorf("selectColumns() = %v, want [b c a]", fields)
	}
	if got[2].MinWidth != 5 {
		t.Error("selectColumns() should keep configured columns")
	}

	if _, err := selectColumns(cols, []string{"a..b"}); err == nil {
		t.Error("selectColumns() accepted an invalid field name")
	}
}

func TestLoadEngine(t *testing.T) {
	engine := loadStaff(t, sourceOpts{by: []string{"dept"}, closed: true})

	st := engine.Stats()
	if st.Rows != 3 || st.Groups != 2 || st.Items != 2 {
		t.Errorf("Stats() = %+v, want 3 rows in 2 closed groups", st)
	}
	var fields []string
	for _, c := range engine.Columns() {
		fields = append(fields, c.Field)
	}
	if !slices.Equal(fields, []string{"dept", "id", "name"}) {
		t.Errorf("inferred columns = %v, want [dept id name]", fields)
	}
}

func TestLoadEngine_Errors(t *testing.T) {
	c, ctx := testCLI()

	if _, err := c.loadEngine(ctx, filepath.Join(t.TempDir(), "missing.json"), &sourceOpts{}); err == nil {
		t.Error("loadEngine() should fail for a missing file")
	}
	if _, err := c.loadEngine(ctx, writeStaff(t), &sourceOpts{mode: "masonry"}); err == nil {
		t.Error("loadEngine() should reject an unknown mode")
	}
	if _, err := c.loadEngine(ctx, writeStaff(t), &sourceOpts{config: filepath.Join(t.TempDir(), "nope.toml")}); err == nil {
		t.Error("loadEngine() should fail for a missing config file")
	}
}

func TestResolvePath(t *testing.T) {
	engine := loadStaff(t, sourceOpts{by: []string{"dept", "name"}})

	path, err := resolvePath(engine, "Eng/Cy")
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != 2 || path[0] != "Eng" || path[1] != "Cy" {
		t.Errorf("resolvePath() = %v, want [Eng Cy]", path)
	}
	if _, err := resolvePath(engine, "Eng/Bob"); err == nil {
		t.Error("resolvePath() should fail for a group outside the parent")
	}
}

func TestWriteGroup_Text(t *testing.T) {
	engine := loadStaff(t, sourceOpts{by: []string{"dept"}, mode: "fitColumns", width: 30})
	if err := engine.ToggleGroup("Ops"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := writeGroup(&buf, engine, formatText, false); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	want := []string{"dept", "Eng (2 items)", "Ada", "Cy", "Ops (1 item)"}
	if len(lines) != len(want) {
		t.Fatalf("writeGroup() = %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i, w := range want {
		if !strings.Contains(lines[i], w) {
			t.Errorf("line %d = %q, want it to contain %q", i, lines[i], w)
		}
	}
	if !strings.HasPrefix(lines[4], "▸") {
		t.Errorf("closed header = %q, want closed marker", lines[4])
	}
}

func TestWriteGroup_JSON(t *testing.T) {
	engine := loadStaff(t, sourceOpts{by: []string{"dept"}})

	var buf bytes.Buffer
	if err := writeGroup(&buf, engine, formatJSON, false); err != nil {
		t.Fatal(err)
	}
	var entries []grouping.GroupedEntry
	if err := json.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(entries) != 5 {
		t.Errorf("entries = %d, want 5 (2 headers, 3 rows)", len(entries))
	}
}

func TestGroupCommand_Output(t *testing.T) {
	c, ctx := testCLI()
	input := writeStaff(t)
	out := filepath.Join(t.TempDir(), "grouped.json")

	root := c.RootCommand()
	root.SetArgs([]string{"group", input, "--by", "dept", "-f", "json", "-o", out})
	if err := root.ExecuteContext(ctx); err != nil {
		t.Fatalf("group error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"content": "Eng (2 items)"`)) {
		t.Errorf("grouped output missing Eng header:\n%s", data)
	}
}

func TestGroupCommand_InvalidFormat(t *testing.T) {
	c, ctx := testCLI()
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"group", writeStaff(t), "-f", "yaml"})
	if err := root.ExecuteContext(ctx); err == nil {
		t.Error("group accepted an invalid format")
	}
}

func TestTreeCommand_DOT(t *testing.T) {
	c, ctx := testCLI()
	out := filepath.Join(t.TempDir(), "groups.dot")

	root := c.RootCommand()
	root.SetArgs([]string{"tree", writeStaff(t), "--by", "dept", "-f", "dot", "-o", out})
	if err := root.ExecuteContext(ctx); err != nil {
		t.Fatalf("tree error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("digraph")) || !bytes.Contains(data, []byte("Ops (1 item)")) {
		t.Errorf("tree output:\n%s", data)
	}
}

func TestWriteAllocation(t *testing.T) {
	engine := loadStaff(t, sourceOpts{columns: []string{"name", "dept"}, mode: "fitColumns", width: 61})

	var buf bytes.Buffer
	if err := writeAllocation(&buf, engine, engine.Layout()); err != nil {
		t.Fatal(err)
	}
	var out allocationJSON
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Mode != layout.FitColumns || out.Total != 61 || len(out.Columns) != 2 {
		t.Fatalf("writeAllocation() = %+v", out)
	}
	if out.Columns[0].Field != "name" || out.Columns[0].Width != 30 || out.Columns[1].Width != 31 {
		t.Errorf("columns = %+v, want name:30 dept:31", out.Columns)
	}
}

func TestWidthTable(t *testing.T) {
	cols := []*layout.Column{
		{Field: "name", Width: layout.Percent(50), MinWidth: 10},
		{Field: "secret", Hidden: true},
	}
	got := widthTable(cols, layout.Allocation{Widths: []int{40, 0}, Total: 40})
	for _, want := range []string{"name", "50%", "10", "40"} {
		if !strings.Contains(got, want) {
			t.Errorf("widthTable() missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "secret") {
		t.Error("widthTable() should skip hidden columns")
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 rows"},
		{1, "1 row"},
		{2, "2 rows"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, "row"); got != tt.want {
			t.Errorf("plural(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	if got := basePath("data/staff.json"); got != "data/staff" {
		t.Errorf("basePath() = %q, want data/staff", got)
	}
}

// =============================================================================
// GridModel
// =============================================================================

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m GridModel, msgs ...tea.Msg) GridModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(GridModel)
	}
	return m
}

func TestGridModel_Toggle(t *testing.T) {
	m := NewGridModel(loadStaff(t, sourceOpts{by: []string{"dept"}}), "staff")
	if len(m.items) != 5 {
		t.Fatalf("items = %d, want 5", len(m.items))
	}

	m = update(m, key("enter"))
	if len(m.items) != 3 || m.Cursor != 0 {
		t.Errorf("after toggle: items = %d, cursor = %d, want 3 and 0", len(m.items), m.Cursor)
	}

	// Rows are not toggleable.
	m = update(m, key("down"), key("down"), key("enter"))
	if len(m.items) != 3 || m.Cursor != 2 {
		t.Errorf("toggle on a row: items = %d, cursor = %d", len(m.items), m.Cursor)
	}

	m = update(m, key("up"), key("enter"))
	if len(m.items) != 2 || m.Cursor != 1 {
		t.Errorf("after closing Ops: items = %d, cursor = %d, want 2 and 1", len(m.items), m.Cursor)
	}
}

func TestGridModel_ExpandCollapse(t *testing.T) {
	m := NewGridModel(loadStaff(t, sourceOpts{by: []string{"dept"}}), "staff")

	m = update(m, key("G"), key("c"))
	if len(m.items) != 2 || m.Cursor != 1 {
		t.Errorf("collapse all: items = %d, cursor = %d, want 2 and 1", len(m.items), m.Cursor)
	}
	m = update(m, key("e"))
	if len(m.items) != 5 {
		t.Errorf("expand all: items = %d, want 5", len(m.items))
	}
}

func TestGridModel_Resize(t *testing.T) {
	engine := loadStaff(t, sourceOpts{mode: "fitColumns"})
	m := NewGridModel(engine, "staff")

	m = update(m, tea.WindowSizeMsg{Width: 62, Height: 10})
	if engine.Driver().Width() != 60 {
		t.Errorf("viewport = %d, want 60", engine.Driver().Width())
	}
	if m.Height != 5 {
		t.Errorf("Height = %d, want 5", m.Height)
	}
	if !strings.Contains(m.View(), "[1/3]") {
		t.Errorf("View() missing position:\n%s", m.View())
	}
}

func TestGridModel_Quit(t *testing.T) {
	m := NewGridModel(loadStaff(t, sourceOpts{}), "staff")
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
