package treeviz

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridkit/pkg/grouping"
)

func sampleTree(t *testing.T) *grouping.Tree {
	t.Helper()
	tree, err := grouping.New(grouping.Config{
		Levels: []grouping.Level{grouping.ByField("dept"), grouping.ByField("team")},
		Logger: log.New(io.Discard),
	})
	if err != nil {
		t.Fatal(err)
	}
	tree.Rebuild([]*grouping.Row{
		grouping.NewRow("r1", map[string]any{"dept": "A", "team": "x"}),
		grouping.NewRow("r2", map[string]any{"dept": "A", "team": "x"}),
		grouping.NewRow("r3", map[string]any{"dept": "B", "team": "y"}),
	})
	return tree
}

func TestToDOT(t *testing.T) {
	tree := sampleTree(t)
	_ = tree.Toggle("B")
	dot := ToDOT(tree, Options{})

	for _, want := range []string{
		`"records" [label="3 rows", shape=ellipse];`,
		`"g0" [label="A (2 items)"];`,
		`"records" -> "g0";`,
		`"g1" [label="x (2 items)"];`,
		`"g0" -> "g1";`,
		`"g2" [label="B (1 item)", style="rounded,filled,dashed"`,
		`"g2" -> "g3";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(sampleTree(t), Options{Detailed: true, Rows: 1})

	if !strings.Contains(dot, `label="A (2 items)\nlevel 0: dept"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `label="x (2 items)\nlevel 1: team\nr1\n… 1 more"`) {
		t.Errorf("row listing missing:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="x"><g/></svg>`)
	got := normalizeViewBox(in)
	if !bytes.HasPrefix(got, []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20">`)) {
		t.Errorf("normalizeViewBox() = %s", got)
	}
	plain := []byte("<svg><g/></svg>")
	if !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("normalizeViewBox() changed an svg without viewBox")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	svg, err := RenderSVG(ToDOT(sampleTree(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("RenderSVG() output is not SVG")
	}
}
