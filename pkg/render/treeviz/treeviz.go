// Package treeviz renders a group tree as a Graphviz diagram.
//
// # Usage
//
// Convert a tree to DOT, then render it:
//
//	dot := treeviz.ToDOT(tree, treeviz.Options{Detailed: true})
//	svg, err := treeviz.RenderSVG(dot)
//
// A synthetic root node stands for the whole record set. Every group becomes a
// rounded box labelled with its header; closed groups are drawn dashed on grey
// so the open/closed state shows at a glance. With [Options.Rows] set, leaf
// groups also list their row IDs.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and PNG
// rendering; no Graphviz installation is needed.
package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gridkit/pkg/grouping"
)

const rootID = "records"

// Options configures diagram generation.
type Options struct {
	// Detailed adds the grouping field and level to group labels.
	Detailed bool
	// Rows lists up to this many row IDs under each leaf group.
	Rows int
}

// ToDOT converts a group tree to Graphviz DOT.
func ToDOT(t *grouping.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse];\n", rootID, fmt.Sprintf("%d rows", t.RowCount()))

	w := &writer{buf: &buf, opts: opts}
	for _, g := range t.Groups() {
		w.group(g, rootID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

type writer struct {
	buf  *bytes.Buffer
	opts Options
	seq  int
}

func (w *writer) group(n *grouping.Node, parent string) {
	id := "g" + strconv.Itoa(w.seq)
	w.seq++

	fmt.Fprintf(w.buf, "  %q [%s];\n", id, strings.Join(w.attrs(n), ", "))
	fmt.Fprintf(w.buf, "  %q -> %q;\n", parent, id)

	for _, c := range n.SubGroups() {
		w.group(c, id)
	}
}

func (w *writer) attrs(n *grouping.Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", w.label(n))}
	if !n.Visible() {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

func (w *writer) label(n *grouping.Node) string {
	parts := []string{n.Header()}
	if w.opts.Detailed {
		parts = append(parts, fmt.Sprintf("level %d: %s", n.Level(), fieldName(n)))
	}
	if w.opts.Rows > 0 && n.IsLeaf() {
		rows := n.Rows(false)
		for i, r := range rows {
			if i == w.opts.Rows {
				parts = append(parts, fmt.Sprintf("… %d more", len(rows)-i))
				break
			}
			parts = append(parts, r.ID)
		}
	}
	return strings.Join(parts, "\n")
}

func fieldName(n *grouping.Node) string {
	if f := n.Field(); f != "" {
		return f
	}
	return "(func)"
}

// RenderSVG renders DOT to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	out, err := render(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the drawing scales to its
// container, keeping the Graphviz dimensions as intrinsic size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
