// Package render groups the output renderers for grouped record sets.
//
// # Overview
//
// Rendering is split by target:
//
//   - Terminal text (in [text] subpackage)
//   - Group tree diagrams (in [treeviz] subpackage)
//
// # Terminal Text
//
// The [text] subpackage turns a display sequence and the column widths of a
// layout pass into aligned lines, styled with lipgloss for terminals:
//
//	r := text.New(cols, alloc.Widths, text.Options{Styled: true})
//	err := r.Write(os.Stdout, engine.DisplaySequence())
//
// # Tree Diagrams
//
// The [treeviz] subpackage draws the group hierarchy with Graphviz, one box
// per group, closed groups dashed:
//
//	dot := treeviz.ToDOT(engine.Tree(), treeviz.Options{})
//	svg, err := treeviz.RenderSVG(dot)
//
// [text]: github.com/matzehuels/gridkit/pkg/render/text
// [treeviz]: github.com/matzehuels/gridkit/pkg/render/treeviz
package render
