// Package pkg provides the core libraries for gridkit, a grouping and column
// layout engine for tabular data.
//
// # Overview
//
// Gridkit takes flat records, arranges them into a collapsible hierarchy of
// groups, flattens that hierarchy into a display sequence of headers, rows
// and aggregate rows, and sizes the table's columns to a viewport. The pkg
// directory is organized into four areas:
//
//  1. Engine - [grouping], [layout], [calcs] and [grid], which ties them together
//  2. Input and output - [records] and [config]
//  3. Presentation - [render/text], [render/treeviz] and [server]
//  4. Support - [errors], [observability], [cache] and [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	JSON / CSV records
//	         ↓
//	    [records] package (rows with stable IDs)
//	         ↓
//	    [grouping] package (group tree + display sequence)
//	         ↓
//	    [layout] package (column widths for a viewport)
//	         ↓
//	    text lines, grouped JSON, DOT/SVG/PNG, or HTTP responses
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/gridkit/pkg/grid"
//	    "github.com/matzehuels/gridkit/pkg/grouping"
//	    "github.com/matzehuels/gridkit/pkg/layout"
//	    "github.com/matzehuels/gridkit/pkg/records"
//	)
//
//	rows, _ := records.Import("staff.json", records.Options{})
//	engine, _ := grid.New(grouping.Config{
//	    Levels: []grouping.Level{grouping.ByField("dept")},
//	}, grid.Options{Mode: layout.FitColumns, Width: 120, Columns: cols})
//	engine.Load(rows)
//
//	alloc := engine.Layout()
//	for _, item := range engine.DisplaySequence() {
//	    // render item using alloc.Widths
//	}
//
// # Main Packages
//
// [grouping] - The group tree. Rows are bucketed level by level by field or
// key function; groups keep their open/closed state and header text, and the
// tree flattens into the display sequence. Incremental add, remove, update
// and move keep the tree consistent without a full rebuild.
//
// [layout] - Column width allocation. fitColumns distributes the viewport
// proportionally with iterative min/max clamping; the fitData modes size
// columns to their content, and fitDataStretch grows the last column. The
// [layout.Driver] caches allocations per viewport and column set.
//
// [calcs] - Column calculations (count, sum, avg, min, max) rendered as
// aggregate rows above or below each group.
//
// [grid] - The engine facade: one grouping tree plus one layout driver,
// addressed by record ID.
//
// [config] - gridkit.toml loading and conversion into engine settings.
//
// [records] - JSON and CSV import, grouped-data export.
//
// [render/text] - Fixed-width terminal rendering of the display sequence.
//
// [render/treeviz] - Graphviz drawings of the group hierarchy.
//
// [server] - JSON HTTP API over an engine.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test -short ./pkg/...   # Skip Graphviz rendering
//	go test -run Example       # Examples only
//
// [grouping]: https://pkg.go.dev/github.com/matzehuels/gridkit/pkg/grouping
// [layout]: https://pkg.go.dev/github.com/matzehuels/gridkit/pkg/layout
// [layout.Driver]: https://pkg.go.dev/github.com/matzehuels/gridkit/pkg/layout#Driver
// [calcs]: https://pkg.go.dev/github.com/matzehuels/gridkit/pkg/calcs
// [grid]: https://pkg.go.dev/github.com/matzehuels/gridkit/pkg/grid
// [config]: https://pkg.go.dev/github.com/matzehuels/gridkit/pkg/config
// [records]: https://pkg.go.dev/github.com/matzehuels/gridkit/pkg/records
// [render/text]: https://pkg.go.dev/github.com/matzehuels/gridkit/pkg/render/text
// [render/treeviz]: https://pkg.go.dev/github.com/matzehuels/gridkit/pkg/render/treeviz
// [server]: https://pkg.go.dev/github.com/matzehuels/gridkit/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/gridkit/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/gridkit/pkg/observability
// [cache]: https://pkg.go.dev/github.com/matzehuels/gridkit/pkg/cache
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/gridkit/pkg/buildinfo
package pkg
