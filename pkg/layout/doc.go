// Package layout computes concrete column widths for a table viewport.
//
// # Overview
//
// A [Column] declares how it wants to be sized: an explicit [Width] in pixels
// or as a percentage of the viewport, minimum and maximum bounds, a growth
// weight for flexible columns and a shrink weight for fixed ones. [Compute]
// turns a column set and an available width into an [Allocation] according to
// a [Mode]:
//
//   - [FitColumns] distributes the viewport across the columns so that the
//     widths sum to the available width exactly, whenever the minimum widths
//     allow it.
//   - [FitData], [FitDataFill] and [FitDataTable] size each column to its
//     natural content width.
//   - [FitDataStretch] sizes columns to their content and stretches the last
//     visible column into the remaining space.
//
// # Fit Columns
//
// Columns with a declared width are fixed; their width is resolved against the
// viewport and raised to their minimum. The remaining space is split between
// flexible columns in proportion to their [Column.Grow] weights. Whenever a
// share falls outside a column's bounds the column is clamped, removed from the
// distribution and the shares of the others are recomputed, until every share
// fits. The integer remainder of the division goes to the last flexible column.
//
// Space the flexible columns cannot absorb (because of maximum widths) and
// space they take beyond the viewport (because of minimum widths) is then
// pushed into the fixed columns that declare a [Column.Shrink] weight, with the
// same clamp-and-redistribute loop. What remains after both passes is reported
// as [Allocation.Slack]; a negative slack means the minimum widths could not be
// honoured inside the viewport and the table overflows.
//
//	alloc := layout.Compute(layout.FitColumns, []*layout.Column{
//	    {Field: "name", Grow: 1},
//	    {Field: "email", Grow: 2, MinWidth: 120},
//	    {Field: "id", Width: layout.Px(60)},
//	}, 800)
//
// # Driver
//
// A [Driver] owns a column set across relayout triggers: viewport resizes,
// column changes and new data. It measures natural widths with a [Measurer]
// when the mode needs them, memoizes allocations and writes the result into
// [Column.Current].
package layout
