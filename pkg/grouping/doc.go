// Package grouping partitions a flat, ordered collection of records into a
// multi-level hierarchy of groups and flattens that hierarchy into the ordered
// sequence of display items a table renderer consumes.
//
// # Overview
//
// A [Tree] is configured with one [Level] per nesting depth. Each level derives
// a key from a record, either by reading a field through the [Store] facade or
// by calling an arbitrary [KeyFunc]. Records sharing a key at a level share a
// [Node]; nodes at the deepest level own the records, every other node owns
// child nodes:
//
//	tree, _ := grouping.New(grouping.Config{
//	    Levels: []grouping.Level{grouping.ByField("dept"), grouping.ByField("team")},
//	})
//	tree.Rebuild(rows)
//	for _, item := range tree.Flatten() {
//	    // item.Kind is KindHeader, KindAggregateTop, KindRow or KindAggregateBottom
//	}
//
// # Incremental Maintenance
//
// The hierarchy is rebuilt wholesale with [Tree.Rebuild] and patched per record
// with [Tree.Add], [Tree.Remove], [Tree.Update], [Tree.Reassign] and [Tree.Move].
// Every record assigned to the tree lives in exactly one leaf node and carries a
// back reference to it ([Row.Group]), which makes removal and reassignment O(depth).
// Removing the last record of a leaf removes the leaf, and the removal cascades
// upward through ancestors that become empty, unless empty groups are retained
// (see [Config.RetainEmpty] and [Config.Values]).
//
// Rebuild preserves node identity: a node whose key chain reappears keeps its
// pointer and its open/closed state, so re-sorting or re-filtering does not
// collapse groups a user opened.
//
// # Visibility
//
// A node is open or closed. Its initial state comes from [Config.StartOpen] as a
// [Visibility], which is either [Fixed] or [Computed] from a [Predicate]. Computed
// visibility is resolved lazily, once, the next time the node is flattened, and
// then cached. Explicit [Node.Show], [Node.Hide] and [Node.Toggle] calls pin the
// state; a node that was never toggled re-arms its predicate when its membership
// changes.
//
// # Restricted Key Sets
//
// [Config.Values] declares a closed list of permissible keys per level. Groups
// for those keys are created eagerly, in the declared order, and are retained
// when empty. Records whose key is not listed are left ungrouped: they do not
// appear in the display sequence.
//
// # Errors
//
// Nothing in this package panics on bad input. Configuration problems that make
// a configuration unusable are returned as CONFIGURATION errors and leave the
// previous configuration in place; recoverable anomalies (unknown records,
// header lists shorter than level lists) are logged as warnings and the
// operation continues on a best-effort basis.
//
// # Concurrency
//
// A Tree is single-writer and not safe for concurrent use. Callers must not
// mutate records while a flatten is in progress. [Tree.BlockRedraw] and
// [Tree.RestoreRedraw] coalesce change notifications raised during a batch.
package grouping
