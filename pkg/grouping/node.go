package grouping

import (
	"slices"

	"github.com/matzehuels/gridkit/pkg/errors"
)

// Node is one group in the hierarchy.
//
// A node is either a branch, holding child nodes keyed by the next level's
// key, or a leaf at the deepest level, holding rows. The two are never mixed.
type Node struct {
	tree   *Tree
	parent *Node
	level  int
	key    any
	field  string
	leaf   bool
	gen    uint64

	children []*Node
	byKey    map[any]*Node
	rows     []*Row

	// prev holds the children of this node from before a rebuild while the
	// rebuild is in progress.
	prev map[any]*snapshot

	visible Visibility
	pinned  bool

	header      string
	headerValid bool

	top, bottom any
	calcsValid  bool
}

// snapshot records an existing node and its children so a rebuild can reuse
// nodes whose key chain reappears.
type snapshot struct {
	node     *Node
	children map[any]*snapshot
	rows     []*Row
}

func takeSnapshot(nodes []*Node) map[any]*snapshot {
	if len(nodes) == 0 {
		return nil
	}
	out := make(map[any]*snapshot, len(nodes))
	for _, n := range nodes {
		out[n.key] = &snapshot{node: n, children: takeSnapshot(n.children), rows: n.rows}
	}
	return out
}

// newNode creates the node for key at level, or reuses the node recorded in
// snap. Groups of a restricted next level are created eagerly.
func newNode(t *Tree, parent *Node, level int, key any, snap *snapshot) *Node {
	var n *Node
	if snap != nil {
		n = snap.node
		n.prev = snap.children
	} else {
		n = &Node{tree: t, key: key, visible: t.s.visibility(level)}
	}
	n.parent = parent
	n.level = level
	n.field = t.s.levels[level].field
	n.leaf = level == len(t.s.levels)-1
	n.gen = t.gen
	n.children = nil
	n.byKey = nil
	n.rows = nil
	n.invalidate()

	if !n.leaf {
		n.byKey = make(map[any]*Node)
		if next := t.s.levels[level+1]; next.restricted {
			for _, v := range next.values {
				n.createChild(v)
			}
		}
	}
	return n
}

func (n *Node) createChild(key any) *Node {
	c := newNode(n.tree, n, n.level+1, key, n.prev[key])
	n.children = append(n.children, c)
	n.byKey[key] = c
	return c
}

// addRow routes r down to the matching leaf, creating groups as needed.
// It returns false when a restricted level has no group for the row's key.
func (n *Node) addRow(r *Row) bool {
	if n.leaf {
		n.rows = append(n.rows, r)
		r.group = n
		n.invalidateUp()
		return true
	}
	key := n.tree.s.key(n.level+1, r)
	child := n.byKey[key]
	if child == nil {
		if n.tree.s.levels[n.level+1].restricted {
			n.tree.dropped(r, n.level+1, key)
			return false
		}
		child = n.createChild(key)
	}
	return child.addRow(r)
}

// removeRow takes r out of the leaf and removes the leaf, cascading upward,
// when it became empty and empty groups are not retained.
func (n *Node) removeRow(r *Row) {
	if i := slices.Index(n.rows, r); i >= 0 {
		n.rows = slices.Delete(n.rows, i, i+1)
	}
	if r.group == n {
		r.group = nil
	}
	if len(n.rows) == 0 && !n.tree.s.retain() {
		n.detach()
		return
	}
	n.invalidateUp()
}

// RemoveRow takes r out of the leaf; see the package documentation for the
// cascading removal of empty groups.
func (n *Node) RemoveRow(r *Row) {
	if !n.leaf {
		return
	}
	n.removeRow(r)
	n.tree.changed()
}

// InsertRow conforms the data of r to the leaf's key chain and splices it next
// to anchor, taking it out of its previous group first. A CONFIGURATION error
// is returned, and nothing is mutated, when the chain includes a
// function-keyed level or n is not a leaf.
func (n *Node) InsertRow(r *Row, anchor *Row, after bool) error {
	if !n.leaf {
		return errors.New(errors.ErrCodeConfiguration, "cannot insert a row into non-leaf group %v", n.Path())
	}
	data, err := n.ConformData(nil)
	if err != nil {
		return err
	}
	if from := r.group; from != nil && from != n {
		from.removeRow(r)
	}
	n.tree.s.store.Update(r, data)
	n.place(r, anchor, after)
	n.tree.changed()
	return nil
}

// place positions r in the leaf next to anchor. Without a usable anchor the
// row goes to the end (after) or the beginning (before).
func (n *Node) place(r *Row, anchor *Row, after bool) {
	if i := slices.Index(n.rows, r); i >= 0 {
		n.rows = slices.Delete(n.rows, i, i+1)
	}
	switch i := slices.Index(n.rows, anchor); {
	case anchor != nil && i >= 0 && after:
		n.rows = slices.Insert(n.rows, i+1, r)
	case anchor != nil && i >= 0:
		n.rows = slices.Insert(n.rows, i, r)
	case after:
		n.rows = append(n.rows, r)
	default:
		n.rows = slices.Insert(n.rows, 0, r)
	}
	r.group = n
	n.invalidateUp()
}

func (n *Node) removeChild(c *Node) {
	if n.byKey[c.key] != c {
		return
	}
	delete(n.byKey, c.key)
	if i := slices.Index(n.children, c); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
	if len(n.children) == 0 && !n.tree.s.retain() {
		n.detach()
		return
	}
	n.invalidateUp()
}

func (n *Node) detach() {
	if n.parent != nil {
		n.parent.removeChild(n)
		return
	}
	n.tree.removeRoot(n)
}

// attached reports whether n is still reachable from its tree's roots.
func (n *Node) attached() bool {
	p := n
	for ; p.parent != nil; p = p.parent {
		if p.parent.byKey[p.key] != p {
			return false
		}
	}
	return p.tree.byKey[p.key] == p
}

// invalidate drops cached header and aggregates. A computed start state is
// re-armed unless the node was toggled explicitly.
func (n *Node) invalidate() {
	n.headerValid = false
	n.calcsValid = false
	if !n.pinned {
		if start := n.tree.s.visibility(n.level); start.IsComputed() {
			n.visible = start
		}
	}
}

func (n *Node) invalidateUp() {
	for p := n; p != nil; p = p.parent {
		p.invalidate()
	}
}

// =============================================================================
// Accessors
// =============================================================================

// Key returns the group key.
func (n *Node) Key() any { return n.key }

// Level returns the nesting depth, 0 for top-level groups.
func (n *Node) Level() int { return n.level }

// Field returns the field the level is keyed by, or "" for function levels.
func (n *Node) Field() string { return n.field }

// Parent returns the enclosing group, or nil for top-level groups.
func (n *Node) Parent() *Node { return n.parent }

// IsLeaf reports whether the node holds rows rather than child groups.
func (n *Node) IsLeaf() bool { return n.leaf }

// SubGroups returns the child groups in display order.
func (n *Node) SubGroups() []*Node { return slices.Clone(n.children) }

// Rows returns the rows held by the node. With includeChildren set, the rows of
// all descendant leaves are returned in display order.
func (n *Node) Rows(includeChildren bool) []*Row {
	if n.leaf || !includeChildren {
		return slices.Clone(n.rows)
	}
	var out []*Row
	for _, c := range n.children {
		out = append(out, c.Rows(true)...)
	}
	return out
}

// RowCount returns the number of rows in the node and all its descendants.
func (n *Node) RowCount() int {
	if n.leaf {
		return len(n.rows)
	}
	count := 0
	for _, c := range n.children {
		count += c.RowCount()
	}
	return count
}

// Path returns the keys from the top-level group down to n.
func (n *Node) Path() []any {
	path := make([]any, n.level+1)
	for p := n; p != nil; p = p.parent {
		path[p.level] = p.key
	}
	return path
}

// Header returns the rendered header text. It is regenerated after the
// membership of the group changes.
func (n *Node) Header() string {
	if !n.headerValid {
		n.header = n.tree.s.header(n.level)(n.key, n.RowCount(), n.Rows(true))
		n.headerValid = true
	}
	return n.header
}

// Visible reports whether the group is open, resolving a computed state.
func (n *Node) Visible() bool {
	n.resolve()
	return n.visible.IsOpen()
}

func (n *Node) resolve() {
	n.visible = n.visible.resolve(n.key, n.RowCount(), func() []*Row { return n.Rows(true) })
}

// Data returns the data of the rows held directly by the node. With
// visibleOnly set, a closed group yields nothing.
func (n *Node) Data(visibleOnly bool) []map[string]any {
	if visibleOnly && !n.Visible() {
		return nil
	}
	out := make([]map[string]any, 0, len(n.rows))
	for _, r := range n.rows {
		out = append(out, r.Data)
	}
	return out
}

// ConformData writes the key of n and of every ancestor into data under the
// level's field, so that a record carrying data would be grouped into n.
// A nil map is allocated. Groups of function-keyed levels cannot be conformed.
func (n *Node) ConformData(data map[string]any) (map[string]any, error) {
	for p := n; p != nil; p = p.parent {
		if p.field == "" {
			return nil, errors.New(errors.ErrCodeConfiguration,
				"cannot conform data to group %v: level %d is keyed by a function", n.Path(), p.level)
		}
	}
	if data == nil {
		data = make(map[string]any, n.level+1)
	}
	for p := n; p != nil; p = p.parent {
		data[p.field] = p.key
	}
	return data, nil
}

// =============================================================================
// Visibility
// =============================================================================

// Show opens the group.
func (n *Node) Show() { n.setVisible(true) }

// Hide closes the group.
func (n *Node) Hide() { n.setVisible(false) }

// Toggle flips the group between open and closed.
func (n *Node) Toggle() { n.setVisible(!n.Visible()) }

// ResetVisibility discards an explicit toggle and returns the group to the
// configured start state of its level.
func (n *Node) ResetVisibility() {
	n.pinned = false
	n.visible = n.tree.s.visibility(n.level)
	n.tree.changed()
}

func (n *Node) setVisible(open bool) {
	n.visible = Fixed(open)
	n.pinned = true
	n.tree.changed()
	if fn := n.tree.s.cfg.OnVisibilityChange; fn != nil {
		fn(n, open)
	}
}

// =============================================================================
// Flattening
// =============================================================================

// HeadersAndRows returns the display items of the subtree rooted at n: the
// header, then, for open groups, the children or the aggregates and rows.
// Closed leaves emit their aggregates only when ClosedShowCalcs is set.
func (n *Node) HeadersAndRows() []Item {
	return n.appendItems(nil)
}

func (n *Node) appendItems(out []Item) []Item {
	out = append(out, Item{Kind: KindHeader, Level: n.level, Group: n, Header: n.Header()})

	open := n.Visible()
	switch {
	case open && !n.leaf:
		for _, c := range n.children {
			out = c.appendItems(out)
		}
	case open:
		out = n.appendCalc(out, Top)
		for _, r := range n.rows {
			out = append(out, Item{Kind: KindRow, Level: n.level, Group: n, Row: r})
		}
		out = n.appendCalc(out, Bottom)
	case n.leaf && n.tree.s.cfg.ClosedShowCalcs:
		out = n.appendCalc(out, Top)
		out = n.appendCalc(out, Bottom)
	}
	return out
}

func (n *Node) appendCalc(out []Item, pos Position) []Item {
	agg := n.tree.s.agg
	if (pos == Top && !agg.HasTop()) || (pos == Bottom && !agg.HasBottom()) {
		return out
	}
	if !n.calcsValid {
		n.top, n.bottom = nil, nil
		if agg.HasTop() {
			n.top = agg.Compute(Top, n.rows)
		}
		if agg.HasBottom() {
			n.bottom = agg.Compute(Bottom, n.rows)
		}
		n.calcsValid = true
	}
	if pos == Top {
		return append(out, Item{Kind: KindAggregateTop, Level: n.level, Group: n, Aggregate: n.top})
	}
	return append(out, Item{Kind: KindAggregateBottom, Level: n.level, Group: n, Aggregate: n.bottom})
}

// leaves appends the leaf groups of the subtree in display order.
func (n *Node) leaves(out []*Node) []*Node {
	if n.leaf {
		return append(out, n)
	}
	for _, c := range n.children {
		out = c.leaves(out)
	}
	return out
}

func (n *Node) groupedData(out []GroupedEntry) []GroupedEntry {
	out = append(out, GroupedEntry{
		Header:   true,
		Level:    n.level,
		Key:      n.key,
		Content:  n.Header(),
		RowCount: n.RowCount(),
	})
	if !n.leaf {
		for _, c := range n.children {
			out = c.groupedData(out)
		}
		return out
	}
	for _, r := range n.rows {
		out = append(out, GroupedEntry{Level: n.level, Data: r.Data})
	}
	return out
}

// count returns the number of groups in the subtree including n.
func (n *Node) count() int {
	total := 1
	for _, c := range n.children {
		total += c.count()
	}
	return total
}
