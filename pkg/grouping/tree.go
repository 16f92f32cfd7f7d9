package grouping

import (
	"slices"
	"time"

	"github.com/matzehuels/gridkit/pkg/errors"
	"github.com/matzehuels/gridkit/pkg/observability"
)

// Tree is the root of the group hierarchy. It owns the configuration, the
// ordered top-level groups and the source rows of the last rebuild.
type Tree struct {
	s       *settings
	roots   []*Node
	byKey   map[any]*Node
	source  []*Row
	gen     uint64
	version uint64
	blocked bool
	pending bool
}

// New creates an empty tree. It returns a CONFIGURATION error when cfg is
// unusable.
func New(cfg Config) (*Tree, error) {
	s, err := compile(cfg)
	if err != nil {
		return nil, err
	}
	t := &Tree{s: s, byKey: make(map[any]*Node)}
	t.report(s.warnings)
	return t, nil
}

// Configure replaces the configuration and rebuilds the hierarchy from the
// current source rows. Group state is not carried over because keys of the new
// levels need not relate to the old ones. On error the previous configuration
// stays in effect.
func (t *Tree) Configure(cfg Config) error {
	s, err := compile(cfg)
	if err != nil {
		t.warn(err)
		return err
	}
	t.report(s.warnings)
	t.s = s
	t.roots = nil
	t.byKey = make(map[any]*Node)
	t.Rebuild(t.source)
	return nil
}

// Levels returns the number of grouping levels.
func (t *Tree) Levels() int { return len(t.s.levels) }

// Rebuild regroups rows from scratch, in order. Groups whose key chain
// reappears keep their identity and open/closed state; all others are
// discarded and their back references cleared.
func (t *Tree) Rebuild(rows []*Row) {
	start := time.Now()
	t.gen++

	snap := takeSnapshot(t.roots)
	for _, r := range t.source {
		r.group = nil
	}
	clearRows(snap)

	t.source = slices.Clone(rows)
	t.roots = nil
	t.byKey = make(map[any]*Node)

	if len(t.s.levels) > 0 {
		if first := t.s.levels[0]; first.restricted {
			for _, v := range first.values {
				t.createRoot(v, snap[v])
			}
		}
		for _, r := range t.source {
			t.assign(r, snap)
		}
	}

	for _, n := range t.roots {
		n.settle()
	}
	discard(snap, t.gen)

	observability.Grouping().OnRebuild(len(t.s.levels), len(t.source), t.GroupCount(), time.Since(start))
	t.changed()
}

// clearRows clears back references of rows held by a previous hierarchy.
func clearRows(snap map[any]*snapshot) {
	for _, s := range snap {
		for _, r := range s.rows {
			if r.group == s.node {
				r.group = nil
			}
		}
		clearRows(s.children)
	}
}

// discard releases nodes of a previous hierarchy that the rebuild did not reuse.
func discard(snap map[any]*snapshot, gen uint64) {
	for _, s := range snap {
		if s.node.gen != gen {
			s.node.parent = nil
			s.node.children = nil
			s.node.byKey = nil
			s.node.rows = nil
		}
		discard(s.children, gen)
	}
}

// settle drops the rebuild snapshot references from the subtree.
func (n *Node) settle() {
	n.prev = nil
	for _, c := range n.children {
		c.settle()
	}
}

func (t *Tree) createRoot(key any, snap *snapshot) *Node {
	n := newNode(t, nil, 0, key, snap)
	t.roots = append(t.roots, n)
	t.byKey[key] = n
	return n
}

func (t *Tree) removeRoot(n *Node) {
	if t.byKey[n.key] != n {
		return
	}
	delete(t.byKey, n.key)
	if i := slices.Index(t.roots, n); i >= 0 {
		t.roots = slices.Delete(t.roots, i, i+1)
	}
}

// assign routes r to its leaf, creating groups unless the level is restricted.
func (t *Tree) assign(r *Row, snap map[any]*snapshot) bool {
	key := t.s.key(0, r)
	root := t.byKey[key]
	if root == nil {
		if t.s.levels[0].restricted {
			t.dropped(r, 0, key)
			return false
		}
		root = t.createRoot(key, snap[key])
	}
	return root.addRow(r)
}

func (t *Tree) dropped(r *Row, level int, key any) {
	t.s.logger.Debug("record not in restricted key set", "id", r.ID, "level", level, "key", key)
}

// =============================================================================
// Incremental Maintenance
// =============================================================================

// Assign places an ungrouped row that is already part of the source rows into
// its group. It returns false when the row is grouped already or was left
// ungrouped by a restricted key set.
func (t *Tree) Assign(r *Row) bool {
	if r.group != nil || len(t.s.levels) == 0 {
		return false
	}
	if !slices.Contains(t.source, r) {
		t.source = append(t.source, r)
	}
	ok := t.assign(r, nil)
	if ok {
		t.changed()
	}
	return ok
}

// Add appends r to the source rows and assigns it to its group. A row that is
// already grouped is reassigned instead. It returns false when the row was
// left ungrouped by a restricted key set.
func (t *Tree) Add(r *Row) bool {
	ok := t.add(r)
	t.changed()
	return ok
}

func (t *Tree) add(r *Row) bool {
	if r.group != nil {
		t.reassign(r)
		return r.group != nil
	}
	if !slices.Contains(t.source, r) {
		t.source = append(t.source, r)
	}
	if len(t.s.levels) == 0 {
		return true
	}
	return t.assign(r, nil)
}

// AddAt adds r and positions it within its group: next to anchor when the
// anchor shares the group, otherwise at the top or the bottom of the group.
func (t *Tree) AddAt(r *Row, anchor *Row, top bool) bool {
	if !slices.Contains(t.source, r) {
		if i := slices.Index(t.source, anchor); anchor != nil && i >= 0 {
			if !top {
				i++
			}
			t.source = slices.Insert(t.source, i, r)
		} else if top {
			t.source = slices.Insert(t.source, 0, r)
		}
	}
	ok := t.add(r)
	if g := r.group; ok && g != nil {
		switch {
		case anchor != nil && anchor != r && anchor.group == g:
			g.place(r, anchor, !top)
		case top:
			g.place(r, nil, false)
		}
	}
	t.changed()
	return ok
}

// Remove takes r out of the tree. Unknown rows are reported as LOOKUP_MISS
// and leave the tree unchanged.
func (t *Tree) Remove(r *Row) error {
	if err := t.holds(r, "row"); err != nil {
		return err
	}
	i := slices.Index(t.source, r)
	if i >= 0 {
		t.source = slices.Delete(t.source, i, i+1)
	}
	if g := r.group; g != nil {
		g.removeRow(r)
	}
	t.changed()
	return nil
}

// Reassign moves r to the group its current data maps to. It reports whether
// the row changed groups; the tree is left untouched when it did not.
func (t *Tree) Reassign(r *Row) bool {
	moved := t.reassign(r)
	if moved {
		t.changed()
	}
	return moved
}

func (t *Tree) reassign(r *Row) bool {
	if len(t.s.levels) == 0 {
		return false
	}
	old := r.group
	if old == nil {
		if !slices.Contains(t.source, r) {
			return false
		}
		moved := t.assign(r, nil)
		observability.Grouping().OnReassign(moved)
		return moved
	}
	if slices.Equal(old.Path(), t.ExpectedPath(r)) {
		observability.Grouping().OnReassign(false)
		return false
	}
	old.removeRow(r)
	t.assign(r, nil)
	observability.Grouping().OnReassign(true)
	return true
}

// Update writes values into r through the store and reassigns it. It reports
// whether the row changed groups.
func (t *Tree) Update(r *Row, values map[string]any) bool {
	t.s.store.Update(r, values)
	moved := t.reassign(r)
	if !moved && r.group != nil {
		r.group.invalidateUp()
	}
	t.changed()
	return moved
}

// Move places row next to anchor. Within one group only the order changes;
// across groups the row's data is conformed to the anchor's group first.
// Nothing is mutated when either row is not held by the tree, the anchor is
// not grouped, or the target group cannot be conformed to.
func (t *Tree) Move(row, anchor *Row, after bool) error {
	if err := t.holds(row, "row"); err != nil {
		return err
	}
	if err := t.holds(anchor, "anchor row"); err != nil {
		return err
	}
	if row == anchor {
		return nil
	}
	to := anchor.group
	if to == nil {
		err := errors.New(errors.ErrCodeLookupMiss, "anchor row %q is not grouped", anchor.ID)
		t.warn(err)
		return err
	}
	if err := t.moveInto(row, to, anchor, after); err != nil {
		return err
	}
	t.reorderSource(row, anchor, after)
	t.changed()
	return nil
}

// MoveToGroup moves row into g, at its end (after) or its beginning. When g
// is not a leaf, the row goes to the last (after) or first descendant leaf.
func (t *Tree) MoveToGroup(row *Row, g *Node, after bool) error {
	if err := t.holds(row, "row"); err != nil {
		return err
	}
	if g == nil || g.tree != t || !g.attached() {
		err := errors.New(errors.ErrCodeLookupMiss, "target group is not part of the tree")
		t.warn(err)
		return err
	}
	leaves := g.leaves(nil)
	if len(leaves) == 0 {
		err := errors.New(errors.ErrCodeLookupMiss, "target group %v holds no leaf groups", g.Path())
		t.warn(err)
		return err
	}
	to := leaves[0]
	if after {
		to = leaves[len(leaves)-1]
	}
	if err := t.moveInto(row, to, nil, after); err != nil {
		return err
	}
	t.changed()
	return nil
}

func (t *Tree) moveInto(row *Row, to *Node, anchor *Row, after bool) error {
	if row.group == to {
		to.place(row, anchor, after)
		return nil
	}
	data, err := to.ConformData(nil)
	if err != nil {
		t.warn(err)
		return err
	}
	if from := row.group; from != nil {
		from.removeRow(row)
	}
	t.s.store.Update(row, data)
	to.place(row, anchor, after)
	return nil
}

// holds reports a LOOKUP_MISS for rows the tree does not hold.
func (t *Tree) holds(r *Row, what string) error {
	if r == nil {
		err := errors.New(errors.ErrCodeLookupMiss, "%s is nil", what)
		t.warn(err)
		return err
	}
	if (r.group == nil || r.group.tree != t) && !slices.Contains(t.source, r) {
		err := errors.New(errors.ErrCodeLookupMiss, "%s %q is not held by the tree", what, r.ID)
		t.warn(err)
		return err
	}
	return nil
}

func (t *Tree) reorderSource(row, anchor *Row, after bool) {
	if i := slices.Index(t.source, row); i >= 0 {
		t.source = slices.Delete(t.source, i, i+1)
	}
	i := slices.Index(t.source, anchor)
	switch {
	case i < 0:
		t.source = append(t.source, row)
	case after:
		t.source = slices.Insert(t.source, i+1, row)
	default:
		t.source = slices.Insert(t.source, i, row)
	}
}

// =============================================================================
// Queries
// =============================================================================

// Flatten returns the display sequence: for each top-level group in order, its
// headers, aggregates and rows. Without levels the source rows are returned.
func (t *Tree) Flatten() []Item {
	start := time.Now()
	var out []Item
	if len(t.s.levels) == 0 {
		out = make([]Item, 0, len(t.source))
		for _, r := range t.source {
			out = append(out, Item{Kind: KindRow, Row: r})
		}
	} else {
		for _, n := range t.roots {
			out = n.appendItems(out)
		}
	}
	observability.Grouping().OnFlatten(len(out), time.Since(start))
	return out
}

// Groups returns the top-level groups in display order.
func (t *Tree) Groups() []*Node { return slices.Clone(t.roots) }

// ChildGroups returns the deepest groups below n in display order, or those
// of the whole tree when n is nil.
func (t *Tree) ChildGroups(n *Node) []*Node {
	if n != nil {
		return n.leaves(nil)
	}
	var out []*Node
	for _, r := range t.roots {
		out = r.leaves(out)
	}
	return out
}

// GroupCount returns the number of groups at every level.
func (t *Tree) GroupCount() int {
	total := 0
	for _, n := range t.roots {
		total += n.count()
	}
	return total
}

// RowCount returns the number of grouped rows.
func (t *Tree) RowCount() int {
	if len(t.s.levels) == 0 {
		return len(t.source)
	}
	total := 0
	for _, n := range t.roots {
		total += n.RowCount()
	}
	return total
}

// Source returns the rows of the last rebuild with later additions and
// removals applied, including rows left ungrouped.
func (t *Tree) Source() []*Row { return slices.Clone(t.source) }

// GroupByPath returns the group reached by following keys from the top level,
// or nil.
func (t *Tree) GroupByPath(path ...any) *Node {
	if len(path) == 0 {
		return nil
	}
	n := t.byKey[normalizeKey(path[0])]
	for _, k := range path[1:] {
		if n == nil {
			return nil
		}
		n = n.byKey[normalizeKey(k)]
	}
	return n
}

// Toggle flips the group at path. Unknown paths are reported as LOOKUP_MISS.
func (t *Tree) Toggle(path ...any) error {
	n := t.GroupByPath(path...)
	if n == nil {
		err := errors.New(errors.ErrCodeLookupMiss, "no group at path %v", path)
		t.warn(err)
		return err
	}
	n.Toggle()
	return nil
}

// GroupOf returns the leaf that holds r, or nil.
func (t *Tree) GroupOf(r *Row) *Node { return r.group }

// ExpectedPath returns the key chain r maps to under the current levels.
func (t *Tree) ExpectedPath(r *Row) []any {
	path := make([]any, len(t.s.levels))
	for i := range t.s.levels {
		path[i] = t.s.key(i, r)
	}
	return path
}

// GroupedData exports the hierarchy as a flat list of header and record
// entries, regardless of open/closed state.
func (t *Tree) GroupedData() []GroupedEntry {
	var out []GroupedEntry
	for _, n := range t.roots {
		out = n.groupedData(out)
	}
	return out
}

// =============================================================================
// Change Notification
// =============================================================================

// Version increases every time the display sequence changes.
func (t *Tree) Version() uint64 { return t.version }

// BlockRedraw suppresses change notifications until RestoreRedraw.
func (t *Tree) BlockRedraw() { t.blocked = true }

// RestoreRedraw re-enables change notifications and emits one if any were
// suppressed.
func (t *Tree) RestoreRedraw() {
	t.blocked = false
	if t.pending {
		t.pending = false
		t.changed()
	}
}

func (t *Tree) changed() {
	t.version++
	if t.blocked {
		t.pending = true
		return
	}
	if fn := t.s.cfg.OnChange; fn != nil {
		fn()
	}
}

func (t *Tree) warn(err error) {
	code := errors.GetCode(err)
	t.s.logger.Warn(errors.UserMessage(err), "code", code)
	observability.Grouping().OnWarning(string(code))
}

func (t *Tree) report(warnings []*errors.Error) {
	for _, w := range warnings {
		t.warn(w)
	}
}
