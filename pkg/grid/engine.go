package grid

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridkit/pkg/errors"
	"github.com/matzehuels/gridkit/pkg/grouping"
	"github.com/matzehuels/gridkit/pkg/layout"
)

// Engine ties a group tree to a layout driver and indexes rows by ID.
type Engine struct {
	tree   *grouping.Tree
	driver *layout.Driver
	byID   map[string]*grouping.Row
	logger *log.Logger
}

// New creates an engine. The grouping config's logger defaults to the one in
// opts.
func New(cfg grouping.Config, opts Options) (*Engine, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = opts.Logger
	}
	tree, err := grouping.New(cfg)
	if err != nil {
		return nil, err
	}

	driver := layout.NewDriver(opts.Mode, layout.Options{
		Logger:           opts.Logger,
		Measurer:         opts.Measurer,
		ColumnsOnNewData: opts.ColumnsOnNewData,
		ScrollbarWidth:   opts.ScrollbarWidth,
	})
	driver.SetColumns(opts.Columns)
	if err := driver.Resize(opts.Width); err != nil {
		return nil, err
	}

	return &Engine{
		tree:   tree,
		driver: driver,
		byID:   make(map[string]*grouping.Row),
		logger: opts.Logger,
	}, nil
}

// Tree returns the underlying group tree.
func (e *Engine) Tree() *grouping.Tree { return e.tree }

// Driver returns the underlying layout driver.
func (e *Engine) Driver() *layout.Driver { return e.driver }

// Configure replaces the grouping configuration and rebuilds. On error the
// previous configuration stays in effect.
func (e *Engine) Configure(cfg grouping.Config) error {
	if cfg.Logger == nil {
		cfg.Logger = e.logger
	}
	return e.tree.Configure(cfg)
}

// Load replaces the record set. A row whose ID is already taken is skipped,
// as NotifyRecordAdded would reject it.
func (e *Engine) Load(rows []*grouping.Row) {
	e.byID = make(map[string]*grouping.Row, len(rows))
	kept := make([]*grouping.Row, 0, len(rows))
	for _, r := range rows {
		if _, dup := e.byID[r.ID]; dup {
			e.logger.Warn("duplicate row id, skipping record", "id", r.ID, "code", errors.ErrCodeInvalidInput)
			continue
		}
		e.byID[r.ID] = r
		kept = append(kept, r)
	}
	rows = kept
	e.tree.Rebuild(rows)
	e.driver.DataChanged(e.data())
	e.logger.Debug("loaded records", "rows", len(rows), "groups", e.tree.GroupCount())
}

// Row returns the row with the given ID, or nil.
func (e *Engine) Row(id string) *grouping.Row { return e.byID[id] }

// Rows returns all rows in source order.
func (e *Engine) Rows() []*grouping.Row { return e.tree.Source() }

// DisplaySequence returns the flattened headers, aggregates and rows.
func (e *Engine) DisplaySequence() []grouping.Item { return e.tree.Flatten() }

// GroupCount returns the number of groups at every level.
func (e *Engine) GroupCount() int { return e.tree.GroupCount() }

// GroupByPath returns the group at path, or nil.
func (e *Engine) GroupByPath(path ...any) *grouping.Node { return e.tree.GroupByPath(path...) }

// ToggleGroup opens or closes the group at path.
func (e *Engine) ToggleGroup(path ...any) error { return e.tree.Toggle(path...) }

// =============================================================================
// Record Notifications
// =============================================================================

// NotifyRecordAdded adds r. Rows with an ID already in use are rejected.
func (e *Engine) NotifyRecordAdded(r *grouping.Row) error {
	if _, ok := e.byID[r.ID]; ok {
		return errors.New(errors.ErrCodeInvalidInput, "row id %q already exists", r.ID)
	}
	e.byID[r.ID] = r
	e.tree.Add(r)
	e.driver.DataChanged(e.data())
	return nil
}

// NotifyRecordRemoved removes the row with the given ID.
func (e *Engine) NotifyRecordRemoved(id string) error {
	r, err := e.lookup(id)
	if err != nil {
		return err
	}
	if err := e.tree.Remove(r); err != nil {
		return err
	}
	delete(e.byID, id)
	e.driver.DataChanged(e.data())
	return nil
}

// NotifyRecordUpdated writes values into the row and regroups it. It reports
// whether the row changed groups.
func (e *Engine) NotifyRecordUpdated(id string, values map[string]any) (bool, error) {
	r, err := e.lookup(id)
	if err != nil {
		return false, err
	}
	moved := e.tree.Update(r, values)
	e.driver.DataChanged(e.data())
	return moved, nil
}

// NotifyRecordMoved moves the row next to the anchor row.
func (e *Engine) NotifyRecordMoved(id, anchorID string, after bool) error {
	r, err := e.lookup(id)
	if err != nil {
		return err
	}
	anchor, err := e.lookup(anchorID)
	if err != nil {
		return err
	}
	if err := e.tree.Move(r, anchor, after); err != nil {
		return err
	}
	e.driver.DataChanged(e.data())
	return nil
}

func (e *Engine) lookup(id string) (*grouping.Row, error) {
	r, ok := e.byID[id]
	if !ok {
		err := errors.New(errors.ErrCodeLookupMiss, "no row with id %q", id)
		e.logger.Warn(err.Message, "code", err.Code)
		return nil, err
	}
	return r, nil
}

func (e *Engine) data() []map[string]any {
	rows := e.tree.Source()
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = r.Data
	}
	return out
}

// =============================================================================
// Layout
// =============================================================================

// Columns returns the managed columns.
func (e *Engine) Columns() []*layout.Column { return e.driver.Columns() }

// SetColumns replaces the managed columns.
func (e *Engine) SetColumns(cols []*layout.Column) { e.driver.SetColumns(cols) }

// Resize sets the viewport width.
func (e *Engine) Resize(width int) error { return e.driver.Resize(width) }

// SetMode switches the layout mode.
func (e *Engine) SetMode(mode layout.Mode) { e.driver.SetMode(mode) }

// Layout lays out the managed columns for the current viewport.
func (e *Engine) Layout() layout.Allocation { return e.driver.Layout(false) }

// ComputeColumnWidths distributes width across cols without touching the
// managed columns. Overflow is logged as a soft warning.
func (e *Engine) ComputeColumnWidths(cols []*layout.Column, width int, mode layout.Mode) layout.Allocation {
	alloc := layout.Compute(mode, cols, width)
	if err := alloc.Err(); err != nil {
		e.logger.Warn(err.Error(), "code", errors.ErrCodeConstraintUnsatisfiable)
	}
	return alloc
}

// Stats summarises the engine state.
func (e *Engine) Stats() Stats {
	return Stats{
		Rows:    len(e.byID),
		Grouped: e.tree.RowCount(),
		Groups:  e.tree.GroupCount(),
		Levels:  e.tree.Levels(),
		Items:   len(e.tree.Flatten()),
	}
}
