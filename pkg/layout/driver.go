package layout

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridkit/pkg/cache"
	"github.com/matzehuels/gridkit/pkg/errors"
	"github.com/matzehuels/gridkit/pkg/observability"
)

// DefaultScrollbarWidth is the width reserved for a visible vertical scrollbar.
const DefaultScrollbarWidth = 1

// Options configures a Driver.
type Options struct {
	// Logger receives soft warnings. Defaults to log.Default().
	Logger *log.Logger

	// Measurer measures natural widths. Defaults to a TextMeasurer.
	Measurer Measurer

	// ColumnsOnNewData re-measures natural widths on every data change, even
	// in FitColumns mode.
	ColumnsOnNewData bool

	// ScrollbarWidth is subtracted from the viewport while the scrollbar is
	// visible. Defaults to DefaultScrollbarWidth.
	ScrollbarWidth int

	// CacheSize bounds the number of memoized allocations.
	CacheSize int
}

// Driver keeps a column set laid out across relayout triggers.
//
// A Driver is not safe for concurrent use.
type Driver struct {
	mode      Mode
	opts      Options
	logger    *log.Logger
	measurer  Measurer
	columns   []*Column
	rows      []map[string]any
	width     int
	scrollbar bool
	measured  bool
	memo      cache.Cache[string, Allocation]
}

// NewDriver creates a driver for mode. An unknown mode logs a warning and
// falls back to FitData.
func NewDriver(mode Mode, opts Options) *Driver {
	d := &Driver{opts: opts, logger: opts.Logger, measurer: opts.Measurer}
	if d.logger == nil {
		d.logger = log.Default()
	}
	if d.measurer == nil {
		d.measurer = NewTextMeasurer(DefaultPadding, 0)
	}
	if d.opts.ScrollbarWidth <= 0 {
		d.opts.ScrollbarWidth = DefaultScrollbarWidth
	}
	memo, err := cache.NewLRU[string, Allocation](opts.CacheSize)
	if err != nil {
		memo = cache.NewNullCache[string, Allocation]()
	}
	d.memo = memo
	d.SetMode(mode)
	return d
}

// Mode returns the active mode.
func (d *Driver) Mode() Mode { return d.mode }

// SetMode switches the distribution strategy.
func (d *Driver) SetMode(mode Mode) {
	parsed, err := ParseMode(string(mode))
	if err != nil {
		d.logger.Warn("unknown layout mode, using fitData", "mode", mode, "code", errors.GetCode(err))
		parsed = FitData
	}
	if parsed != d.mode {
		d.measured = false
	}
	d.mode = parsed
}

// Columns returns the managed columns.
func (d *Driver) Columns() []*Column { return d.columns }

// SetColumns replaces the managed columns.
func (d *Driver) SetColumns(cols []*Column) {
	d.columns = cols
	d.measured = false
}

// Width returns the viewport width.
func (d *Driver) Width() int { return d.width }

// Resize sets the viewport width. Negative widths are rejected.
func (d *Driver) Resize(width int) error {
	if err := errors.ValidateWidth(width); err != nil {
		return err
	}
	d.width = width
	return nil
}

// SetScrollbar shows or hides the vertical scrollbar. A non-positive width
// keeps the configured one.
func (d *Driver) SetScrollbar(width int, visible bool) {
	if width > 0 {
		d.opts.ScrollbarWidth = width
	}
	d.scrollbar = visible
}

// DataChanged hands the driver the rows its columns display.
func (d *Driver) DataChanged(rows []map[string]any) {
	d.rows = rows
	if d.mode.Measures() || d.opts.ColumnsOnNewData {
		d.measured = false
	}
}

// Available returns the width the columns are distributed across.
func (d *Driver) Available() int {
	w := d.width
	if d.scrollbar {
		w -= d.opts.ScrollbarWidth
	}
	return max(w, 0)
}

// Layout runs a distribution pass, applies the widths to the columns and
// returns the allocation. With dataChanged set, natural widths are re-measured
// when the mode needs them or ColumnsOnNewData is set. An overflow is logged
// as a CONSTRAINT_UNSATISFIABLE warning; the widths are still applied.
func (d *Driver) Layout(dataChanged bool) Allocation {
	start := time.Now()
	observability.Layout().OnLayoutStart(string(d.mode), len(d.columns))

	if dataChanged && (d.mode.Measures() || d.opts.ColumnsOnNewData) {
		d.measured = false
	}
	if !d.measured {
		d.measure()
	}

	available := d.Available()
	key := d.key(available)
	alloc, ok := d.memo.Get(key)
	if !ok {
		alloc = Compute(d.mode, d.columns, available)
		d.memo.Set(key, alloc)
	}
	alloc = alloc.clone()

	for i, c := range d.columns {
		c.Current = alloc.Widths[i]
	}
	if err := alloc.Err(); err != nil {
		d.logger.Warn(err.Error(), "code", errors.ErrCodeConstraintUnsatisfiable, "mode", d.mode)
	}

	observability.Layout().OnLayoutComplete(string(d.mode), len(d.columns), alloc.Slack, time.Since(start))
	return alloc
}

func (d *Driver) measure() {
	if d.mode.Measures() || d.opts.ColumnsOnNewData {
		for _, c := range d.columns {
			if c.UserSized {
				continue
			}
			c.Natural = d.measurer.Measure(c, d.rows)
		}
	}
	d.measured = true
}

// key identifies an allocation by everything Compute reads.
func (d *Driver) key(available int) string {
	type sig struct {
		W, P, Min, Max, Grow, Shrink, Natural int
		Hidden                                bool
	}
	sigs := make([]sig, len(d.columns))
	for i, c := range d.columns {
		p := 0
		if c.Width.Percent {
			p = 1
		}
		sigs[i] = sig{c.Width.Value, p, c.MinWidth, c.MaxWidth, c.Grow, c.Shrink, c.Natural, c.Hidden}
	}
	return cache.HashKey("layout", string(d.mode), available, sigs)
}
