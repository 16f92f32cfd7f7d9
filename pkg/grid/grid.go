// Package grid is the host-facing facade over the grouping and layout cores.
//
// An [Engine] owns one grouped record set and one column set. Hosts (the CLI,
// the interactive browser and the HTTP API) drive it with record mutations and
// viewport changes and read back the display sequence and column widths:
//
//	engine, err := grid.New(grouping.Config{
//	    Levels: []grouping.Level{grouping.ByField("dept")},
//	}, grid.Options{Mode: layout.FitColumns, Width: 120})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine.Load(rows)
//	for _, item := range engine.DisplaySequence() {
//	    ...
//	}
//	alloc := engine.Layout()
//
// Record mutations are addressed by row ID so that hosts need not keep row
// pointers around:
//
//	engine.NotifyRecordUpdated("42", map[string]any{"dept": "Ops"})
//	engine.NotifyRecordMoved("42", "17", true)
//
// # Concurrency
//
// An Engine is single-writer, like the cores it wraps. Hosts that serve
// concurrent callers must serialise access themselves.
package grid

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridkit/pkg/errors"
	"github.com/matzehuels/gridkit/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and TUI
// =============================================================================

const (
	// DefaultWidth is the viewport width used when none is given. Hosts render
	// to terminals, so widths are in cells.
	DefaultWidth = 100

	// DefaultMode is the default layout mode.
	DefaultMode = layout.FitData
)

// =============================================================================
// Options - Engine Configuration
// =============================================================================

// Options contains the layout-side configuration of an Engine.
// This struct supports JSON serialization for API requests.
type Options struct {
	Mode             layout.Mode `json:"mode,omitempty"`
	Width            int         `json:"width,omitempty"`
	ScrollbarWidth   int         `json:"scrollbar_width,omitempty"`
	ColumnsOnNewData bool        `json:"columns_on_new_data,omitempty"`

	// Runtime options (not serialized)
	Columns  []*layout.Column `json:"-"`
	Logger   *log.Logger      `json:"-"`
	Measurer layout.Measurer  `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	mode, err := layout.ParseMode(string(o.Mode))
	if err != nil {
		return err
	}
	o.Mode = mode
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if err := errors.ValidateWidth(o.Width); err != nil {
		return err
	}
	if err := errors.ValidateWidth(o.ScrollbarWidth); err != nil {
		return err
	}
	for _, c := range o.Columns {
		if c.Field == "" {
			continue
		}
		if err := errors.ValidateFieldName(c.Field); err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, err, "column %q", c.Title)
		}
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	o.validated = true
	return nil
}

// Stats summarises the state of an Engine.
type Stats struct {
	Rows    int `json:"rows"`
	Grouped int `json:"grouped"`
	Groups  int `json:"groups"`
	Levels  int `json:"levels"`
	Items   int `json:"items"`
}
