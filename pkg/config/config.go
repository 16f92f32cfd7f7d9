// Package config loads gridkit settings from TOML files.
//
// A config file has four parts:
//
//	[grouping]
//	by = ["dept", "team"]
//	start_open = [true, false]
//	headers = ["{key} ({count})"]
//	values = [["Eng", "Ops"]]
//	retain_empty = false
//	closed_show_calcs = false
//
//	[layout]
//	mode = "fitColumns"
//	width = 120
//	scrollbar = 1
//
//	[[columns]]
//	field = "name"
//	width = "30%"
//	min_width = 10
//
//	[[aggregates]]
//	field = "salary"
//	func = "sum"
//	position = "bottom"
//
// Defaults live in [Default]; command-line flags override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gridkit/pkg/calcs"
	"github.com/matzehuels/gridkit/pkg/errors"
	"github.com/matzehuels/gridkit/pkg/grid"
	"github.com/matzehuels/gridkit/pkg/grouping"
	"github.com/matzehuels/gridkit/pkg/layout"
)

// FileName is the config file looked up in the working directory.
const FileName = "gridkit.toml"

// Config represents a gridkit.toml file.
type Config struct {
	Grouping   GroupingConfig    `toml:"grouping"`
	Layout     LayoutConfig      `toml:"layout"`
	Columns    []ColumnConfig    `toml:"columns"`
	Aggregates []AggregateConfig `toml:"aggregates"`
}

// GroupingConfig holds the [grouping] table.
type GroupingConfig struct {
	By              []string `toml:"by"`
	StartOpen       []bool   `toml:"start_open"`
	OpenBelow       int      `toml:"open_below"` // groups with fewer rows start open; overrides start_open
	Headers         []string `toml:"headers"`
	Values          [][]any  `toml:"values"`
	RetainEmpty     bool     `toml:"retain_empty"`
	ClosedShowCalcs bool     `toml:"closed_show_calcs"`
}

// LayoutConfig holds the [layout] table.
type LayoutConfig struct {
	Mode             string `toml:"mode"`
	Width            int    `toml:"width"`
	Scrollbar        int    `toml:"scrollbar"`
	ColumnsOnNewData bool   `toml:"columns_on_new_data"`
}

// ColumnConfig is one [[columns]] entry.
type ColumnConfig struct {
	Field    string `toml:"field"`
	Title    string `toml:"title,omitempty"`
	Width    string `toml:"width,omitempty"`
	MinWidth int    `toml:"min_width,omitempty"`
	MaxWidth int    `toml:"max_width,omitempty"`
	Grow     int    `toml:"grow,omitempty"`
	Shrink   int    `toml:"shrink,omitempty"`
	Hidden   bool   `toml:"hidden,omitempty"`
}

// AggregateConfig is one [[aggregates]] entry.
type AggregateConfig struct {
	Field    string `toml:"field"`
	Func     string `toml:"func"`
	Position string `toml:"position,omitempty"`
}

// Default returns a config with default values.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Mode:  string(grid.DefaultMode),
			Width: grid.DefaultWidth,
		},
	}
}

// Load reads the config file at path on top of the defaults.
func Load(path string) (*Config, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "parse %s", filepath.Base(path))
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes config text on top of the defaults.
func Parse(text string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "parse config")
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return errors.New(errors.ErrCodeConfiguration, "unknown config keys: %s", strings.Join(names, ", "))
}

// Save writes the config to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

// Validate checks the config without building anything.
func (c *Config) Validate() error {
	if _, err := c.GroupingConfig(); err != nil {
		return err
	}
	if _, err := c.LayoutColumns(); err != nil {
		return err
	}
	if _, err := c.Aggregator(); err != nil {
		return err
	}
	opts := c.GridOptions()
	return opts.ValidateAndSetDefaults()
}

// =============================================================================
// Conversion
// =============================================================================

// GroupingConfig builds the grouping configuration. The aggregator is attached
// when any [[aggregates]] entry is present.
func (c *Config) GroupingConfig() (grouping.Config, error) {
	g := c.Grouping
	if len(g.StartOpen) > len(g.By) {
		return grouping.Config{}, errors.New(errors.ErrCodeConfiguration,
			"start_open has %d entries for %d levels", len(g.StartOpen), len(g.By))
	}
	if g.OpenBelow < 0 {
		return grouping.Config{}, errors.New(errors.ErrCodeConfiguration, "open_below cannot be negative")
	}

	cfg := grouping.Config{
		RetainEmpty:     g.RetainEmpty,
		ClosedShowCalcs: g.ClosedShowCalcs,
		Values:          g.Values,
	}
	for _, field := range g.By {
		if err := errors.ValidateFieldName(field); err != nil {
			return grouping.Config{}, errors.Wrap(errors.ErrCodeConfiguration, err, "grouping.by")
		}
		cfg.Levels = append(cfg.Levels, grouping.ByField(field))
	}
	switch {
	case g.OpenBelow > 0:
		cfg.StartOpen = []grouping.Visibility{grouping.Computed(OpenBelow(g.OpenBelow))}
	default:
		for _, open := range g.StartOpen {
			cfg.StartOpen = append(cfg.StartOpen, grouping.Fixed(open))
		}
	}
	for _, tmpl := range g.Headers {
		cfg.Headers = append(cfg.Headers, HeaderTemplate(tmpl))
	}

	agg, err := c.Aggregator()
	if err != nil {
		return grouping.Config{}, err
	}
	if agg != nil {
		cfg.Aggregator = agg
	}
	return cfg, nil
}

// OpenBelow returns a predicate opening groups with fewer than n rows.
func OpenBelow(n int) grouping.Predicate {
	return func(_ any, count int, _ []*grouping.Row) bool { return count < n }
}

// HeaderTemplate returns a header renderer substituting {key} and {count}.
// A nil key renders as an empty string.
func HeaderTemplate(tmpl string) grouping.HeaderFunc {
	return func(key any, count int, _ []*grouping.Row) string {
		k := ""
		if key != nil {
			k = fmt.Sprint(key)
		}
		return strings.NewReplacer("{key}", k, "{count}", strconv.Itoa(count)).Replace(tmpl)
	}
}

// Aggregator builds the column calculations, or nil when none are configured.
func (c *Config) Aggregator() (*calcs.Aggregator, error) {
	if len(c.Aggregates) == 0 {
		return nil, nil
	}
	list := make([]calcs.Calc, 0, len(c.Aggregates))
	for _, a := range c.Aggregates {
		fn, err := calcs.ParseFunc(a.Func)
		if err != nil {
			return nil, err
		}
		pos, err := calcs.ParsePosition(a.Position)
		if err != nil {
			return nil, err
		}
		list = append(list, calcs.Calc{Field: a.Field, Func: fn, Position: pos})
	}
	return calcs.New(nil, list...)
}

// LayoutColumns builds the managed columns.
func (c *Config) LayoutColumns() ([]*layout.Column, error) {
	cols := make([]*layout.Column, 0, len(c.Columns))
	seen := make(map[string]bool, len(c.Columns))
	for i, cc := range c.Columns {
		if err := errors.ValidateFieldName(cc.Field); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "columns[%d]", i)
		}
		if seen[cc.Field] {
			return nil, errors.New(errors.ErrCodeConfiguration, "duplicate column %q", cc.Field)
		}
		seen[cc.Field] = true

		w, err := layout.ParseWidth(cc.Width)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "column %q", cc.Field)
		}
		if cc.MinWidth < 0 || cc.MaxWidth < 0 || cc.Grow < 0 || cc.Shrink < 0 {
			return nil, errors.New(errors.ErrCodeConfiguration, "column %q has a negative size setting", cc.Field)
		}
		title := cc.Title
		if title == "" {
			title = cc.Field
		}
		cols = append(cols, &layout.Column{
			Field:     cc.Field,
			Title:     title,
			Width:     w,
			MinWidth:  cc.MinWidth,
			MaxWidth:  cc.MaxWidth,
			Grow:      cc.Grow,
			Shrink:    cc.Shrink,
			Hidden:    cc.Hidden,
			UserSized: !w.IsZero(),
		})
	}
	return cols, nil
}

// GridOptions builds the engine options. Columns are left empty; callers
// attach the result of LayoutColumns or inferred columns.
func (c *Config) GridOptions() grid.Options {
	return grid.Options{
		Mode:             layout.Mode(c.Layout.Mode),
		Width:            c.Layout.Width,
		ScrollbarWidth:   c.Layout.Scrollbar,
		ColumnsOnNewData: c.Layout.ColumnsOnNewData,
	}
}

// InferColumns returns one flexible column per top-level field, skipping fields
// in exclude. Fields appear in row order, sorted by name within a row.
func InferColumns(rows []*grouping.Row, exclude ...string) []*layout.Column {
	var cols []*layout.Column
	seen := make(map[string]bool)
	for _, r := range rows {
		keys := make([]string, 0, len(r.Data))
		for k := range r.Data {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if seen[k] || slices.Contains(exclude, k) {
				continue
			}
			seen[k] = true
			cols = append(cols, &layout.Column{Field: k, Title: k})
		}
	}
	return cols
}
