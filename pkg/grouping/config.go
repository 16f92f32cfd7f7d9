package grouping

import (
	"fmt"
	"math"
	"reflect"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridkit/pkg/errors"
)

// KeyFunc derives a group key from a row.
type KeyFunc func(r *Row) any

// HeaderFunc renders the header text of a group from its key, its row count
// and its rows (all descendant rows for non-leaf groups).
type HeaderFunc func(key any, count int, rows []*Row) string

// Level describes how records are keyed at one nesting depth.
// Exactly one of Field and Func must be set.
type Level struct {
	Field string  // Field read through the Store
	Func  KeyFunc // Arbitrary key derivation
}

// ByField returns a level keyed by the value of field.
func ByField(field string) Level { return Level{Field: field} }

// ByFunc returns a level keyed by fn. Rows cannot be conformed into groups of
// such a level, so moves across its groups are rejected.
func ByFunc(fn KeyFunc) Level { return Level{Func: fn} }

// Position selects one of the two aggregate rows around a group's records.
type Position int

const (
	Top Position = iota
	Bottom
)

// String returns "top" or "bottom".
func (p Position) String() string {
	if p == Top {
		return "top"
	}
	return "bottom"
}

// Aggregator computes the summary rows emitted around the records of a leaf group.
type Aggregator interface {
	// HasTop reports whether a summary row precedes the records.
	HasTop() bool
	// HasBottom reports whether a summary row follows the records.
	HasBottom() bool
	// Compute summarises rows for the given position.
	Compute(pos Position, rows []*Row) any
}

type noAggregates struct{}

func (noAggregates) HasTop() bool                 { return false }
func (noAggregates) HasBottom() bool              { return false }
func (noAggregates) Compute(Position, []*Row) any { return nil }

// Config configures a Tree.
type Config struct {
	// Levels lists the grouping levels, outermost first. An empty list disables
	// grouping: Flatten then returns the rows in source order.
	Levels []Level

	// StartOpen gives the initial visibility per level. Levels beyond the end of
	// the list use StartOpen[0]; an empty list means every group starts open.
	StartOpen []Visibility

	// Headers gives the header generator per level. Levels beyond the end of the
	// list use Headers[0] and a warning is logged; an empty list uses DefaultHeader.
	Headers []HeaderFunc

	// Values optionally restricts the permissible keys per level. A nil entry
	// leaves its level unrestricted. Restricted groups are created eagerly in the
	// listed order and are retained when empty.
	Values [][]any

	// RetainEmpty keeps groups that lose their last row.
	RetainEmpty bool

	// ClosedShowCalcs emits aggregate rows for closed leaf groups.
	ClosedShowCalcs bool

	// Store reads and writes record fields. Defaults to MapStore.
	Store Store

	// Aggregator computes summary rows. Defaults to none.
	Aggregator Aggregator

	// Logger receives warnings and debug output. Defaults to log.Default().
	Logger *log.Logger

	// OnChange is called whenever the display sequence changes.
	OnChange func()

	// OnVisibilityChange is called after a group is shown, hidden or toggled.
	OnVisibilityChange func(n *Node, open bool)
}

// DefaultHeader renders "key (n item)" or "key (n items)".
func DefaultHeader(key any, count int, _ []*Row) string {
	noun := "items"
	if count == 1 {
		noun = "item"
	}
	if key == nil {
		return fmt.Sprintf("(%d %s)", count, noun)
	}
	return fmt.Sprintf("%v (%d %s)", key, count, noun)
}

// lookup is a compiled Level.
type lookup struct {
	field      string
	fn         KeyFunc
	values     []any
	restricted bool
}

// settings is a validated, defaulted Config.
type settings struct {
	cfg       Config
	levels    []lookup
	startOpen []Visibility
	headers   []HeaderFunc
	store     Store
	agg       Aggregator
	logger    *log.Logger
	warnings  []*errors.Error
}

// compile validates cfg and fills in defaults. Fatal problems are returned as
// CONFIGURATION errors; recoverable ones are collected as warnings.
func compile(cfg Config) (*settings, error) {
	s := &settings{
		cfg:       cfg,
		startOpen: cfg.StartOpen,
		store:     cfg.Store,
		agg:       cfg.Aggregator,
		logger:    cfg.Logger,
	}
	if s.store == nil {
		s.store = MapStore{}
	}
	if s.agg == nil {
		s.agg = noAggregates{}
	}
	if s.logger == nil {
		s.logger = log.Default()
	}

	for i, l := range cfg.Levels {
		switch {
		case l.Func != nil && l.Field != "":
			return nil, errors.New(errors.ErrCodeConfiguration,
				"level %d sets both a field (%q) and a key function", i, l.Field)
		case l.Func == nil && l.Field == "":
			return nil, errors.New(errors.ErrCodeConfiguration,
				"level %d has neither a field nor a key function", i)
		case l.Func == nil:
			if err := errors.ValidateFieldName(l.Field); err != nil {
				return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "level %d", i)
			}
		}
		lk := lookup{field: l.Field, fn: l.Func}
		if i < len(cfg.Values) && cfg.Values[i] != nil {
			lk.restricted = true
			seen := make(map[any]bool, len(cfg.Values[i]))
			for _, v := range cfg.Values[i] {
				k := normalizeKey(v)
				if seen[k] {
					continue
				}
				seen[k] = true
				lk.values = append(lk.values, k)
			}
		}
		s.levels = append(s.levels, lk)
	}

	if len(cfg.Values) > len(cfg.Levels) {
		s.warnings = append(s.warnings, errors.New(errors.ErrCodeConfiguration,
			"%d restricted key sets given for %d levels, extra sets ignored",
			len(cfg.Values), len(cfg.Levels)))
	}

	for _, h := range cfg.Headers {
		if h != nil {
			s.headers = cfg.Headers
			break
		}
	}
	if len(s.headers) > 0 && len(s.headers) < len(cfg.Levels) {
		s.warnings = append(s.warnings, errors.New(errors.ErrCodeConfiguration,
			"%d header generators given for %d levels, falling back to the first",
			len(s.headers), len(cfg.Levels)))
	}
	return s, nil
}

func (s *settings) header(level int) HeaderFunc {
	if level < len(s.headers) && s.headers[level] != nil {
		return s.headers[level]
	}
	if len(s.headers) > 0 && s.headers[0] != nil {
		return s.headers[0]
	}
	return DefaultHeader
}

func (s *settings) visibility(level int) Visibility {
	if level < len(s.startOpen) {
		return s.startOpen[level]
	}
	if len(s.startOpen) > 0 {
		return s.startOpen[0]
	}
	return Fixed(true)
}

func (s *settings) retain() bool {
	if s.cfg.RetainEmpty {
		return true
	}
	for _, l := range s.levels {
		if l.restricted {
			return true
		}
	}
	return false
}

func (s *settings) key(level int, r *Row) any {
	l := s.levels[level]
	if l.fn != nil {
		return normalizeKey(l.fn(r))
	}
	return normalizeKey(s.store.Value(r, l.field))
}

// normalizeKey makes v usable as a map key. Numbers of any kind fold into
// int64 when integral and float64 otherwise, so 2024 read from TOML, JSON and
// CSV lands in one group. Values of non-comparable types are replaced by their
// printed form, and NaN collapses to a single key.
func normalizeKey(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return float64(u)
		}
		return int64(u)
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		switch {
		case math.IsNaN(f):
			return "NaN"
		case f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64:
			return int64(f)
		}
		return f
	}
	if !rv.Type().Comparable() {
		return fmt.Sprint(v)
	}
	return v
}
