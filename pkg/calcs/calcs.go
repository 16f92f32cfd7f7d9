// Package calcs provides a [grouping.Aggregator] computing per-field column
// calculations (count, sum, avg, min, max) for group header and footer rows.
//
// Each [Calc] names a field, a function and a position. The aggregate value
// for a position is a map from field to result, so it can be rendered as an
// ordinary data row:
//
//	agg, err := calcs.New(nil,
//	    calcs.Calc{Field: "salary", Func: calcs.Sum, Position: grouping.Bottom},
//	    calcs.Calc{Field: "name", Func: calcs.Count, Position: grouping.Top},
//	)
//
// Numeric functions skip values that do not parse as numbers. A field with no
// numeric values yields nil for sum, avg, min and max.
package calcs

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/gridkit/pkg/errors"
	"github.com/matzehuels/gridkit/pkg/grouping"
)

// Func names a calculation.
type Func string

// Supported calculations.
const (
	Count Func = "count"
	Sum   Func = "sum"
	Avg   Func = "avg"
	Min   Func = "min"
	Max   Func = "max"
)

// DefaultPrecision is the number of decimals avg results are rounded to.
const DefaultPrecision = 2

// ParseFunc parses a calculation name, case-insensitively.
func ParseFunc(s string) (Func, error) {
	switch f := Func(strings.ToLower(strings.TrimSpace(s))); f {
	case Count, Sum, Avg, Min, Max:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeConfiguration, "unknown calculation %q", s)
}

// ParsePosition parses "top" or "bottom".
func ParsePosition(s string) (grouping.Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return grouping.Top, nil
	case "", "bottom":
		return grouping.Bottom, nil
	}
	return grouping.Bottom, errors.New(errors.ErrCodeConfiguration, "unknown calculation position %q", s)
}

// Calc is one column calculation.
type Calc struct {
	Field    string
	Func     Func
	Position grouping.Position
}

// Aggregator computes the configured calculations over a group's rows.
type Aggregator struct {
	calcs     []Calc
	store     grouping.Store
	Precision int
}

// New creates an aggregator. A nil store reads fields with [grouping.MapStore].
func New(store grouping.Store, calcs ...Calc) (*Aggregator, error) {
	for _, c := range calcs {
		if err := errors.ValidateFieldName(c.Field); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "calculation %s", c.Func)
		}
		if _, err := ParseFunc(string(c.Func)); err != nil {
			return nil, err
		}
	}
	if store == nil {
		store = grouping.MapStore{}
	}
	return &Aggregator{calcs: calcs, store: store, Precision: DefaultPrecision}, nil
}

// Calcs returns the configured calculations.
func (a *Aggregator) Calcs() []Calc { return a.calcs }

// HasTop reports whether any calculation sits in the group header.
func (a *Aggregator) HasTop() bool { return a.has(grouping.Top) }

// HasBottom reports whether any calculation sits in the group footer.
func (a *Aggregator) HasBottom() bool { return a.has(grouping.Bottom) }

func (a *Aggregator) has(pos grouping.Position) bool {
	for _, c := range a.calcs {
		if c.Position == pos {
			return true
		}
	}
	return false
}

// Compute returns the results for pos as a field-to-value map.
func (a *Aggregator) Compute(pos grouping.Position, rows []*grouping.Row) any {
	out := make(map[string]any)
	for _, c := range a.calcs {
		if c.Position != pos {
			continue
		}
		values := make([]any, len(rows))
		for i, r := range rows {
			values[i] = a.store.Value(r, c.Field)
		}
		out[c.Field] = a.apply(c.Func, values)
	}
	return out
}

func (a *Aggregator) apply(fn Func, values []any) any {
	if fn == Count {
		n := 0
		for _, v := range values {
			if v != nil && v != "" {
				n++
			}
		}
		return n
	}

	nums := numbers(values)
	if len(nums) == 0 {
		return nil
	}
	switch fn {
	case Sum:
		return sum(nums)
	case Avg:
		return round(sum(nums)/float64(len(nums)), a.Precision)
	case Min:
		m := nums[0]
		for _, n := range nums[1:] {
			m = math.Min(m, n)
		}
		return m
	case Max:
		m := nums[0]
		for _, n := range nums[1:] {
			m = math.Max(m, n)
		}
		return m
	}
	return nil
}

func sum(nums []float64) float64 {
	var s float64
	for _, n := range nums {
		s += n
	}
	return s
}

func round(v float64, precision int) float64 {
	if precision < 0 {
		return v
	}
	p := math.Pow10(precision)
	return math.Round(v*p) / p
}

func numbers(values []any) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := toFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}
