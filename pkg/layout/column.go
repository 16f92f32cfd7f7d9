package layout

import (
	"strconv"
	"strings"

	"github.com/matzehuels/gridkit/pkg/errors"
)

// Width is a declared column width: a pixel value or a percentage of the
// viewport. The zero value declares no width, which makes a column flexible.
type Width struct {
	Value   int
	Percent bool
}

// Px returns a pixel width.
func Px(v int) Width { return Width{Value: v} }

// Percent returns a width relative to the viewport.
func Percent(v int) Width { return Width{Value: v, Percent: true} }

// ParseWidth parses "150", "150px" or "25%". The empty string yields the zero
// Width. Negative or malformed values are INVALID_WIDTH errors.
func ParseWidth(s string) (Width, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Width{}, nil
	}

	var w Width
	switch {
	case strings.HasSuffix(s, "%"):
		w.Percent = true
		s = strings.TrimSuffix(s, "%")
	case strings.HasSuffix(strings.ToLower(s), "px"):
		s = s[:len(s)-2]
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Width{}, errors.Wrap(errors.ErrCodeInvalidWidth, err, "invalid width %q", s)
	}
	if v < 0 {
		return Width{}, errors.New(errors.ErrCodeInvalidWidth, "width cannot be negative: %q", s)
	}
	w.Value = int(v)
	return w, nil
}

// IsZero reports whether no width is declared.
func (w Width) IsZero() bool { return w.Value == 0 }

// Resolve returns the width in pixels for a viewport of the given width.
// Percentages are floored.
func (w Width) Resolve(total int) int {
	if w.Percent {
		return total * w.Value / 100
	}
	return w.Value
}

// String formats the width the way ParseWidth reads it.
func (w Width) String() string {
	if w.IsZero() {
		return ""
	}
	if w.Percent {
		return strconv.Itoa(w.Value) + "%"
	}
	return strconv.Itoa(w.Value) + "px"
}

// MarshalText implements encoding.TextMarshaler.
func (w Width) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Width) UnmarshalText(text []byte) error {
	parsed, err := ParseWidth(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Column is the sizing state of one table column. Declarative fields are set
// by the caller; Natural and Current are maintained by the Driver.
type Column struct {
	Field string
	Title string

	Width    Width // Declared width; zero makes the column flexible
	MinWidth int
	MaxWidth int // 0 means unbounded
	Grow     int // Growth weight of a flexible column, 0 is treated as 1
	Shrink   int // Shrink weight of a fixed column, 0 never shrinks

	Hidden    bool
	UserSized bool // Width set by the user; natural width is not re-measured

	Natural int // Measured content width
	Current int // Last applied width
}

func (c *Column) grow() int {
	if c.Grow <= 0 {
		return 1
	}
	return c.Grow
}

// bounds returns the effective [min, max] of the column. A maximum below the
// minimum is raised to it; max 0 stays unbounded.
func (c *Column) bounds() (lo, hi int) {
	lo = max(c.MinWidth, 0)
	hi = c.MaxWidth
	if hi > 0 && hi < lo {
		hi = lo
	}
	return lo, hi
}

func (c *Column) clamp(w int) int {
	lo, hi := c.bounds()
	if hi > 0 && w > hi {
		w = hi
	}
	return max(w, lo)
}
