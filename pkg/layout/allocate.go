package layout

import (
	"slices"

	"github.com/matzehuels/gridkit/pkg/errors"
)

// Allocation is the result of a width distribution pass.
type Allocation struct {
	Widths []int // Per column, parallel to the input; hidden columns get 0
	Total  int   // Sum of Widths
	Slack  int   // Available width minus Total; negative on overflow
}

// Err returns a *errors.ConstraintError when the columns overflow the
// available width, and nil otherwise.
func (a Allocation) Err() error {
	if a.Slack >= 0 {
		return nil
	}
	return &errors.ConstraintError{Available: a.Total + a.Slack, Required: a.Total}
}

func (a Allocation) clone() Allocation {
	a.Widths = slices.Clone(a.Widths)
	return a
}

func finish(widths []int, available int) Allocation {
	total := 0
	for _, w := range widths {
		total += w
	}
	return Allocation{Widths: widths, Total: total, Slack: available - total}
}

// Compute distributes available pixels across cols according to mode.
// Unknown modes are sized like FitData.
func Compute(mode Mode, cols []*Column, available int) Allocation {
	available = max(available, 0)
	switch mode {
	case FitColumns:
		return FitColumnWidths(cols, available)
	case FitDataStretch:
		return FitDataStretchWidths(cols, available)
	default:
		return FitDataWidths(cols, available)
	}
}

// FitDataWidths sizes every visible column to its declared width or, without
// one, to its natural width, clamped to its bounds.
func FitDataWidths(cols []*Column, available int) Allocation {
	widths := make([]int, len(cols))
	for i, c := range cols {
		if c.Hidden {
			continue
		}
		w := c.Natural
		if !c.Width.IsZero() {
			w = c.Width.Resolve(available)
		}
		widths[i] = c.clamp(w)
	}
	return finish(widths, available)
}

// FitDataStretchWidths sizes columns like FitDataWidths and then grows the
// last visible column into the remaining space. The column never drops below
// its fit-data width.
func FitDataStretchWidths(cols []*Column, available int) Allocation {
	alloc := FitDataWidths(cols, available)
	last := -1
	for i, c := range cols {
		if !c.Hidden {
			last = i
		}
	}
	if last < 0 {
		return alloc
	}

	widths := alloc.Widths
	gap := available - (alloc.Total - widths[last])
	if gap > widths[last] {
		widths[last] = cols[last].clamp(gap)
	}
	return finish(widths, available)
}

// FitColumnWidths fills the available width with the visible columns. See the
// package documentation for the algorithm.
func FitColumnWidths(cols []*Column, available int) Allocation {
	widths := make([]int, len(cols))

	var flex, shrink []slot
	fixed := 0
	for i, c := range cols {
		if c.Hidden {
			continue
		}
		lo, hi := c.bounds()
		if c.Width.IsZero() {
			flex = append(flex, slot{idx: i, min: lo, max: hi, weight: c.grow()})
			continue
		}
		w := c.clamp(c.Width.Resolve(available))
		widths[i] = w
		fixed += w
		if c.Shrink > 0 {
			shrink = append(shrink, slot{idx: i, base: w, min: lo, max: hi, weight: c.Shrink})
		}
	}

	rest := available - fixed
	if len(flex) > 0 {
		rest = distribute(flex, rest, widths)
	}
	if rest != 0 && len(shrink) > 0 {
		distribute(shrink, rest, widths)
	}
	return finish(widths, available)
}

// slot is one column taking part in a distribution pass.
type slot struct {
	idx    int // Index into the widths slice
	base   int // Width before the pass
	min    int
	max    int // 0 means unbounded
	weight int
}

// distribute spreads delta pixels across slots in proportion to their weights,
// starting from each slot's base width, and writes the results into widths.
// Slots whose share would leave their bounds are clamped and frozen, and the
// shares of the remaining slots are recomputed; when both directions are
// violated, the direction with the larger total violation is frozen first.
// The integer remainder goes to the last unfrozen slot. It returns the part of
// delta that could not be absorbed.
func distribute(slots []slot, delta int, widths []int) int {
	active := make([]slot, len(slots))
	copy(active, slots)
	remaining := delta

	for len(active) > 0 {
		units := 0
		for _, s := range active {
			units += s.weight
		}

		// Violations are compared exactly, scaled by units, so that a
		// share is only clamped when its fractional value leaves the bounds.
		var under, over int
		for _, s := range active {
			share := remaining * s.weight
			if lo := (s.min - s.base) * units; share < lo {
				under += lo - share
			} else if s.max > 0 {
				if hi := (s.max - s.base) * units; share > hi {
					over += share - hi
				}
			}
		}

		if under == 0 && over == 0 {
			unit := remaining / units
			for _, s := range active {
				widths[s.idx] = s.base + unit*s.weight
			}
			return settle(active, remaining-unit*units, widths)
		}

		next := active[:0]
		for _, s := range active {
			share := remaining * s.weight
			switch {
			case share < (s.min-s.base)*units && under >= over:
				widths[s.idx] = s.min
				remaining -= s.min - s.base
			case s.max > 0 && share > (s.max-s.base)*units && over >= under:
				widths[s.idx] = s.max
				remaining -= s.max - s.base
			default:
				next = append(next, s)
			}
		}
		active = next
	}
	return remaining
}

// settle hands out the rounding remainder of a distribution pass. Floored
// shares can sit below a slot's minimum, so those are topped up first; the
// rest goes to the last slot, walking backwards past slots at their bounds.
func settle(active []slot, rem int, widths []int) int {
	if rem > 0 {
		for _, s := range active {
			if short := s.min - widths[s.idx]; short > 0 {
				give := min(short, rem)
				widths[s.idx] += give
				rem -= give
			}
		}
	}
	for i := len(active) - 1; i >= 0 && rem != 0; i-- {
		s := active[i]
		w := widths[s.idx]
		if rem > 0 {
			room := rem
			if s.max > 0 {
				room = min(rem, s.max-w)
			}
			if room > 0 {
				widths[s.idx] += room
				rem -= room
			}
			continue
		}
		if room := w - s.min; room > 0 {
			take := min(-rem, room)
			widths[s.idx] -= take
			rem += take
		}
	}
	return rem
}
