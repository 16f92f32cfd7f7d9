package grouping

// Predicate decides whether a group starts open. It receives the group key, the
// number of rows in the group and the rows themselves.
type Predicate func(key any, count int, rows []*Row) bool

// Visibility is the open/closed state of a group: either a fixed value or a
// predicate evaluated lazily at flatten time.
//
// The zero value is a fixed, closed state.
type Visibility struct {
	open bool
	pred Predicate
}

// Fixed returns a visibility that is always open or always closed.
func Fixed(open bool) Visibility {
	return Visibility{open: open}
}

// Computed returns a visibility resolved by p the next time the group is
// flattened. A nil predicate yields a fixed, open state.
func Computed(p Predicate) Visibility {
	if p == nil {
		return Fixed(true)
	}
	return Visibility{pred: p}
}

// IsComputed reports whether the state is still an unresolved predicate.
func (v Visibility) IsComputed() bool { return v.pred != nil }

// IsOpen reports the fixed state. It is false for unresolved predicates.
func (v Visibility) IsOpen() bool { return v.pred == nil && v.open }

// resolve evaluates a computed state into a fixed one. Fixed states are returned
// unchanged and rows is never called.
func (v Visibility) resolve(key any, count int, rows func() []*Row) Visibility {
	if v.pred == nil {
		return v
	}
	return Fixed(v.pred(key, count, rows()))
}
