package grouping

import "strings"

// Row is a single record held by the tree.
//
// The zero value is usable, but rows are normally created with [NewRow].
// A Row belongs to at most one leaf node at a time; [Row.Group] reports it.
type Row struct {
	ID   string         // Caller-assigned identity, not interpreted by the tree
	Data map[string]any // Field values, read and written through a Store

	group *Node
}

// NewRow creates a row with the given identity and data.
// A nil data map is replaced by an empty one.
func NewRow(id string, data map[string]any) *Row {
	if data == nil {
		data = make(map[string]any)
	}
	return &Row{ID: id, Data: data}
}

// Group returns the leaf node that currently owns the row, or nil when the row
// is not grouped (not yet assigned, removed, or dropped by a restricted key set).
func (r *Row) Group() *Node { return r.group }

// Store is the record-store facade used to read grouping keys and to conform
// record data when a row is moved into a different group.
type Store interface {
	// Value returns the value of field for r, or nil if absent.
	Value(r *Row, field string) any

	// Update writes the given field values into r.
	Update(r *Row, values map[string]any)
}

// MapStore is the default Store. It reads and writes Row.Data directly.
// Field names containing dots address nested maps: "address.city" reads
// Data["address"].(map[string]any)["city"].
type MapStore struct{}

// Value implements Store.
func (MapStore) Value(r *Row, field string) any {
	if r == nil || r.Data == nil {
		return nil
	}
	if v, ok := r.Data[field]; ok || !strings.Contains(field, ".") {
		return v
	}

	var cur any = r.Data
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// Update implements Store. Missing intermediate maps are created.
func (MapStore) Update(r *Row, values map[string]any) {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	for field, v := range values {
		parts := strings.Split(field, ".")
		m := r.Data
		for _, part := range parts[:len(parts)-1] {
			next, ok := m[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				m[part] = next
			}
			m = next
		}
		m[parts[len(parts)-1]] = v
	}
}

var _ Store = MapStore{}
