package grouping

import "fmt"

// ItemKind identifies the kind of a display item.
type ItemKind int

const (
	KindHeader ItemKind = iota
	KindAggregateTop
	KindRow
	KindAggregateBottom
)

var kindNames = [...]string{"header", "aggregate-top", "row", "aggregate-bottom"}

// String returns the kind name used in serialized output.
func (k ItemKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("ItemKind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k ItemKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Item is one entry of the flattened display sequence.
//
// Headers carry Group and Header; aggregate items carry Group and Aggregate;
// row items carry Row and, when grouping is enabled, the owning Group.
type Item struct {
	Kind      ItemKind
	Level     int
	Group     *Node
	Row       *Row
	Header    string
	Aggregate any
}

// GroupedEntry is one entry of the grouped-data export: either a group
// header or a record.
type GroupedEntry struct {
	Header   bool           `json:"header,omitempty"`
	Level    int            `json:"level"`
	Key      any            `json:"key,omitempty"`
	Content  string         `json:"content,omitempty"`
	RowCount int            `json:"rowCount,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
