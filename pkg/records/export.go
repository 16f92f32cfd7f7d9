package records

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/gridkit/pkg/grouping"
)

// WriteGrouped encodes grouped entries as JSON and writes them to w.
func WriteGrouped(entries []grouping.GroupedEntry, w io.Writer) error {
	if entries == nil {
		entries = []grouping.GroupedEntry{}
	}
	return encode(entries, w)
}

// WriteRows encodes the data of rows as a JSON array and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteRows(rows []*grouping.Row, w io.Writer) error {
	data := make([]map[string]any, len(rows))
	for i, r := range rows {
		data[i] = r.Data
	}
	return encode(data, w)
}

// ExportGrouped writes grouped entries to a JSON file at path.
func ExportGrouped(entries []grouping.GroupedEntry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGrouped(entries, f)
}

func encode(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
