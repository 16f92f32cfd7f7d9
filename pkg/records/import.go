package records

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/gridkit/pkg/errors"
	"github.com/matzehuels/gridkit/pkg/grouping"
)

// DefaultIDField is the record field used as row ID.
const DefaultIDField = "id"

// Options controls how records are read.
type Options struct {
	// IDField names the field holding the row ID. Defaults to "id".
	IDField string
	// InferTypes converts numeric and boolean CSV cells.
	InferTypes bool
	// Comma is the CSV field separator. Defaults to ','.
	Comma rune
}

func (o Options) idField() string {
	if o.IDField == "" {
		return DefaultIDField
	}
	return o.IDField
}

// ReadJSON decodes a JSON array of objects from r into rows.
// ReadJSON does not close r.
func ReadJSON(r io.Reader, opts Options) ([]*grouping.Row, error) {
	var data []map[string]any
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode records")
	}
	return toRows(data, opts)
}

// ReadCSV decodes CSV with a header line from r into rows.
// ReadCSV does not close r.
func ReadCSV(r io.Reader, opts Options) ([]*grouping.Row, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read csv header")
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		if header[i] == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "csv column %d has an empty name", i+1)
		}
	}

	var data []map[string]any
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read csv line %d", line)
		}
		d := make(map[string]any, len(header))
		for i, cell := range rec {
			if opts.InferTypes {
				d[header[i]] = infer(cell)
			} else {
				d[header[i]] = cell
			}
		}
		data = append(data, d)
	}
	return toRows(data, opts)
}

// Import reads the file at path. Files ending in .csv or .tsv are read as
// CSV (tab separated for .tsv); everything else as JSON.
func Import(path string, opts Options) ([]*grouping.Row, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "records file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f, opts)
	case ".tsv":
		if opts.Comma == 0 {
			opts.Comma = '\t'
		}
		return ReadCSV(f, opts)
	default:
		return ReadJSON(f, opts)
	}
}

func toRows(data []map[string]any, opts Options) ([]*grouping.Row, error) {
	field := opts.idField()
	rows := make([]*grouping.Row, 0, len(data))
	seen := make(map[string]int, len(data))
	for i, d := range data {
		if d == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "record %d is null", i)
		}
		r := NewRow(d, field)
		if prev, dup := seen[r.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "records %d and %d share id %q", prev, i, r.ID)
		}
		seen[r.ID] = i
		rows = append(rows, r)
	}
	return rows, nil
}

// NewRow wraps one record. The value of idField becomes the row ID; records
// without one get a random UUID.
func NewRow(data map[string]any, idField string) *grouping.Row {
	if idField == "" {
		idField = DefaultIDField
	}
	id := idOf(data[idField])
	if id == "" {
		id = uuid.NewString()
	}
	return grouping.NewRow(id, data)
}

func idOf(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

func infer(cell string) any {
	s := strings.TrimSpace(cell)
	if s == "" {
		return ""
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "nN") {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil && len(s) > 1 {
		return b
	}
	return cell
}
