package features

import (
	"fmt"
	"strconv"
)

// Row is a single named-column record in the order the pipeline was trained
// on. Values are float64 for numeric columns and string for categoricals.
type Row struct {
	columns []string
	values  map[string]interface{}
}

func NewRow() Row {
	return Row{values: make(map[string]interface{})}
}

// Set appends a column or overwrites an existing one in place.
func (r *Row) Set(name string, value interface{}) {
	if r.values == nil {
		r.values = make(map[string]interface{})
	}
	if _, ok := r.values[name]; !ok {
		r.columns = append(r.columns, name)
	}
	r.values[name] = value
}

// Rename keeps the column position. Renaming a missing column is a no-op.
func (r *Row) Rename(from, to string) {
	value, ok := r.values[from]
	if !ok || from == to {
		return
	}
	for i, c := range r.columns {
		if c == from {
			r.columns[i] = to
		}
	}
	delete(r.values, from)
	r.values[to] = value
}

func (r Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

func (r Row) Len() int {
	return len(r.columns)
}

func (r Row) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

func (r Row) Value(name string) (interface{}, bool) {
	v, ok := r.values[name]
	return v, ok
}

func (r Row) Float(name string) (float64, error) {
	v, ok := r.values[name]
	if !ok {
		return 0, fmt.Errorf("missing feature %s", name)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("feature %s: %w", name, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("feature %s: unsupported type %T", name, v)
	}
}

func (r Row) String(name string) (string, error) {
	v, ok := r.values[name]
	if !ok {
		return "", fmt.Errorf("missing feature %s", name)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// Map copies the row into a plain map, e.g. for audit payloads.
func (r Row) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
