package feature

import (
	"encoding/json"
	"slices"

	"gopkg.in/yaml.v3"
)

// Row is an ordered set of named feature values.
type Row struct {
	columns []string
	values  []float64
}

// Value is a single named entry of a Row.
type Value struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// NewRow pairs columns with values. Both slices are copied.
func NewRow(columns []string, values []float64) Row {
	if len(columns) != len(values) {
		panic("feature: columns and values length mismatch")
	}
	return Row{columns: slices.Clone(columns), values: slices.Clone(values)}
}

func (r Row) Len() int {
	return len(r.columns)
}

// Columns returns a copy of the column names in row order.
func (r Row) Columns() []string {
	return slices.Clone(r.columns)
}

// Values returns a copy of the values in row order.
func (r Row) Values() []float64 {
	return slices.Clone(r.values)
}

// Get returns the value of the named column.
func (r Row) Get(name string) (float64, bool) {
	i := slices.Index(r.columns, name)
	if i < 0 {
		return 0, false
	}
	return r.values[i], true
}

// With returns a copy of the row with the named column set to v.
// It reports false if the column is not in the row.
func (r Row) With(name string, v float64) (Row, bool) {
	i := slices.Index(r.columns, name)
	if i < 0 {
		return r, false
	}
	out := Row{columns: slices.Clone(r.columns), values: slices.Clone(r.values)}
	out.values[i] = v
	return out, true
}

// Entries returns the row as a list of name/value pairs.
func (r Row) Entries() []Value {
	list := make([]Value, len(r.columns))
	for i, c := range r.columns {
		list[i] = Value{Name: c, Value: r.values[i]}
	}
	return list
}

func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Entries())
}

func (r Row) MarshalYAML() (any, error) {
	return r.Entries(), nil
}

var _ yaml.Marshaler = Row{}

func (r *Row) add(name string, v float64) {
	r.columns = append(r.columns, name)
	r.values = append(r.values, v)
}
