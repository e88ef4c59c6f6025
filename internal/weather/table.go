package weather

import (
	"bytes"
	"encoding/json"
)

// CityColumn identifies the source location of a record.
const CityColumn = "city"

// Record is one location's flattened data. Columns keep insertion order.
type Record struct {
	columns []string
	values  map[string]any
}

// NewRecord starts a record for the given city.
func NewRecord(city string) Record {
	r := Record{values: make(map[string]any)}
	r.Set(CityColumn, city)
	return r
}

// Set stores v under col. Setting an existing column replaces the value but
// keeps its position.
func (r *Record) Set(col string, v any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[col]; !ok {
		r.columns = append(r.columns, col)
	}
	r.values[col] = v
}

// Get returns the value stored under col.
func (r Record) Get(col string) (any, bool) {
	v, ok := r.values[col]
	return v, ok
}

// Columns returns the record's columns in insertion order.
func (r Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns.
func (r Record) Len() int {
	return len(r.columns)
}

// Map returns a copy of the record as a plain map.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the record as an object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[col])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table accumulates records, one row per resolved location. Rows are not
// required to share columns. The zero value is an empty table.
type Table struct {
	rows    []Record
	columns []string
	seen    map[string]struct{}
}

// Append adds r as the last row.
func (t *Table) Append(r Record) {
	if t.seen == nil {
		t.seen = make(map[string]struct{})
	}
	for _, col := range r.columns {
		if _, ok := t.seen[col]; ok {
			continue
		}
		t.seen[col] = struct{}{}
		t.columns = append(t.columns, col)
	}
	t.rows = append(t.rows, r)
}

// Rows returns the rows in insertion order.
func (t *Table) Rows() []Record {
	out := make([]Record, len(t.rows))
	copy(out, t.rows)
	return out
}

// Columns returns the union of row columns in first-appearance order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Value returns the cell at row, col. ok is false when the row is out of
// range or does not carry the column.
func (t *Table) Value(row int, col string) (any, bool) {
	if row < 0 || row >= len(t.rows) {
		return nil, false
	}
	return t.rows[row].Get(col)
}
