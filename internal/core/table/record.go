package table

import (
	"bytes"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/chartprep/internal/core/domain"
)

// Record is one row serialized as a JSON object whose keys keep column order.
type Record struct {
	keys   []string
	values []any
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	for i, k := range r.keys {
		if k == key {
			return r.values[i], true
		}
	}
	return nil, false
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// JSONRecords converts every row to a Record. Cells of numeric columns become
// numbers; missing-value markers and unparseable numbers become null.
func (t *Table) JSONRecords(numeric domain.ColumnSet) []Record {
	cols := t.Columns()
	rows := t.df.Records()
	out := make([]Record, 0, t.Len())
	if len(rows) < 2 {
		return out
	}

	for _, rec := range rows[1:] {
		r := Record{keys: cols, values: make([]any, len(cols))}
		for i, c := range cols {
			cell := rec[i]
			switch {
			case numeric.Has(c):
				if v, ok := domain.ParseNumber(cell); ok {
					r.values[i] = v
				}
			case !domain.IsMissingText(cell):
				r.values[i] = cell
			}
		}
		out = append(out, r)
	}
	return out
}
