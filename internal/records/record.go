// Package records turns raw header+rows grids into ordered, header-keyed
// records. Values stay as display text; nothing is coerced.
package records

import (
	"bytes"
	"encoding/json"
)

// Field is one key of a Record. Defined is false when the source row had no
// cell for the column.
type Field struct {
	Key     string
	Value   string
	Defined bool
}

// Record maps trimmed header names to cell text, in header order.
type Record struct {
	fields []Field
	index  map[string]int
}

// Dataset is an ordered sequence of records read from one named grid.
type Dataset []Record

func newRecord(n int) Record {
	return Record{fields: make([]Field, 0, n), index: make(map[string]int, n)}
}

// set assigns key. A repeated key keeps its first position and takes the
// latest value.
func (r *Record) set(key, value string, defined bool) {
	if i, ok := r.index[key]; ok {
		r.fields[i].Value = value
		r.fields[i].Defined = defined
		return
	}
	r.index[key] = len(r.fields)
	r.fields = append(r.fields, Field{Key: key, Value: value, Defined: defined})
}

// Len returns the number of keys.
func (r Record) Len() int { return len(r.fields) }

// Keys returns keys in header order.
func (r Record) Keys() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Key
	}
	return out
}

// Fields returns a copy of the record's fields.
func (r Record) Fields() []Field {
	return append([]Field(nil), r.fields...)
}

// Has reports whether key exists, defined or not.
func (r Record) Has(key string) bool {
	_, ok := r.index[key]
	return ok
}

// Get returns the value for key; ok is false when the key is missing or undefined.
func (r Record) Get(key string) (string, bool) {
	i, ok := r.index[key]
	if !ok || !r.fields[i].Defined {
		return "", false
	}
	return r.fields[i].Value, true
}

// MarshalJSON encodes the record as an object in key order; undefined
// values encode as null.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		if !f.Defined {
			buf.WriteString("null")
			continue
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes an empty dataset as [] rather than null.
func (d Dataset) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Record(d))
}
