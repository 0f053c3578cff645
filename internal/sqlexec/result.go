package sqlexec

import (
	"bytes"
	"encoding/json"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/apperr"
)

// Row is one result row keyed by column name. Keys keep engine column order.
// When the engine reports the same name twice the key keeps its first
// position and holds the last value.
type Row struct {
	keys   []string
	values map[string]any
}

// NewRow pairs column names with values.
func NewRow(columns []string, values []any) Row {
	r := Row{values: make(map[string]any, len(columns))}
	for i, c := range columns {
		if _, seen := r.values[c]; !seen {
			r.keys = append(r.keys, c)
		}
		var v any
		if i < len(values) {
			v = values[i]
		}
		r.values[c] = v
	}
	return r
}

// Keys returns the distinct column names in order.
func (r Row) Keys() []string { return append([]string(nil), r.keys...) }

// Get returns the value for column.
func (r Row) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// MarshalJSON writes the row as an object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
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
		vb, err := json.Marshal(r.values[k])
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

// Result is the outcome of one query. Rows is nil unless at least one row
// came back. Kind is empty on success.
type Result struct {
	Columns []string
	Rows    []Row
	Message string
	Kind    apperr.Kind
}

// OK reports whether the query returned rows.
func (r Result) OK() bool { return r.Kind == "" && len(r.Rows) > 0 }

// Failed reports a hard failure, as opposed to success or an empty result.
func (r Result) Failed() bool { return r.Kind != "" && !apperr.IsSoft(r.Kind) }

// Len returns the number of rows.
func (r Result) Len() int { return len(r.Rows) }

// Value returns the cell at row i for column.
func (r Result) Value(i int, column string) (any, bool) {
	if i < 0 || i >= len(r.Rows) {
		return nil, false
	}
	return r.Rows[i].Get(column)
}

// ColumnNames returns column names with duplicates removed, in order.
func (r Result) ColumnNames() []string {
	if len(r.Rows) > 0 {
		return r.Rows[0].Keys()
	}
	return NewRow(r.Columns, nil).Keys()
}

type toolOutput struct {
	Rows    []Row  `json:"sql_query_result"`
	Message string `json:"message"`
}

// MarshalJSON writes the tool output shape:
// {"sql_query_result": [...] | null, "message": "..."}.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(toolOutput{Rows: r.Rows, Message: r.Message})
}

// JSON returns the tool output as a string. Marshalling scalar rows cannot
// fail, so an error here degrades to a message-only payload.
func (r Result) JSON() string {
	b, err := json.Marshal(r)
	if err != nil {
		b, _ = json.Marshal(toolOutput{Message: msgExecutePrefix + err.Error()})
	}
	return string(b)
}
