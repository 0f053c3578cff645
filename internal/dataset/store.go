package dataset

import "sort"

// Store is the immutable, in-memory set of records. It is built once and
// shared read-only; every accessor returns copies.
type Store struct {
	records []Record
	rows    [][]any
	index   map[string]int
}

// NewStore builds a store from records. The slice is copied.
func NewStore(records []Record) *Store {
	s := &Store{
		records: append([]Record(nil), records...),
		rows:    make([][]any, len(records)),
		index:   make(map[string]int, len(Schema)),
	}
	for i, r := range s.records {
		s.rows[i] = r.Values()
	}
	for i, c := range Schema {
		s.index[c.Name] = i
	}
	return s
}

// Empty returns a store with no records and the full schema.
func Empty() *Store { return NewStore(nil) }

// ColumnNames returns the column names in schema order.
func (s *Store) ColumnNames() []string { return ColumnNames() }

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Value returns the cell at row i for the named column. ok is false when the
// column does not exist or i is out of range.
func (s *Store) Value(i int, column string) (any, bool) {
	idx, ok := s.index[column]
	if !ok || i < 0 || i >= len(s.rows) {
		return nil, false
	}
	return s.rows[i][idx], true
}

// Row returns a copy of row i in schema order.
func (s *Store) Row(i int) []any {
	return append([]any(nil), s.rows[i]...)
}

// Records returns a copy of all records.
func (s *Store) Records() []Record {
	return append([]Record(nil), s.records...)
}

// Distinct returns the sorted distinct non-empty text values of column.
func (s *Store) Distinct(column string) []string {
	idx, ok := s.index[column]
	if !ok {
		return nil
	}
	seen := map[string]struct{}{}
	for _, row := range s.rows {
		v, ok := row[idx].(string)
		if !ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
