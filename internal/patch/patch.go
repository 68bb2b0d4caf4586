// Package patch composes partial updates. Callers collect only the
// columns that were supplied, and the resulting UPDATE binds every value
// as a statement parameter.
package patch

import (
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// UpdatedAtColumn is refreshed by every non-empty update.
const UpdatedAtColumn = "updated_at"

// Field is an optional input value. Set is false when the caller did not
// supply the field; an explicit JSON null sets it with the zero value.
type Field[T any] struct {
	Value T
	Set   bool
}

// Some returns a supplied field.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// UnmarshalJSON marks the field as supplied. It is only invoked when the
// key is present in the document.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON encodes the value, or null when absent.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Set is an ordered collection of column assignments.
type Set struct {
	columns []string
	values  map[string]any
}

// NewSet returns an empty assignment set.
func NewSet() *Set {
	return &Set{values: make(map[string]any)}
}

// Add assigns value to column, replacing any earlier assignment.
func (s *Set) Add(column string, value any) {
	if _, ok := s.values[column]; !ok {
		s.columns = append(s.columns, column)
	}
	s.values[column] = value
}

// Apply assigns f to column when it was supplied.
func Apply[T any](s *Set, column string, f Field[T]) {
	if f.Set {
		s.Add(column, f.Value)
	}
}

// ApplyNullable assigns a nullable column, writing NULL for a nil pointer.
func ApplyNullable[T any](s *Set, column string, f Field[*T]) {
	if !f.Set {
		return
	}
	if f.Value == nil {
		s.Add(column, nil)
		return
	}
	s.Add(column, *f.Value)
}

// Empty reports whether no column was supplied.
func (s *Set) Empty() bool { return len(s.columns) == 0 }

// Columns returns the assigned columns in insertion order.
func (s *Set) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Value returns the value assigned to column.
func (s *Set) Value(column string) (any, bool) {
	v, ok := s.values[column]
	return v, ok
}

// Update builds "UPDATE table SET ... , updated_at = ? WHERE id = ?".
// Column names come from code, never from input; all values are bound.
func (s *Set) Update(table string, id int64, now time.Time, format sq.PlaceholderFormat) (string, []any, error) {
	if s.Empty() {
		return "", nil, fmt.Errorf("patch: no columns to update on %s", table)
	}

	b := sq.Update(table).PlaceholderFormat(format)
	for _, col := range s.columns {
		if col == UpdatedAtColumn {
			continue
		}
		b = b.Set(col, s.values[col])
	}
	b = b.Set(UpdatedAtColumn, now).Where(sq.Eq{"id": id})

	return b.ToSql()
}
