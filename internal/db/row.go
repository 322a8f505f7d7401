// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// Row is one result record. Fields are ordered as the statement's result set
// declares them and can be read by position or by column name.
type Row struct {
	cols   *columnSet
	values []any
}

type columnSet struct {
	names []string
	index map[string]int
}

func newColumnSet(names []string) *columnSet {
	cs := &columnSet{names: names, index: make(map[string]int, len(names))}
	for i, n := range names {
		// first occurrence wins for duplicated names (e.g. joins)
		if _, ok := cs.index[n]; !ok {
			cs.index[n] = i
		}
		lower := strings.ToLower(n)
		if _, ok := cs.index[lower]; !ok {
			cs.index[lower] = i
		}
	}
	return cs
}

// NewRow builds a Row from parallel column and value slices. It is mainly
// useful for fakes in tests.
func NewRow(columns []string, values []any) Row {
	return Row{cols: newColumnSet(columns), values: values}
}

// Len returns the number of fields.
func (r Row) Len() int { return len(r.values) }

// Columns returns the column names in result order.
func (r Row) Columns() []string {
	if r.cols == nil {
		return nil
	}
	return append([]string(nil), r.cols.names...)
}

// Values returns a copy of the field values in result order.
func (r Row) Values() []any { return append([]any(nil), r.values...) }

// Index returns the i-th field. It panics if i is out of range, like a slice.
func (r Row) Index(i int) any { return r.values[i] }

// Get returns the field named name. Lookup is exact first, then
// case-insensitive.
func (r Row) Get(name string) (any, bool) {
	if r.cols == nil {
		return nil, false
	}
	i, ok := r.cols.index[name]
	if !ok {
		i, ok = r.cols.index[strings.ToLower(name)]
	}
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// String returns the named field formatted as text. NULL and missing fields
// yield "".
func (r Row) String(name string) string {
	v, ok := r.Get(name)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// Int64 returns the named field as an integer.
func (r Row) Int64(name string) (int64, error) {
	v, ok := r.Get(name)
	if !ok {
		return 0, fmt.Errorf("column %q not in result", name)
	}
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case float64:
		return int64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	case []byte:
		return strconv.ParseInt(string(t), 10, 64)
	case nil:
		return 0, fmt.Errorf("column %q is NULL", name)
	default:
		return 0, fmt.Errorf("column %q has type %T", name, v)
	}
}

// Map returns the row as a column->value map. Later duplicate names
// overwrite earlier ones.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for i, v := range r.values {
		m[r.cols.names[i]] = v
	}
	return m
}

// Rows is the result of Execute. The values were read from the driver
// before Execute returned, so holding a Rows never blocks the proxy.
type Rows struct {
	columns      []string
	rows         []Row
	pos          int
	rowsAffected int64
	lastInsertID int64
}

// Columns returns the result columns, or nil for statements that return no
// rows.
func (r *Rows) Columns() []string { return append([]string(nil), r.columns...) }

// Next advances to the next row.
func (r *Rows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

// Row returns the current row. Call Next first.
func (r *Rows) Row() Row {
	if r.pos == 0 {
		return Row{}
	}
	return r.rows[r.pos-1]
}

// All yields every remaining row.
func (r *Rows) All() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for r.Next() {
			if !yield(r.Row()) {
				return
			}
		}
	}
}

// Len reports the total number of rows in the result.
func (r *Rows) Len() int { return len(r.rows) }

// RowsAffected is set for statements executed without a result set.
func (r *Rows) RowsAffected() int64 { return r.rowsAffected }

// LastInsertID is set for statements executed without a result set on
// drivers that support it (PostgreSQL does not).
func (r *Rows) LastInsertID() int64 { return r.lastInsertID }

// blobTypes keep []byte values as bytes; every other []byte from the driver
// is text (MySQL's text protocol returns TEXT columns as bytes).
var blobTypes = map[string]bool{
	"BLOB": true, "TINYBLOB": true, "MEDIUMBLOB": true, "LONGBLOB": true,
	"BINARY": true, "VARBINARY": true, "BYTEA": true,
}

func collectRows(rs *sql.Rows) (*Rows, error) {
	defer func() { _ = rs.Close() }()
	names, err := rs.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rs.ColumnTypes()
	if err != nil {
		return nil, err
	}
	cs := newColumnSet(names)
	out := &Rows{columns: names}
	for rs.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				if i < len(types) && blobTypes[strings.ToUpper(types[i].DatabaseTypeName())] {
					vals[i] = append([]byte(nil), b...)
				} else {
					vals[i] = string(b)
				}
			}
		}
		out.rows = append(out.rows, Row{cols: cs, values: vals})
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func resultRows(res sql.Result) *Rows {
	out := &Rows{}
	if res == nil {
		return out
	}
	if n, err := res.RowsAffected(); err == nil {
		out.rowsAffected = n
	}
	if id, err := res.LastInsertId(); err == nil {
		out.lastInsertID = id
	}
	return out
}
