// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package dataset

import (
	"fmt"
	"strconv"
)

// Row is one record. Its length always equals the owning table's width.
type Row []Value

// Table is an ordered set of labelled columns and rows of Values.
//
// Tables returned by readers and transformations are treated as immutable:
// every transformation method returns a new Table and leaves the receiver alone.
// Append is the only mutating method and is meant for builders.
type Table struct {
	cols  []string
	index map[string]int
	rows  []Row
}

// New creates an empty table. Duplicate labels get a numeric suffix
// ("score", "score.1", "score.2") so every label stays addressable.
func New(columns []string) *Table {
	t := &Table{
		cols:  make([]string, 0, len(columns)),
		index: make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		name := c
		for n := 1; ; n++ {
			if _, taken := t.index[name]; !taken {
				break
			}
			name = c + "." + strconv.Itoa(n)
		}
		t.index[name] = len(t.cols)
		t.cols = append(t.cols, name)
	}
	return t
}

// Columns returns a copy of the column labels.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.cols) }

// Has reports whether the column exists.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Index returns the column position, or -1.
func (t *Table) Index(col string) int {
	if i, ok := t.index[col]; ok {
		return i
	}
	return -1
}

// Row returns row i. The returned slice must not be modified.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Get returns the cell at row i, column col. Unknown columns read as null.
func (t *Table) Get(i int, col string) Value {
	j, ok := t.index[col]
	if !ok {
		return Null()
	}
	return t.rows[i][j]
}

// Append adds a row. The row length must match the table width.
func (t *Table) Append(row Row) error {
	if len(row) != len(t.cols) {
		return fmt.Errorf("row has %d values, table has %d columns", len(row), len(t.cols))
	}
	t.rows = append(t.rows, row)
	return nil
}

// AppendRecord adds a row from a column map. Missing columns are null and
// labels not in the table are ignored.
func (t *Table) AppendRecord(rec map[string]Value) {
	row := make(Row, len(t.cols))
	for col, v := range rec {
		if j, ok := t.index[col]; ok {
			row[j] = v
		}
	}
	t.rows = append(t.rows, row)
}

// Column returns a copy of one column's values. Unknown columns return nil.
func (t *Table) Column(col string) []Value {
	j, ok := t.index[col]
	if !ok {
		return nil
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out
}

// Select projects the table onto cols in the given order. Columns the table
// lacks are filled with nulls.
func (t *Table) Select(cols ...string) *Table {
	out := New(cols)
	src := make([]int, len(out.cols))
	for k, c := range out.cols {
		src[k] = t.Index(c)
	}
	out.rows = make([]Row, len(t.rows))
	for i, r := range t.rows {
		row := make(Row, len(src))
		for k, j := range src {
			if j >= 0 {
				row[k] = r[j]
			}
		}
		out.rows[i] = row
	}
	return out
}

// Rename returns a table with columns renamed per mapping. A rename is
// skipped when its target label already exists, so no column is lost.
func (t *Table) Rename(mapping map[string]string) *Table {
	cols := t.Columns()
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[c] = true
	}
	for i, c := range cols {
		target, ok := mapping[c]
		if !ok || target == c || present[target] {
			continue
		}
		delete(present, c)
		present[target] = true
		cols[i] = target
	}
	out := New(cols)
	out.rows = t.rows
	return out
}

// WithColumn returns a table with col set to vals, replacing an existing
// column or appending a new one. vals must have one entry per row.
func (t *Table) WithColumn(col string, vals []Value) (*Table, error) {
	if len(vals) != len(t.rows) {
		return nil, fmt.Errorf("column %q has %d values, table has %d rows", col, len(vals), len(t.rows))
	}
	j, exists := t.index[col]
	cols := t.Columns()
	if !exists {
		cols = append(cols, col)
		j = len(cols) - 1
	}
	out := New(cols)
	out.rows = make([]Row, len(t.rows))
	for i, r := range t.rows {
		row := make(Row, len(cols))
		copy(row, r)
		row[j] = vals[i]
		out.rows[i] = row
	}
	return out, nil
}

// WithConstant returns a table with col set to v on every row.
func (t *Table) WithConstant(col string, v Value) *Table {
	vals := make([]Value, len(t.rows))
	for i := range vals {
		vals[i] = v
	}
	out, _ := t.WithColumn(col, vals) // lengths always match
	return out
}

// Filter returns the rows for which keep returns true.
func (t *Table) Filter(keep func(i int, r Row) bool) *Table {
	out := New(t.cols)
	for i, r := range t.rows {
		if keep(i, r) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := New(t.cols)
	out.rows = make([]Row, len(t.rows))
	for i, r := range t.rows {
		row := make(Row, len(r))
		copy(row, r)
		out.rows[i] = row
	}
	return out
}

// Concat stacks tables over the union of their columns. Column order is
// first-seen order; cells a table lacks are null.
func Concat(tables ...*Table) *Table {
	var cols []string
	seen := make(map[string]bool)
	for _, t := range tables {
		for _, c := range t.cols {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return ConcatColumns(cols, tables...)
}

// ConcatColumns stacks tables projected onto cols.
func ConcatColumns(cols []string, tables ...*Table) *Table {
	out := New(cols)
	for _, t := range tables {
		out.rows = append(out.rows, t.Select(out.cols...).rows...)
	}
	return out
}
