// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package dataset

import (
	"fmt"
	"strconv"
)

// Kind is the inferred storage type of a column.
type Kind int

const (
	// KindNull marks a column whose cells are all null.
	KindNull Kind = iota
	// KindInt marks a column of int64 cells.
	KindInt
	// KindFloat marks a column of float64 cells.
	KindFloat
	// KindString marks a column of string cells.
	KindString
)

// String returns the lower-case kind name used in logs and inspect output.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column is a named sequence of cells.
//
// A cell is nil (null), int64, float64 or string. All non-null cells of a
// column match its Kind.
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// Table is an in-memory set of equally long named columns.
type Table struct {
	columns []*Column
	rows    int
}

// New returns an empty table with zero rows and zero columns.
func New() *Table {
	return &Table{}
}

// WithRows returns an empty table that will hold rows rows once columns
// are added.
func WithRows(rows int) *Table {
	return &Table{rows: rows}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.columns)
}

// Empty reports whether the table has no rows or no columns.
func (t *Table) Empty() bool {
	return t.NumRows() == 0 || t.NumCols() == 0
}

// Columns returns the columns in order. The slice must not be modified.
func (t *Table) Columns() []*Column {
	if t == nil {
		return nil
	}
	return t.columns
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, 0, t.NumCols())
	for _, c := range t.Columns() {
		names = append(names, c.Name)
	}
	return names
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	return t.Column(name) != nil
}

// AddColumn appends col. Its length must match the table's row count;
// the first column added to a table without rows sets the row count.
func (t *Table) AddColumn(col *Column) error {
	if len(t.columns) == 0 && t.rows == 0 {
		t.rows = len(col.Values)
	}
	if len(col.Values) != t.rows {
		return fmt.Errorf("column %q has %d values, table has %d rows", col.Name, len(col.Values), t.rows)
	}
	t.columns = append(t.columns, col)
	return nil
}

// AddNullColumn appends a column whose cells are all null.
func (t *Table) AddNullColumn(name string) {
	t.columns = append(t.columns, &Column{
		Name:   name,
		Kind:   KindNull,
		Values: make([]any, t.rows),
	})
}

// SetConstColumn sets every cell of the named column to value, replacing
// the column in place if it exists and appending it otherwise.
func (t *Table) SetConstColumn(name, value string) {
	values := make([]any, t.rows)
	for i := range values {
		values[i] = value
	}
	col := &Column{Name: name, Kind: KindString, Values: values}
	for i, c := range t.columns {
		if c.Name == name {
			t.columns[i] = col
			return
		}
	}
	t.columns = append(t.columns, col)
}

// RenameColumns rewrites every column name with fn.
func (t *Table) RenameColumns(fn func(string) string) {
	for _, c := range t.columns {
		c.Name = fn(c.Name)
	}
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Values[i]
	}
	return row
}

// FormatValue renders a cell as text. Null renders as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
