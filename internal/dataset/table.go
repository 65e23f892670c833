package dataset

import (
	"fmt"
	"slices"
)

// Canonical column names shared by every normalized table.
const (
	ColISO3   = "iso3"
	ColTime   = "time"
	ColName   = "name"
	ColRegion = "region"
)

// Table is an immutable, column-addressable table. It is built once through
// a Builder and only read afterwards, so it is safe to share between
// goroutines without locking.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of a column, or -1.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value {
	return slices.Clone(t.rows[i])
}

// At returns the cell at row i, column position c.
func (t *Table) At(i, c int) Value {
	return t.rows[i][c]
}

// Value returns the cell at row i in the named column. Unknown columns
// yield Null.
func (t *Table) Value(i int, column string) Value {
	c, ok := t.index[column]
	if !ok {
		return Null
	}
	return t.rows[i][c]
}

// Column returns a copy of every cell in the named column.
func (t *Table) Column(name string) ([]Value, error) {
	c, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[c]
	}
	return out, nil
}

// Key returns the (iso3, time) key of row i. ok is false when the table
// has no key columns or the row's key cells are not usable.
func (t *Table) Key(i int) (Key, bool) {
	ic, ok1 := t.index[ColISO3]
	tc, ok2 := t.index[ColTime]
	if !ok1 || !ok2 {
		return Key{}, false
	}
	iso := t.rows[i][ic]
	year, ok := t.rows[i][tc].Int()
	if iso.IsNull() || !ok {
		return Key{}, false
	}
	return Key{ISO3: iso.Text(), Time: year}, true
}

// Equal reports whether two tables have the same columns and cells in the
// same order.
func (t *Table) Equal(o *Table) bool {
	if !slices.Equal(t.columns, o.columns) || len(t.rows) != len(o.rows) {
		return false
	}
	for i := range t.rows {
		for c := range t.rows[i] {
			if !t.rows[i][c].Equal(o.rows[i][c]) {
				return false
			}
		}
	}
	return true
}

// Select returns a new table holding the rows at the given positions, in
// the given order. The underlying row slices are shared; tables are never
// mutated so sharing is safe.
func (t *Table) Select(positions []int) *Table {
	rows := make([][]Value, len(positions))
	for i, p := range positions {
		rows[i] = t.rows[p]
	}
	return &Table{columns: t.columns, index: t.index, rows: rows}
}

// Filter returns the rows for which keep returns true.
func (t *Table) Filter(keep func(i int) bool) *Table {
	var positions []int
	for i := range t.rows {
		if keep(i) {
			positions = append(positions, i)
		}
	}
	return t.Select(positions)
}

// Builder assembles a Table row by row.
type Builder struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewBuilder returns a builder for the given columns. Column names must be
// unique.
func NewBuilder(columns ...string) (*Builder, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		index[c] = i
	}
	return &Builder{columns: slices.Clone(columns), index: index}, nil
}

// MustBuilder is NewBuilder for column sets known to be unique.
func MustBuilder(columns ...string) *Builder {
	b, err := NewBuilder(columns...)
	if err != nil {
		panic(err)
	}
	return b
}

// Append adds a row. Missing trailing cells are filled with Null; extra
// cells are an error.
func (b *Builder) Append(cells ...Value) error {
	if len(cells) > len(b.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(b.columns))
	}
	row := make([]Value, len(b.columns))
	copy(row, cells)
	b.rows = append(b.rows, row)
	return nil
}

// AppendMap adds a row from a column-name keyed map. Unknown names are
// ignored.
func (b *Builder) AppendMap(cells map[string]Value) {
	row := make([]Value, len(b.columns))
	for name, v := range cells {
		if c, ok := b.index[name]; ok {
			row[c] = v
		}
	}
	b.rows = append(b.rows, row)
}

// Len returns the number of rows appended so far.
func (b *Builder) Len() int { return len(b.rows) }

// Build freezes the builder into a Table. The builder must not be used
// afterwards.
func (b *Builder) Build() *Table {
	t := &Table{columns: b.columns, index: b.index, rows: b.rows}
	b.rows = nil
	return t
}
