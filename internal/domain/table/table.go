package table

import (
	"fmt"

	"github.com/deltakit/deltakit/internal/domain/errs"
	"github.com/deltakit/deltakit/internal/domain/value"
)

// Column is a named, homogeneously-kinded sequence of cells. Kind
// describes the non-null cells; individual cells may still be Null.
type Column struct {
	Name   string
	Kind   value.Kind
	Values []value.Value
}

// Table is an ordered sequence of equal-length columns. Rows are
// addressed by position. Tables are treated as immutable: every
// operation derives a new table and never mutates the receiver.
type Table struct {
	cols  []Column
	index map[string]int
}

// New builds a table from columns. All columns must have the same
// length and distinct names.
func New(cols ...Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for _, col := range cols {
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", col.Name)
		}
		if len(t.cols) > 0 && len(col.Values) != len(t.cols[0].Values) {
			return nil, fmt.Errorf(
				"column %q has %d rows, expected %d",
				col.Name, len(col.Values), len(t.cols[0].Values),
			)
		}
		t.index[col.Name] = len(t.cols)
		t.cols = append(t.cols, col)
	}
	return t, nil
}

// MustNew is New for statically-known inputs; it panics on error.
func MustNew(cols ...Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Values)
}

func (t *Table) NumCols() int { return len(t.cols) }

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, col := range t.cols {
		names[i] = col.Name
	}
	return names
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

// ColumnAt returns the column at position i in table order.
func (t *Table) ColumnAt(i int) Column { return t.cols[i] }

// Cell returns the value at (column, row).
func (t *Table) Cell(name string, row int) (value.Value, bool) {
	col, ok := t.Column(name)
	if !ok {
		return value.Null(), false
	}
	return col.Values[row], true
}

// Row returns row i as a name-to-value map.
func (t *Table) Row(i int) map[string]value.Value {
	row := make(map[string]value.Value, len(t.cols))
	for _, col := range t.cols {
		row[col.Name] = col.Values[i]
	}
	return row
}

// TrimWhitespace returns a table with every TEXT cell stripped of
// leading and trailing whitespace. Idempotent.
func (t *Table) TrimWhitespace() *Table {
	cols := make([]Column, len(t.cols))
	for i, col := range t.cols {
		trimmed := make([]value.Value, len(col.Values))
		for j, v := range col.Values {
			trimmed[j] = v.TrimSpace()
		}
		cols[i] = Column{Name: col.Name, Kind: col.Kind, Values: trimmed}
	}
	return MustNew(cols...)
}

// Select projects the table onto the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		col, ok := t.Column(name)
		if !ok {
			return nil, errs.NewSchemaError("", name, "select")
		}
		cols = append(cols, col)
	}
	return New(cols...)
}

// FilterRows keeps rows where mask is true, re-indexed from zero.
func (t *Table) FilterRows(mask []bool) *Table {
	cols := make([]Column, len(t.cols))
	for i, col := range t.cols {
		kept := make([]value.Value, 0, len(col.Values))
		for j, v := range col.Values {
			if mask[j] {
				kept = append(kept, v)
			}
		}
		cols[i] = Column{Name: col.Name, Kind: col.Kind, Values: kept}
	}
	return MustNew(cols...)
}

// Head returns the first n rows (all rows when n exceeds the count).
func (t *Table) Head(n int) *Table {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	cols := make([]Column, len(t.cols))
	for i, col := range t.cols {
		cols[i] = Column{Name: col.Name, Kind: col.Kind, Values: col.Values[:n]}
	}
	return MustNew(cols...)
}

// Equal reports whether two tables have identical schemas and cells.
// Null cells are considered equal to each other here, unlike cell
// comparison during a diff.
func (t *Table) Equal(o *Table) bool {
	if t.NumCols() != o.NumCols() || t.NumRows() != o.NumRows() {
		return false
	}
	for i, col := range t.cols {
		other := o.cols[i]
		if col.Name != other.Name {
			return false
		}
		for j, v := range col.Values {
			w := other.Values[j]
			if v.IsNull() && w.IsNull() {
				continue
			}
			if !v.Equal(w) {
				return false
			}
		}
	}
	return true
}

// RequireColumns verifies that every named column exists, returning a
// SchemaError naming the table label and first missing column.
func (t *Table) RequireColumns(label string, names ...string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return errs.NewSchemaError(label, name, "validate")
		}
	}
	return nil
}
