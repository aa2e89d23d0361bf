package testutil

import (
	"testing"

	"github.com/deltakit/deltakit/internal/domain/table"
	"github.com/deltakit/deltakit/internal/domain/value"
)

// AssertRowCount checks if the table has the expected number of rows
func AssertRowCount(t *testing.T, tbl *table.Table, expected int, context string) {
	t.Helper()
	if tbl.NumRows() != expected {
		t.Errorf("%s: expected %d rows, got %d", context, expected, tbl.NumRows())
	}
}

// AssertColumnExists checks if a column exists in the table
func AssertColumnExists(t *testing.T, tbl *table.Table, column, context string) {
	t.Helper()
	if !tbl.HasColumn(column) {
		t.Errorf("%s: expected column %q to exist (have %v)", context, column, tbl.ColumnNames())
	}
}

// AssertColumnNotExists checks if a column does not exist in the table
func AssertColumnNotExists(t *testing.T, tbl *table.Table, column, context string) {
	t.Helper()
	if tbl.HasColumn(column) {
		t.Errorf("%s: did not expect column %q to exist", context, column)
	}
}

// AssertCell checks one cell against an expected value
func AssertCell(t *testing.T, tbl *table.Table, column string, row int, expected value.Value, context string) {
	t.Helper()
	got, ok := tbl.Cell(column, row)
	if !ok {
		t.Errorf("%s: column %q not found", context, column)
		return
	}
	if expected.IsNull() {
		if !got.IsNull() {
			t.Errorf("%s: %s[%d]: expected null, got %v", context, column, row, got)
		}
		return
	}
	if !got.Equal(expected) {
		t.Errorf("%s: %s[%d]: expected %v, got %v", context, column, row, expected, got)
	}
}

// AssertNoError checks that an error is nil
func AssertNoError(t *testing.T, err error, context string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: expected no error, got: %v", context, err)
	}
}

// AssertError checks that an error is not nil
func AssertError(t *testing.T, err error, context string) {
	t.Helper()
	if err == nil {
		t.Errorf("%s: expected an error, got nil", context)
	}
}
