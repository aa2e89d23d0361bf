package tabio_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deltakit/deltakit/internal/domain/value"
	"github.com/deltakit/deltakit/internal/tabio"
	"github.com/deltakit/deltakit/internal/testutil"
)

func TestReadCSV_KindInference(t *testing.T) {
	input := "id,price,day,name\n" +
		"1,9.5,2024-03-01,alice\n" +
		"2,10,2024-03-02,bob\n"

	tbl, err := tabio.ReadCSV(strings.NewReader(input))
	testutil.AssertNoError(t, err, "read csv")

	testutil.AssertRowCount(t, tbl, 2, "parsed rows")

	tests := []struct {
		column string
		want   value.Kind
	}{
		{"id", value.KindInt},
		{"price", value.KindFloat},
		{"day", value.KindTime},
		{"name", value.KindText},
	}
	for _, tt := range tests {
		col, ok := tbl.Column(tt.column)
		if !ok {
			t.Fatalf("column %q missing", tt.column)
		}
		if col.Kind != tt.want {
			t.Errorf("column %q inferred %v, want %v", tt.column, col.Kind, tt.want)
		}
	}

	testutil.AssertCell(t, tbl, "id", 0, value.Int(1), "int cell")
	testutil.AssertCell(t, tbl, "price", 1, value.Float(10), "widened float cell")
	testutil.AssertCell(t, tbl, "day", 0,
		value.Time(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), "date cell")
}

func TestReadCSV_MixedColumnFallsBackToText(t *testing.T) {
	input := "v\n1\nbanana\n"

	tbl, err := tabio.ReadCSV(strings.NewReader(input))
	testutil.AssertNoError(t, err, "read csv")

	col, _ := tbl.Column("v")
	if col.Kind != value.KindText {
		t.Errorf("mixed column inferred %v, want TEXT", col.Kind)
	}
	testutil.AssertCell(t, tbl, "v", 0, value.Text("1"), "numeric-looking cell kept as text")
}

func TestReadCSV_NumberAndDateColumnFallsBackToText(t *testing.T) {
	// Neither INT, FLOAT nor TIME fits every cell, so the column must
	// stay TEXT with both originals intact instead of forcing the
	// number into a zero date.
	tests := []struct {
		name  string
		input string
	}{
		{"int then date", "v\n1\n2024-03-01\n"},
		{"float then date", "v\n1.5\n2024-03-01\n"},
		{"date then int", "v\n2024-03-01\n1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := tabio.ReadCSV(strings.NewReader(tt.input))
			testutil.AssertNoError(t, err, "read csv")

			col, _ := tbl.Column("v")
			if col.Kind != value.KindText {
				t.Fatalf("inferred %v, want TEXT", col.Kind)
			}
			for i, v := range col.Values {
				if v.Kind() != value.KindText {
					t.Errorf("row %d converted to %v (%q), want original text",
						i, v.Kind(), v.String())
				}
			}
		})
	}
}

func TestReadCSV_EmptyCellsBecomeNulls(t *testing.T) {
	input := "id,qty\n1,\n2,5\n"

	tbl, err := tabio.ReadCSV(strings.NewReader(input))
	testutil.AssertNoError(t, err, "read csv")

	testutil.AssertCell(t, tbl, "qty", 0, value.Null(), "empty cell")
	testutil.AssertCell(t, tbl, "qty", 1, value.Int(5), "populated cell")
}

func TestReadCSV_EmptyColumnIsText(t *testing.T) {
	input := "id,blank\n1,\n2,\n"

	tbl, err := tabio.ReadCSV(strings.NewReader(input))
	testutil.AssertNoError(t, err, "read csv")

	col, _ := tbl.Column("blank")
	if col.Kind != value.KindText {
		t.Errorf("all-null column inferred %v, want TEXT", col.Kind)
	}
}

func TestReadCSV_NoHeader(t *testing.T) {
	_, err := tabio.ReadCSV(strings.NewReader(""))
	testutil.AssertError(t, err, "empty input")
}

func TestWriteCSV(t *testing.T) {
	tbl, err := tabio.ReadCSV(strings.NewReader("id,note\n1,\n2,hi\n"))
	testutil.AssertNoError(t, err, "read csv")

	var buf bytes.Buffer
	testutil.AssertNoError(t, tabio.WriteCSV(tbl, &buf), "write csv")

	got := buf.String()
	want := "id,note\n1,\n2,hi\n"
	if got != want {
		t.Errorf("WriteCSV output = %q, want %q", got, want)
	}
}

func TestCSVFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	orig := testutil.PricesTableA()

	testutil.AssertNoError(t, tabio.WriteCSVFile(orig, path), "write file")

	back, err := tabio.ReadCSVFile(path)
	testutil.AssertNoError(t, err, "read file back")

	if !orig.Equal(back) {
		t.Error("round-tripped table differs from original")
	}
}

func TestReadTable_DispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte("id\n1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := tabio.ReadTable(path)
	testutil.AssertNoError(t, err, "read table")
	testutil.AssertRowCount(t, tbl, 1, "csv via ReadTable")

	if _, err := tabio.ReadTable(filepath.Join(dir, "missing.parquet")); err == nil {
		t.Error("missing parquet file should error")
	}
}
