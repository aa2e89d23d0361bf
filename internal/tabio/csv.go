// Package tabio reads external tabular files into tables and writes
// tables back out. Column kinds are inferred here so the core engines
// can assume typing has already happened.
package tabio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/deltakit/deltakit/internal/domain/table"
	"github.com/deltakit/deltakit/internal/domain/value"
)

// ReadTable loads path by extension: .parquet goes through the parquet
// reader, anything else is treated as CSV.
func ReadTable(path string) (*table.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return ReadParquet(path)
	}
	return ReadCSVFile(path)
}

// ReadCSVFile loads a CSV file with a header row.
func ReadCSVFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	tbl, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return tbl, nil
}

// ReadCSV parses CSV data into a table. The first record is the
// header. Per column, the narrowest kind every non-empty cell fits is
// inferred: INT, then FLOAT, then TIME, falling back to TEXT. Empty
// cells become nulls.
func ReadCSV(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv input has no header row")
	}

	header := records[0]
	rows := records[1:]

	cols := make([]table.Column, len(header))
	for c, name := range header {
		raw := make([]string, len(rows))
		for r, record := range rows {
			if c < len(record) {
				raw[r] = record[c]
			}
		}
		cols[c] = inferColumn(strings.TrimSpace(name), raw)
	}

	return table.New(cols...)
}

// inferColumn picks the column kind over non-empty cells, then
// converts.
func inferColumn(name string, raw []string) table.Column {
	kind := inferKind(raw)

	vals := make([]value.Value, len(raw))
	for i, cell := range raw {
		vals[i] = convertCell(cell, kind)
	}
	return table.Column{Name: name, Kind: kind, Values: vals}
}

// inferKind walks the INT > FLOAT > TIME > TEXT ladder and returns the
// narrowest kind that EVERY non-empty cell fits. A column mixing
// numbers and dates fits neither and lands on TEXT; an all-empty
// column is TEXT.
func inferKind(raw []string) value.Kind {
	for _, kind := range []value.Kind{value.KindInt, value.KindFloat, value.KindTime} {
		seen := false
		fits := true
		for _, cell := range raw {
			s := strings.TrimSpace(cell)
			if s == "" {
				continue
			}
			seen = true
			if !cellFits(s, kind) {
				fits = false
				break
			}
		}
		if seen && fits {
			return kind
		}
	}
	return value.KindText
}

func cellFits(s string, kind value.Kind) bool {
	switch kind {
	case value.KindInt:
		_, err := strconv.ParseInt(s, 10, 64)
		return err == nil
	case value.KindFloat:
		_, err := strconv.ParseFloat(s, 64)
		return err == nil
	case value.KindTime:
		_, ok := value.Text(s).CoerceTime()
		return ok
	default:
		return true
	}
}

// convertCell converts one cell to the column's kind. A cell that does
// not parse stays TEXT rather than collapsing to a zero value; with
// inferKind checking every cell this is unreachable, but a silent zero
// would corrupt comparisons downstream.
func convertCell(cell string, kind value.Kind) value.Value {
	s := strings.TrimSpace(cell)
	if s == "" {
		return value.Null()
	}
	switch kind {
	case value.KindInt:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return value.Text(cell)
		}
		return value.Int(i)
	case value.KindFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return value.Text(cell)
		}
		return value.Float(f)
	case value.KindTime:
		t, ok := value.Text(s).CoerceTime()
		if !ok {
			return value.Text(cell)
		}
		return value.Time(t)
	default:
		return value.Text(cell)
	}
}

// WriteCSV writes the table with a header row. Nulls render as empty
// cells.
func WriteCSV(tbl *table.Table, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(tbl.ColumnNames()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, tbl.NumCols())
	for i := 0; i < tbl.NumRows(); i++ {
		for c := 0; c < tbl.NumCols(); c++ {
			record[c] = tbl.ColumnAt(c).Values[i].String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the table to path as CSV.
func WriteCSVFile(tbl *table.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()
	return WriteCSV(tbl, f)
}
