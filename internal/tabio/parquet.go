package tabio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/deltakit/deltakit/internal/domain/table"
	"github.com/deltakit/deltakit/internal/domain/value"
)

// ReadParquet loads an entire parquet file into a table. Column order
// follows the file schema; cell values are converted from the decoded
// Go representations.
func ReadParquet(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet: %w", err)
	}

	pqFile, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet file %s: %w", path, err)
	}

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	var records []map[string]interface{}
	for {
		row := make(map[string]interface{})
		if err := reader.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read parquet row: %w", err)
		}
		records = append(records, row)
	}

	var names []string
	for _, field := range pqFile.Schema().Fields() {
		names = append(names, field.Name())
	}

	return fromRecords(names, records)
}

// fromRecords assembles a table from row maps in the given column
// order.
func fromRecords(names []string, records []map[string]interface{}) (*table.Table, error) {
	cols := make([]table.Column, len(names))
	for c, name := range names {
		vals := make([]value.Value, len(records))
		kind := value.KindText
		for r, record := range records {
			v := convertGoValue(record[name])
			vals[r] = v
			if !v.IsNull() {
				kind = v.Kind()
			}
		}
		cols[c] = table.Column{Name: name, Kind: kind, Values: vals}
	}
	return table.New(cols...)
}

func convertGoValue(v interface{}) value.Value {
	switch val := v.(type) {
	case nil:
		return value.Null()
	case int:
		return value.Int(int64(val))
	case int32:
		return value.Int(int64(val))
	case int64:
		return value.Int(val)
	case uint32:
		return value.Int(int64(val))
	case uint64:
		return value.Int(int64(val))
	case float32:
		return value.Float(float64(val))
	case float64:
		return value.Float(val)
	case bool:
		if val {
			return value.Text("true")
		}
		return value.Text("false")
	case string:
		return value.Text(val)
	case []byte:
		return value.Text(string(val))
	case time.Time:
		return value.Time(val)
	default:
		return value.Text(fmt.Sprintf("%v", val))
	}
}
