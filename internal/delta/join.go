package delta

import (
	"log/slog"
	"strings"

	"github.com/deltakit/deltakit/internal/domain/errs"
	"github.com/deltakit/deltakit/internal/domain/table"
	"github.com/deltakit/deltakit/internal/domain/value"
)

// Side suffixes appended to non-key columns present in both inputs.
const (
	SuffixA = "_a"
	SuffixB = "_b"
)

type colSide int

const (
	sideKey colSide = iota
	sideA
	sideB
)

// colSpec describes one column of the joined schema and where its
// values come from.
type colSpec struct {
	name string
	src  string
	kind value.Kind
	side colSide
}

// Join performs a full outer equi-join of a and b on the key columns
// and partitions the result into matched, left-only and right-only
// tables sharing one joined schema: keys first (plain names), then A's
// non-key columns, then B's remaining non-key columns. A non-key name
// present on both sides appears suffixed per side; a name unique to one
// side keeps its plain name. The missing side of an unmatched row holds
// explicit nulls.
//
// Duplicate keys within a side produce the standard outer-join
// cross-product. Row order follows input order of the driving side.
func Join(a, b *table.Table, keys []string) (matched, leftOnly, rightOnly *table.Table, err error) {
	for _, key := range keys {
		if !a.HasColumn(key) {
			return nil, nil, nil, errs.NewSchemaError("A", key, "join")
		}
		if !b.HasColumn(key) {
			return nil, nil, nil, errs.NewSchemaError("B", key, "join")
		}
	}

	slog.Debug("starting full outer join",
		slog.String("keys", strings.Join(keys, ",")),
		slog.Int("rows_a", a.NumRows()),
		slog.Int("rows_b", b.NumRows()),
	)

	specs, err := joinedSpecs(a, b, keys)
	if err != nil {
		return nil, nil, nil, err
	}

	// Hash index on B's key tuple, preserving B row order per bucket.
	index := make(map[string][]int, b.NumRows())
	for i := 0; i < b.NumRows(); i++ {
		k := keyOf(b, keys, i)
		index[k] = append(index[k], i)
	}

	var matchedRows, leftRows [][2]int
	matchedB := make(map[int]bool)

	for i := 0; i < a.NumRows(); i++ {
		positions, found := index[keyOf(a, keys, i)]
		if !found {
			leftRows = append(leftRows, [2]int{i, -1})
			continue
		}
		for _, j := range positions {
			matchedB[j] = true
			matchedRows = append(matchedRows, [2]int{i, j})
		}
	}

	var rightRows [][2]int
	for j := 0; j < b.NumRows(); j++ {
		if !matchedB[j] {
			rightRows = append(rightRows, [2]int{-1, j})
		}
	}

	matched = assemble(a, b, specs, matchedRows)
	leftOnly = assemble(a, b, specs, leftRows)
	rightOnly = assemble(a, b, specs, rightRows)

	slog.Info("full outer join completed",
		slog.String("keys", strings.Join(keys, ",")),
		slog.Int("matched", matched.NumRows()),
		slog.Int("left_only", leftOnly.NumRows()),
		slog.Int("right_only", rightOnly.NumRows()),
	)

	return matched, leftOnly, rightOnly, nil
}

// joinedSpecs lays out the joined schema for Join. An input column
// named like a suffixed output (A carrying both "price" and "price_a")
// would duplicate a joined column name; that clash is a schema error,
// not a panic.
func joinedSpecs(a, b *table.Table, keys []string) ([]colSpec, error) {
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}

	var specs []colSpec
	used := make(map[string]bool)
	add := func(spec colSpec, label string) error {
		if used[spec.name] {
			return &errs.SchemaError{
				Table:   label,
				Column:  spec.name,
				Op:      "join",
				Problem: "duplicated in the joined schema",
			}
		}
		used[spec.name] = true
		specs = append(specs, spec)
		return nil
	}

	for _, key := range keys {
		col, _ := a.Column(key)
		if err := add(colSpec{name: key, src: key, kind: col.Kind, side: sideKey}, "A"); err != nil {
			return nil, err
		}
	}
	for _, name := range a.ColumnNames() {
		if isKey[name] {
			continue
		}
		col, _ := a.Column(name)
		out := name
		if b.HasColumn(name) {
			out = name + SuffixA
		}
		if err := add(colSpec{name: out, src: name, kind: col.Kind, side: sideA}, "A"); err != nil {
			return nil, err
		}
	}
	for _, name := range b.ColumnNames() {
		if isKey[name] {
			continue
		}
		col, _ := b.Column(name)
		out := name
		if a.HasColumn(name) {
			out = name + SuffixB
		}
		if err := add(colSpec{name: out, src: name, kind: col.Kind, side: sideB}, "B"); err != nil {
			return nil, err
		}
	}
	return specs, nil
}

// keyOf builds a composite hash key from the key-column cells of row i.
// A kind marker keeps INT 1 and TEXT "1" from colliding while still
// letting INT and FLOAT key values meet.
func keyOf(t *table.Table, keys []string, i int) string {
	var sb strings.Builder
	for _, key := range keys {
		v, _ := t.Cell(key, i)
		switch {
		case v.IsNull():
			sb.WriteString("z:")
		case v.IsNumeric():
			f, _ := v.AsFloat()
			sb.WriteString("n:")
			sb.WriteString(value.Float(f).String())
		default:
			sb.WriteString("s:")
			sb.WriteString(v.String())
		}
		sb.WriteByte(0x1f)
	}
	return sb.String()
}

// assemble materializes one partition. pairs holds (aRow, bRow) with -1
// marking the absent side.
func assemble(a, b *table.Table, specs []colSpec, pairs [][2]int) *table.Table {
	cols := make([]table.Column, len(specs))
	for c, spec := range specs {
		vals := make([]value.Value, len(pairs))
		for r, pair := range pairs {
			vals[r] = cellFor(a, b, spec, pair[0], pair[1])
		}
		cols[c] = table.Column{Name: spec.name, Kind: spec.kind, Values: vals}
	}
	return table.MustNew(cols...)
}

func cellFor(a, b *table.Table, spec colSpec, aRow, bRow int) value.Value {
	switch spec.side {
	case sideKey:
		if aRow >= 0 {
			v, _ := a.Cell(spec.src, aRow)
			return v
		}
		v, _ := b.Cell(spec.src, bRow)
		return v
	case sideA:
		if aRow < 0 {
			return value.Null()
		}
		v, _ := a.Cell(spec.src, aRow)
		return v
	default:
		if bRow < 0 {
			return value.Null()
		}
		v, _ := b.Cell(spec.src, bRow)
		return v
	}
}
