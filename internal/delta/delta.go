// Package delta implements the key-aware table diff engine: a full
// outer join on key columns partitions two tables into rows unique to
// each side and rows present in both, and a tolerance-aware comparator
// flags the matched rows whose compared columns differ.
package delta

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/deltakit/deltakit/internal/domain/errs"
	"github.com/deltakit/deltakit/internal/domain/table"
	"github.com/deltakit/deltakit/internal/domain/value"
)

// Delta compares two tables on one or more key columns. All three
// result tables are computed eagerly at construction and never mutated
// afterwards; reads are plain accessor calls.
type Delta struct {
	keys     []string
	absTol   float64
	relTol   float64
	runID    uuid.UUID
	compared []string

	unmatchedA *table.Table
	unmatchedB *table.Table
	mismatches *table.Table
}

// Option configures a Delta before it is built.
type Option func(*Delta)

// WithTolerance sets the absolute and relative numeric tolerance
// applied uniformly to every numeric compared column.
func WithTolerance(absTol, relTol float64) Option {
	return func(d *Delta) {
		d.absTol = absTol
		d.relTol = relTol
	}
}

// New builds a Delta of a and b joined on keys. Both inputs go through
// a whitespace-trim pre-pass first; the callers' tables are never
// mutated. Fails with a *errs.SchemaError when a key column is missing
// from either side.
func New(a, b *table.Table, keys []string, opts ...Option) (*Delta, error) {
	d := &Delta{
		keys:  append([]string(nil), keys...),
		runID: uuid.New(),
	}
	for _, opt := range opts {
		opt(d)
	}

	a = a.TrimWhitespace()
	b = b.TrimWhitespace()

	matched, leftOnly, rightOnly, err := Join(a, b, d.keys)
	if err != nil {
		return nil, err
	}
	d.unmatchedA = leftOnly
	d.unmatchedB = rightOnly

	d.compared = comparedColumns(a, b, d.keys)

	mask := make([]bool, matched.NumRows())
	for _, base := range d.compared {
		colA, _ := matched.Column(base + SuffixA)
		colB, _ := matched.Column(base + SuffixB)
		numeric := isNumericKind(colA.Kind) && isNumericKind(colB.Kind)
		for i := range mask {
			if mask[i] {
				continue
			}
			if !Equal(colA.Values[i], colB.Values[i], numeric, d.absTol, d.relTol) {
				mask[i] = true
			}
		}
	}
	d.mismatches = matched.FilterRows(mask)

	slog.Info("delta built",
		slog.String("run_id", d.runID.String()),
		slog.Int("unmatched_a", d.unmatchedA.NumRows()),
		slog.Int("unmatched_b", d.unmatchedB.NumRows()),
		slog.Int("mismatches", d.mismatches.NumRows()),
	)

	return d, nil
}

// comparedColumns lists the non-key base names present on both sides,
// in A's column order.
func comparedColumns(a, b *table.Table, keys []string) []string {
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	var compared []string
	for _, name := range a.ColumnNames() {
		if !isKey[name] && b.HasColumn(name) {
			compared = append(compared, name)
		}
	}
	return compared
}

func isNumericKind(k value.Kind) bool {
	return k == value.KindInt || k == value.KindFloat
}

// RunID identifies this comparison in log output and reports.
func (d *Delta) RunID() string { return d.runID.String() }

// Keys returns the key column names.
func (d *Delta) Keys() []string { return append([]string(nil), d.keys...) }

// UnmatchedA holds the rows whose key exists only in A.
func (d *Delta) UnmatchedA() *table.Table { return d.unmatchedA }

// UnmatchedB holds the rows whose key exists only in B.
func (d *Delta) UnmatchedB() *table.Table { return d.unmatchedB }

// Mismatches holds the matched rows where at least one compared column
// differs, re-indexed from zero.
func (d *Delta) Mismatches() *table.Table { return d.mismatches }

// ComparedColumns lists the base names of the columns that were
// compared.
func (d *Delta) ComparedColumns() []string {
	return append([]string(nil), d.compared...)
}

// Changed projects Mismatches onto the key columns plus the two
// suffixed variants of column. Fails with a *errs.SchemaError when the
// column was not part of the comparison.
func (d *Delta) Changed(column string) (*table.Table, error) {
	found := false
	for _, c := range d.compared {
		if c == column {
			found = true
			break
		}
	}
	if !found {
		return nil, errs.NewSchemaError("", column, "changed")
	}
	names := append(append([]string(nil), d.keys...), column+SuffixA, column+SuffixB)
	return d.mismatches.Select(names...)
}
