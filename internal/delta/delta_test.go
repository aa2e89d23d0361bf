package delta_test

import (
	"errors"
	"testing"

	"github.com/deltakit/deltakit/internal/delta"
	"github.com/deltakit/deltakit/internal/domain/errs"
	"github.com/deltakit/deltakit/internal/domain/table"
	"github.com/deltakit/deltakit/internal/domain/value"
	"github.com/deltakit/deltakit/internal/testutil"
)

func TestDelta_PriceComparison(t *testing.T) {
	d, err := delta.New(testutil.PricesTableA(), testutil.PricesTableB(), []string{"id"})
	testutil.AssertNoError(t, err, "building delta")

	testutil.AssertRowCount(t, d.UnmatchedA(), 1, "unmatched_a")
	testutil.AssertCell(t, d.UnmatchedA(), "id", 0, value.Int(1), "unmatched_a key")

	testutil.AssertRowCount(t, d.UnmatchedB(), 1, "unmatched_b")
	testutil.AssertCell(t, d.UnmatchedB(), "id", 0, value.Int(4), "unmatched_b key")

	testutil.AssertRowCount(t, d.Mismatches(), 1, "mismatches")
	testutil.AssertCell(t, d.Mismatches(), "id", 0, value.Int(3), "mismatch key")
	testutil.AssertCell(t, d.Mismatches(), "price_a", 0, value.Int(300), "mismatch A value")
	testutil.AssertCell(t, d.Mismatches(), "price_b", 0, value.Int(250), "mismatch B value")
}

func TestDelta_RelativeTolerance(t *testing.T) {
	a := table.MustNew(
		testutil.IntColumn("id", 1),
		testutil.FloatColumn("value", 100.25),
	)
	b := table.MustNew(
		testutil.IntColumn("id", 1),
		testutil.FloatColumn("value", 100.0),
	)

	d, err := delta.New(a, b, []string{"id"}, delta.WithTolerance(0, 0.001))
	testutil.AssertNoError(t, err, "building delta with rel_tol 0.001")
	testutil.AssertRowCount(t, d.Mismatches(), 1, "0.25 exceeds 0.1 allowance")

	d, err = delta.New(a, b, []string{"id"}, delta.WithTolerance(0, 0.0025))
	testutil.AssertNoError(t, err, "building delta with rel_tol 0.0025")
	testutil.AssertRowCount(t, d.Mismatches(), 0, "0.25 within 0.25 allowance")
}

func TestDelta_SwapSymmetry(t *testing.T) {
	ab, err := delta.New(testutil.PricesTableA(), testutil.PricesTableB(), []string{"id"})
	testutil.AssertNoError(t, err, "A vs B")
	ba, err := delta.New(testutil.PricesTableB(), testutil.PricesTableA(), []string{"id"})
	testutil.AssertNoError(t, err, "B vs A")

	// Rows unique to A surface as unmatched_a one way and unmatched_b
	// the other way, with the populated values on opposite suffixes.
	testutil.AssertRowCount(t, ba.UnmatchedB(), ab.UnmatchedA().NumRows(), "swapped unmatched counts")
	testutil.AssertCell(t, ab.UnmatchedA(), "id", 0, value.Int(1), "unmatched key A-vs-B")
	testutil.AssertCell(t, ba.UnmatchedB(), "id", 0, value.Int(1), "unmatched key B-vs-A")
	testutil.AssertCell(t, ab.UnmatchedA(), "price_a", 0, value.Int(100), "populated side A-vs-B")
	testutil.AssertCell(t, ba.UnmatchedB(), "price_b", 0, value.Int(100), "populated side B-vs-A")

	testutil.AssertRowCount(t, ba.Mismatches(), ab.Mismatches().NumRows(), "mismatch counts agree")
}

func TestDelta_Changed(t *testing.T) {
	d, err := delta.New(testutil.PricesTableA(), testutil.PricesTableB(), []string{"id"})
	testutil.AssertNoError(t, err, "building delta")

	changed, err := d.Changed("price")
	testutil.AssertNoError(t, err, "changed on compared column")
	testutil.AssertRowCount(t, changed, 1, "changed rows")
	testutil.AssertColumnExists(t, changed, "id", "key retained")
	testutil.AssertColumnExists(t, changed, "price_a", "A variant")
	testutil.AssertColumnExists(t, changed, "price_b", "B variant")
	if got := len(changed.ColumnNames()); got != 3 {
		t.Errorf("changed projection has %d columns, want 3", got)
	}

	_, err = d.Changed("nope")
	testutil.AssertError(t, err, "changed on unknown column")
	var schemaErr *errs.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *errs.SchemaError, got %T", err)
	}
	if schemaErr.Column != "nope" {
		t.Errorf("error names column %q, want %q", schemaErr.Column, "nope")
	}
}

func TestDelta_NullsAlwaysMismatch(t *testing.T) {
	a := table.MustNew(
		testutil.IntColumn("id", 1),
		table.Column{Name: "amount", Kind: value.KindFloat, Values: []value.Value{value.Null()}},
	)
	b := table.MustNew(
		testutil.IntColumn("id", 1),
		table.Column{Name: "amount", Kind: value.KindFloat, Values: []value.Value{value.Null()}},
	)

	d, err := delta.New(a, b, []string{"id"})
	testutil.AssertNoError(t, err, "building delta")
	testutil.AssertRowCount(t, d.Mismatches(), 1, "null vs null counts as a mismatch")
}

func TestDelta_WhitespaceTrimmedBeforeCompare(t *testing.T) {
	a := table.MustNew(
		testutil.TextColumn("id", "k1"),
		testutil.TextColumn("status", "  ok"),
	)
	b := table.MustNew(
		testutil.TextColumn("id", " k1 "),
		testutil.TextColumn("status", "ok  "),
	)

	d, err := delta.New(a, b, []string{"id"})
	testutil.AssertNoError(t, err, "building delta")
	testutil.AssertRowCount(t, d.UnmatchedA(), 0, "padded keys still match")
	testutil.AssertRowCount(t, d.Mismatches(), 0, "padded values compare clean")
}

func TestDelta_PartitionCompleteness(t *testing.T) {
	a := testutil.PricesTableA()
	b := testutil.PricesTableB()
	d, err := delta.New(a, b, []string{"id"})
	testutil.AssertNoError(t, err, "building delta")

	matchedKeys := a.NumRows() - d.UnmatchedA().NumRows()
	if want := b.NumRows() - d.UnmatchedB().NumRows(); matchedKeys != want {
		t.Errorf("matched counts disagree: %d from A, %d from B", matchedKeys, want)
	}
	if d.Mismatches().NumRows() > matchedKeys {
		t.Errorf("mismatches (%d) exceed matched rows (%d)", d.Mismatches().NumRows(), matchedKeys)
	}
}

func TestDelta_InputsNotMutated(t *testing.T) {
	a := table.MustNew(
		testutil.TextColumn("id", " k1 "),
		testutil.IntColumn("v", 1),
	)
	b := table.MustNew(
		testutil.TextColumn("id", "k1"),
		testutil.IntColumn("v", 1),
	)

	_, err := delta.New(a, b, []string{"id"})
	testutil.AssertNoError(t, err, "building delta")
	testutil.AssertCell(t, a, "id", 0, value.Text(" k1 "), "caller table untouched by trim")
}

func TestDelta_ComparedColumns(t *testing.T) {
	a := table.MustNew(
		testutil.IntColumn("id", 1),
		testutil.IntColumn("qty", 5),
		testutil.TextColumn("only_a", "x"),
	)
	b := table.MustNew(
		testutil.IntColumn("id", 1),
		testutil.IntColumn("qty", 5),
		testutil.TextColumn("only_b", "y"),
	)

	d, err := delta.New(a, b, []string{"id"})
	testutil.AssertNoError(t, err, "building delta")

	compared := d.ComparedColumns()
	if len(compared) != 1 || compared[0] != "qty" {
		t.Errorf("compared columns = %v, want [qty]", compared)
	}
}
