package delta_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deltakit/deltakit/internal/delta"
	"github.com/deltakit/deltakit/internal/domain/table"
	"github.com/deltakit/deltakit/internal/testutil"
)

func renderReport(t *testing.T, d *delta.Delta) string {
	t.Helper()
	var buf bytes.Buffer
	if err := d.WriteHTML(&buf); err != nil {
		t.Fatalf("rendering report: %v", err)
	}
	return buf.String()
}

func TestWriteHTML_SummaryAndSections(t *testing.T) {
	d, err := delta.New(testutil.PricesTableA(), testutil.PricesTableB(), []string{"id"})
	testutil.AssertNoError(t, err, "building delta")

	html := renderReport(t, d)

	for _, want := range []string{
		"Rows in A only: 1",
		"Rows in B only: 1",
		"Mismatched rows: 1",
		"Rows in A only (Top 50)",
		"Rows in B only (Top 50)",
		"Mismatches (Top 50)",
		"run " + d.RunID(),
		"<th>price_a</th>",
		"<th>price_b</th>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestWriteHTML_OmitsEmptySections(t *testing.T) {
	a := testutil.PricesTableA()
	d, err := delta.New(a, a, []string{"id"})
	testutil.AssertNoError(t, err, "building delta of identical tables")

	html := renderReport(t, d)

	if strings.Contains(html, "section-title") {
		t.Error("identical inputs should render no partition sections")
	}
	if !strings.Contains(html, "Mismatched rows: 0") {
		t.Error("summary counts should still be present")
	}
}

func TestWriteHTML_EscapesCellValues(t *testing.T) {
	a := table.MustNew(
		testutil.IntColumn("id", 1),
		testutil.TextColumn("note", "<script>alert(1)</script>"),
	)
	b := table.MustNew(
		testutil.IntColumn("id", 1),
		testutil.TextColumn("note", "clean"),
	)

	d, err := delta.New(a, b, []string{"id"})
	testutil.AssertNoError(t, err, "building delta")

	html := renderReport(t, d)

	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("cell value rendered unescaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("expected escaped cell value in report")
	}
}

func TestSaveHTML(t *testing.T) {
	d, err := delta.New(testutil.PricesTableA(), testutil.PricesTableB(), []string{"id"})
	testutil.AssertNoError(t, err, "building delta")

	path := filepath.Join(t.TempDir(), "report.html")
	if err := d.SaveHTML(path); err != nil {
		t.Fatalf("saving report: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report back: %v", err)
	}
	if !strings.Contains(string(raw), "Delta Report") {
		t.Error("saved report missing title")
	}
}
