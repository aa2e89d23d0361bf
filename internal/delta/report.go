package delta

import (
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/deltakit/deltakit/internal/domain/table"
)

// ReportSampleRows caps how many rows of each partition the HTML
// report embeds.
const ReportSampleRows = 50

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Delta Report</title>
    <style>
        body { font-family: sans-serif; margin: 2rem; }
        h1 { color: #333; }
        .summary { margin-bottom: 2rem; }
        .summary-item { margin: 0.5rem 0; font-weight: bold; }
        table { border-collapse: collapse; width: 100%; margin-bottom: 2rem; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        .section-title { margin-top: 2rem; color: #555; border-bottom: 2px solid #eee; padding-bottom: 0.5rem; }
        .run-id { color: #999; font-size: 0.8rem; }
    </style>
</head>
<body>
    <h1>Delta Report</h1>
    <p class="run-id">run {{.RunID}}</p>

    <div class="summary">
        <div class="summary-item">Rows in A only: {{.UnmatchedACount}}</div>
        <div class="summary-item">Rows in B only: {{.UnmatchedBCount}}</div>
        <div class="summary-item">Mismatched rows: {{.MismatchCount}}</div>
    </div>
{{range .Sections}}
    <h2 class="section-title">{{.Title}}</h2>
    <table>
        <thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
        <tbody>
        {{- range .Rows}}
        <tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
        {{- end}}
        </tbody>
    </table>
{{end}}
</body>
</html>
`))

type reportSection struct {
	Title   string
	Headers []string
	Rows    [][]string
}

type reportData struct {
	RunID           string
	UnmatchedACount int
	UnmatchedBCount int
	MismatchCount   int
	Sections        []reportSection
}

// WriteHTML renders the comparison report: the three summary counts
// followed by up to ReportSampleRows rows for each non-empty partition.
// Cell values are escaped by the template engine.
func (d *Delta) WriteHTML(w io.Writer) error {
	data := reportData{
		RunID:           d.RunID(),
		UnmatchedACount: d.unmatchedA.NumRows(),
		UnmatchedBCount: d.unmatchedB.NumRows(),
		MismatchCount:   d.mismatches.NumRows(),
	}

	for _, part := range []struct {
		title string
		tbl   *table.Table
	}{
		{fmt.Sprintf("Rows in A only (Top %d)", ReportSampleRows), d.unmatchedA},
		{fmt.Sprintf("Rows in B only (Top %d)", ReportSampleRows), d.unmatchedB},
		{fmt.Sprintf("Mismatches (Top %d)", ReportSampleRows), d.mismatches},
	} {
		if part.tbl.NumRows() == 0 {
			continue
		}
		data.Sections = append(data.Sections, sectionOf(part.title, part.tbl))
	}

	return reportTmpl.Execute(w, data)
}

// SaveHTML writes the report to path.
func (d *Delta) SaveHTML(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := d.WriteHTML(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func sectionOf(title string, tbl *table.Table) reportSection {
	sample := tbl.Head(ReportSampleRows)
	rows := make([][]string, sample.NumRows())
	for i := range rows {
		row := make([]string, sample.NumCols())
		for c := 0; c < sample.NumCols(); c++ {
			row[c] = sample.ColumnAt(c).Values[i].String()
		}
		rows[i] = row
	}
	return reportSection{Title: title, Headers: sample.ColumnNames(), Rows: rows}
}
