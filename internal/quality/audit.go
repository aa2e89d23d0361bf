// Package quality audits a single table for basic data quality issues:
// forbidden nulls, declared-type mismatches, unparseable dates, and
// cells that disagree with their column's predominant inferred
// category. Each finding becomes one row of the issues table.
package quality

import (
	"fmt"
	"sort"
	"strings"

	"github.com/deltakit/deltakit/internal/domain/table"
	"github.com/deltakit/deltakit/internal/domain/value"
)

const sampleLimit = 5

// Issue kinds surfaced by Audit.
const (
	IssueNullForbidden         = "null_forbidden"
	IssueKindMismatch          = "kind_mismatch"
	IssueInvalidDateFormat     = "invalid_date_format"
	IssueInferredKindMismatch  = "inferred_kind_mismatch"
)

// Options selects which audits run and against which declarations.
type Options struct {
	// AllowNulls maps a column to whether nulls are permitted. Columns
	// absent from the map are not null-checked.
	AllowNulls map[string]bool
	// ExpectedKinds declares a type category per column.
	ExpectedKinds map[string]value.Kind
	// DateFormats lists the layouts (strftime or Go) that must parse a
	// column's values.
	DateFormats map[string][]string
	// InferKinds audits columns without a declared kind against their
	// predominant inferred category.
	InferKinds bool
}

// DefaultOptions runs only the inference audit.
func DefaultOptions() Options {
	return Options{InferKinds: true}
}

type issue struct {
	column  string
	kind    string
	details string
}

// Audit inspects tbl and returns an issues table with columns
// "column", "issue" and "details", sorted by (column, issue).
func Audit(tbl *table.Table, opts Options) *table.Table {
	var issues []issue

	for column, allow := range opts.AllowNulls {
		if allow {
			continue
		}
		col, ok := tbl.Column(column)
		if !ok {
			continue
		}
		var indices []int
		for i, v := range col.Values {
			if v.IsNull() {
				indices = append(indices, i)
			}
		}
		if len(indices) > 0 {
			issues = append(issues, issue{
				column:  column,
				kind:    IssueNullForbidden,
				details: fmt.Sprintf("Rows %s; samples: [null]", formatIndices(indices)),
			})
		}
	}

	for column, expected := range opts.ExpectedKinds {
		col, ok := tbl.Column(column)
		if !ok {
			continue
		}
		indices, samples := kindMismatches(col, expected, nil)
		if len(indices) > 0 {
			issues = append(issues, issue{
				column: column,
				kind:   IssueKindMismatch,
				details: fmt.Sprintf("Expected %s; rows %s; samples: %s",
					categoryOfKind(expected), formatIndices(indices), formatSamples(samples)),
			})
		}
	}

	for column, formats := range opts.DateFormats {
		col, ok := tbl.Column(column)
		if !ok {
			continue
		}
		if col.Kind == value.KindTime {
			continue // already parsed as dates upstream
		}
		layouts := make([]string, len(formats))
		for i, f := range formats {
			layouts[i] = value.NormalizeLayout(f)
		}
		var indices []int
		var samples []string
		for i, v := range col.Values {
			if v.IsNull() {
				continue
			}
			if _, ok := v.CoerceTime(layouts...); ok {
				continue
			}
			indices = append(indices, i)
			if len(samples) < sampleLimit {
				samples = append(samples, v.String())
			}
		}
		if len(indices) > 0 {
			issues = append(issues, issue{
				column: column,
				kind:   IssueInvalidDateFormat,
				details: fmt.Sprintf("Rows %s; samples: %s",
					formatIndices(indices), formatSamples(samples)),
			})
		}
	}

	if opts.InferKinds {
		issues = append(issues, inferredMismatches(tbl, opts.ExpectedKinds)...)
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].column != issues[j].column {
			return issues[i].column < issues[j].column
		}
		return issues[i].kind < issues[j].kind
	})

	return issuesTable(issues)
}

// inferredMismatches votes each undeclared column's predominant
// category over its non-null cells and flags the dissenters.
func inferredMismatches(tbl *table.Table, declared map[string]value.Kind) []issue {
	var issues []issue
	for _, name := range tbl.ColumnNames() {
		if _, ok := declared[name]; ok {
			continue
		}
		col, _ := tbl.Column(name)

		counts := make(map[string]int)
		order := make([]string, 0, 4)
		for _, v := range col.Values {
			if v.IsNull() {
				continue
			}
			cat := categoryOf(v)
			if counts[cat] == 0 {
				order = append(order, cat)
			}
			counts[cat]++
		}
		if len(counts) < 2 {
			continue
		}

		predominant := order[0]
		for _, cat := range order {
			if counts[cat] > counts[predominant] {
				predominant = cat
			}
		}

		var indices []int
		var samples []string
		for i, v := range col.Values {
			if v.IsNull() || categoryOf(v) == predominant {
				continue
			}
			indices = append(indices, i)
			if len(samples) < sampleLimit {
				samples = append(samples, v.String())
			}
		}
		if len(indices) > 0 {
			issues = append(issues, issue{
				column: name,
				kind:   IssueInferredKindMismatch,
				details: fmt.Sprintf("Expected %s; rows %s; samples: %s",
					predominant, formatIndices(indices), formatSamples(samples)),
			})
		}
	}
	return issues
}

func kindMismatches(col table.Column, expected value.Kind, layouts []string) ([]int, []string) {
	var indices []int
	var samples []string
	for i, v := range col.Values {
		if v.IsNull() {
			continue
		}
		if matchesKind(v, expected, layouts) {
			continue
		}
		indices = append(indices, i)
		if len(samples) < sampleLimit {
			samples = append(samples, v.String())
		}
	}
	return indices, samples
}

func matchesKind(v value.Value, expected value.Kind, layouts []string) bool {
	switch expected {
	case value.KindInt:
		_, ok := v.CoerceInt()
		return ok
	case value.KindFloat:
		_, ok := v.CoerceFloat()
		return ok
	case value.KindText:
		return v.Kind() == value.KindText
	case value.KindTime:
		_, ok := v.CoerceTime(layouts...)
		return ok
	default:
		return true
	}
}

func categoryOf(v value.Value) string {
	switch v.Kind() {
	case value.KindTime:
		return "datetime"
	case value.KindInt:
		return "integer"
	case value.KindFloat:
		return "float"
	default:
		return "string"
	}
}

func categoryOfKind(k value.Kind) string {
	switch k {
	case value.KindInt:
		return "integer"
	case value.KindFloat:
		return "float"
	case value.KindTime:
		return "datetime"
	default:
		return "string"
	}
}

func issuesTable(issues []issue) *table.Table {
	columns := make([]value.Value, len(issues))
	kinds := make([]value.Value, len(issues))
	details := make([]value.Value, len(issues))
	for i, is := range issues {
		columns[i] = value.Text(is.column)
		kinds[i] = value.Text(is.kind)
		details[i] = value.Text(is.details)
	}
	return table.MustNew(
		table.Column{Name: "column", Kind: value.KindText, Values: columns},
		table.Column{Name: "issue", Kind: value.KindText, Values: kinds},
		table.Column{Name: "details", Kind: value.KindText, Values: details},
	)
}

func formatIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatSamples(samples []string) string {
	return "[" + strings.Join(samples, ", ") + "]"
}
