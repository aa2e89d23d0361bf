// Package expect turns free-text, semi-structured rule lines into
// structured column and row expectations and evaluates them against a
// table, producing a pass/fail report with per-rule diagnostics.
package expect

import (
	"fmt"
	"strings"

	"github.com/deltakit/deltakit/internal/domain/value"
)

// Nullability is a column rule's null policy.
type Nullability int

const (
	NullsUnspecified Nullability = iota
	NullsForbidden
	NullsAllowed
)

// ColumnRule is a column-level expectation. Every field except Column
// is optional; a rule with no constraints set passes vacuously.
type ColumnRule struct {
	Column        string
	Unique        bool
	Kind          value.Kind // KindNull means no type expectation
	Format        string     // expected date format (strftime or Go layout)
	AllowedValues []string
	Regex         string
	Nulls         Nullability
}

// HasAllowedValues reports whether an allowed-value set was declared.
func (r ColumnRule) HasAllowedValues() bool { return len(r.AllowedValues) > 0 }

// RowRule is a boolean expression every row must satisfy.
type RowRule struct {
	Description string
	Expression  string
}

// ColumnResult is the outcome of one column rule.
type ColumnResult struct {
	Column      string
	Passed      bool
	Diagnostics []string
}

// RuleResult is the outcome of one row rule or custom validator.
type RuleResult struct {
	Description    string
	Passed         bool
	FailingIndices []int
	Message        string
}

// Report aggregates every rule outcome for one evaluation. Passed is
// the AND over all sub-results.
type Report struct {
	Passed        bool
	ColumnResults []ColumnResult
	RowResults    []RuleResult
	CustomResults []RuleResult
}

// HumanReadable renders the report as deterministic multi-line text.
// Sections with zero items are omitted entirely.
func (r *Report) HumanReadable() string {
	status := "FAILED"
	if r.Passed {
		status = "PASSED"
	}
	lines := []string{fmt.Sprintf("Expectation report: %s", status)}

	if len(r.ColumnResults) > 0 {
		lines = append(lines, "Columns:")
		for _, res := range r.ColumnResults {
			details := ""
			if len(res.Diagnostics) > 0 {
				details = " -> " + strings.Join(res.Diagnostics, " | ")
			}
			lines = append(lines, fmt.Sprintf("- %s: %s%s", res.Column, passFail(res.Passed), details))
		}
	}

	if len(r.RowResults) > 0 {
		lines = append(lines, "Row rules:")
		for _, res := range r.RowResults {
			lines = append(lines, ruleLine(res))
		}
	}

	if len(r.CustomResults) > 0 {
		lines = append(lines, "Custom validators:")
		for _, res := range r.CustomResults {
			lines = append(lines, ruleLine(res))
		}
	}

	return strings.Join(lines, "\n")
}

func (r *Report) String() string { return r.HumanReadable() }

func ruleLine(res RuleResult) string {
	details := ""
	if res.Message != "" {
		details = " -> " + res.Message
	}
	return fmt.Sprintf("- %s: %s%s", res.Description, passFail(res.Passed), details)
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}
