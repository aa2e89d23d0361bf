package errs

import (
	"fmt"
	"strings"
)

// SchemaError reports a structural problem with a table's columns: a
// required key or comparison column that is missing, or a column whose
// name clashes inside a derived schema. Structural: callers are
// expected to abort the whole operation.
type SchemaError struct {
	Table   string // table label ("A", "B", or a file name); may be empty
	Column  string // offending column name
	Op      string // operation that needed the column ("join", "changed", ...)
	Problem string // defaults to "not found"
}

func (e *SchemaError) Error() string {
	problem := e.Problem
	if problem == "" {
		problem = "not found"
	}
	var parts []string
	parts = append(parts, fmt.Sprintf("column %q %s", e.Column, problem))
	if e.Table != "" {
		parts = append(parts, fmt.Sprintf("in table %s", e.Table))
	}
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("during %s", e.Op))
	}
	return strings.Join(parts, " ")
}

func NewSchemaError(table, column, op string) *SchemaError {
	return &SchemaError{Table: table, Column: column, Op: op}
}

// RuleEvaluationError reports a row-rule expression that failed to
// evaluate. Callers downgrade it to a failing result for that rule only.
type RuleEvaluationError struct {
	Rule   string // expression or rule description
	Reason string
}

func (e *RuleEvaluationError) Error() string {
	return fmt.Sprintf("failed to evaluate rule %q: %s", e.Rule, e.Reason)
}

func NewRuleEvaluationError(rule, format string, args ...interface{}) *RuleEvaluationError {
	return &RuleEvaluationError{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}

// ValidatorContractError reports a custom validator returning a value
// outside the accepted shapes. Always fatal: it indicates caller misuse.
type ValidatorContractError struct {
	Validator string
	Got       interface{}
}

func (e *ValidatorContractError) Error() string {
	// A string Got is a prepared description (e.g. a length mismatch);
	// anything else is an unexpected return whose type is the detail.
	got, ok := e.Got.(string)
	if !ok {
		got = fmt.Sprintf("%T", e.Got)
	}
	return fmt.Sprintf(
		"custom validator %q must return a bool, []bool, or *expect.RuleResult, got %s",
		e.Validator, got,
	)
}
