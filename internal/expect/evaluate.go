package expect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/deltakit/deltakit/internal/domain/errs"
	"github.com/deltakit/deltakit/internal/domain/table"
	"github.com/deltakit/deltakit/internal/domain/value"
	"github.com/deltakit/deltakit/internal/expect/expr"
)

// sampleLimit caps how many offending values a diagnostic reproduces.
const sampleLimit = 5

// Validator is a caller-supplied predicate over the whole table. Check
// may return a bool (whole-table verdict), a []bool (one verdict per
// row) or a *RuleResult (pre-built outcome). Any other return value is
// a *errs.ValidatorContractError.
type Validator struct {
	Description string
	Check       func(*table.Table) interface{}
}

// Evaluate applies every rule and validator to tbl and aggregates the
// outcomes. Rule-level failures are isolated per rule; the only error
// this returns is the fatal validator contract violation.
func Evaluate(
	tbl *table.Table,
	columnRules []ColumnRule,
	rowRules []RowRule,
	validators []Validator,
) (*Report, error) {
	report := &Report{Passed: true}

	for _, rule := range columnRules {
		res := validateColumn(tbl, rule)
		report.Passed = report.Passed && res.Passed
		report.ColumnResults = append(report.ColumnResults, res)
	}

	for _, rule := range rowRules {
		res := validateRowRule(tbl, rule)
		report.Passed = report.Passed && res.Passed
		report.RowResults = append(report.RowResults, res)
	}

	for _, v := range validators {
		res, err := runValidator(tbl, v)
		if err != nil {
			return nil, err
		}
		report.Passed = report.Passed && res.Passed
		report.CustomResults = append(report.CustomResults, res)
	}

	return report, nil
}

func validateColumn(tbl *table.Table, rule ColumnRule) ColumnResult {
	var diagnostics []string

	col, ok := tbl.Column(rule.Column)
	if !ok {
		return ColumnResult{
			Column:      rule.Column,
			Diagnostics: []string{"column missing"},
		}
	}

	if rule.Nulls == NullsForbidden {
		var indices []int
		for i, v := range col.Values {
			if v.IsNull() {
				indices = append(indices, i)
			}
		}
		if len(indices) > 0 {
			diagnostics = append(diagnostics,
				fmt.Sprintf("nulls forbidden; rows %s", formatIndices(indices)))
		}
	}

	if rule.Unique {
		if diag := checkUnique(col); diag != "" {
			diagnostics = append(diagnostics, diag)
		}
	}

	if rule.Kind != value.KindNull {
		if diag := checkKind(col, rule); diag != "" {
			diagnostics = append(diagnostics, diag)
		}
	}

	if rule.HasAllowedValues() {
		if diag := checkAllowedValues(col, rule.AllowedValues); diag != "" {
			diagnostics = append(diagnostics, diag)
		}
	}

	if rule.Regex != "" {
		if diag := checkRegex(col, rule.Regex); diag != "" {
			diagnostics = append(diagnostics, diag)
		}
	}

	return ColumnResult{
		Column:      rule.Column,
		Passed:      len(diagnostics) == 0,
		Diagnostics: diagnostics,
	}
}

// checkUnique flags every row whose value occurs more than once. Two
// nulls count as duplicates of each other.
func checkUnique(col table.Column) string {
	counts := make(map[string]int, len(col.Values))
	for _, v := range col.Values {
		counts[uniqueKey(v)]++
	}

	var indices []int
	var samples []string
	for i, v := range col.Values {
		if counts[uniqueKey(v)] > 1 {
			indices = append(indices, i)
			if len(samples) < sampleLimit {
				samples = append(samples, v.String())
			}
		}
	}
	if len(indices) == 0 {
		return ""
	}
	return fmt.Sprintf("expected unique values; duplicate rows %s; samples: %s",
		formatIndices(indices), formatSamples(samples))
}

func uniqueKey(v value.Value) string {
	if v.IsNull() {
		return "\x00null"
	}
	if f, ok := v.AsFloat(); ok {
		return "n:" + value.Float(f).String()
	}
	return "s:" + v.String()
}

func checkKind(col table.Column, rule ColumnRule) string {
	var layouts []string
	if rule.Format != "" {
		layouts = []string{value.NormalizeLayout(rule.Format)}
	}

	var indices []int
	var samples []string
	for i, v := range col.Values {
		if v.IsNull() {
			continue
		}
		if kindMatches(v, rule.Kind, layouts) {
			continue
		}
		indices = append(indices, i)
		if len(samples) < sampleLimit {
			samples = append(samples, v.String())
		}
	}
	if len(indices) == 0 {
		return ""
	}

	diag := fmt.Sprintf("expected %s; rows %s; samples: %s",
		kindLabel(rule.Kind), formatIndices(indices), formatSamples(samples))
	if rule.Kind == value.KindTime && rule.Format != "" {
		diag += fmt.Sprintf("; format=%s", rule.Format)
	}
	return diag
}

// kindMatches applies the declared type category to one cell. Integer
// tolerates any numeric whose fractional part is exactly zero.
func kindMatches(v value.Value, kind value.Kind, layouts []string) bool {
	switch kind {
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

func kindLabel(k value.Kind) string {
	switch k {
	case value.KindInt:
		return "integer"
	case value.KindFloat:
		return "float"
	case value.KindText:
		return "string"
	case value.KindTime:
		return "datetime"
	default:
		return strings.ToLower(k.String())
	}
}

func checkAllowedValues(col table.Column, allowed []string) string {
	member := make(map[string]bool, len(allowed))
	for _, v := range allowed {
		member[v] = true
	}

	var indices []int
	var samples []string
	for i, v := range col.Values {
		if v.IsNull() || member[v.String()] {
			continue
		}
		indices = append(indices, i)
		if len(samples) < sampleLimit {
			samples = append(samples, v.String())
		}
	}
	if len(indices) == 0 {
		return ""
	}
	return fmt.Sprintf("unexpected values; rows %s; samples: %s",
		formatIndices(indices), formatSamples(samples))
}

func checkRegex(col table.Column, pattern string) string {
	// Anchor so the whole stringified value must match.
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return fmt.Sprintf("invalid regex /%s/: %v", pattern, err)
	}

	var indices []int
	var samples []string
	for i, v := range col.Values {
		if v.IsNull() {
			continue
		}
		s := v.String()
		if re.MatchString(s) {
			continue
		}
		indices = append(indices, i)
		if len(samples) < sampleLimit {
			samples = append(samples, s)
		}
	}
	if len(indices) == 0 {
		return ""
	}
	return fmt.Sprintf("regex mismatch /%s/; rows %s; samples: %s",
		pattern, formatIndices(indices), formatSamples(samples))
}

// validateRowRule evaluates the rule's expression once per row. A row
// evaluating false fails that row; an evaluation error fails the
// entire rule and records the error text.
func validateRowRule(tbl *table.Table, rule RowRule) RuleResult {
	parsed, err := expr.Parse(rule.Expression)
	if err != nil {
		return failWholeRule(tbl, rule, err)
	}

	var failing []int
	for i := 0; i < tbl.NumRows(); i++ {
		ok, err := expr.EvalBool(parsed, tbl.Row(i))
		if err != nil {
			return failWholeRule(tbl, rule, err)
		}
		if !ok {
			failing = append(failing, i)
		}
	}

	res := RuleResult{
		Description:    rule.Description,
		Passed:         len(failing) == 0,
		FailingIndices: failing,
	}
	if len(failing) > 0 {
		res.Message = fmt.Sprintf("rows failing rule '%s': %s",
			rule.Expression, formatIndices(failing))
	}
	return res
}

func failWholeRule(tbl *table.Table, rule RowRule, cause error) RuleResult {
	failing := make([]int, tbl.NumRows())
	for i := range failing {
		failing[i] = i
	}
	evalErr := errs.NewRuleEvaluationError(rule.Expression, "%v", cause)
	return RuleResult{
		Description:    rule.Description,
		FailingIndices: failing,
		Message:        evalErr.Error(),
	}
}

// runValidator normalizes a custom validator's return value into a
// RuleResult.
func runValidator(tbl *table.Table, v Validator) (RuleResult, error) {
	description := v.Description
	if description == "" {
		description = "custom validator"
	}

	outcome := v.Check(tbl)
	switch verdict := outcome.(type) {
	case *RuleResult:
		res := *verdict
		if res.Description == "" {
			res.Description = description
		}
		return res, nil

	case bool:
		res := RuleResult{Description: description, Passed: verdict}
		if !verdict {
			res.FailingIndices = make([]int, tbl.NumRows())
			for i := range res.FailingIndices {
				res.FailingIndices[i] = i
			}
			res.Message = fmt.Sprintf("validator '%s' failed", description)
		}
		return res, nil

	case []bool:
		if len(verdict) != tbl.NumRows() {
			return RuleResult{}, &errs.ValidatorContractError{
				Validator: description,
				Got: fmt.Sprintf("[]bool of length %d for %d rows",
					len(verdict), tbl.NumRows()),
			}
		}
		var failing []int
		for i, ok := range verdict {
			if !ok {
				failing = append(failing, i)
			}
		}
		res := RuleResult{
			Description:    description,
			Passed:         len(failing) == 0,
			FailingIndices: failing,
		}
		if len(failing) > 0 {
			res.Message = fmt.Sprintf("rows failing custom validator '%s': %s",
				description, formatIndices(failing))
		}
		return res, nil

	default:
		return RuleResult{}, &errs.ValidatorContractError{Validator: description, Got: outcome}
	}
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
