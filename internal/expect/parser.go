package expect

import (
	"regexp"
	"strings"

	"github.com/deltakit/deltakit/internal/domain/value"
)

// Rule lines take two shapes:
//
//	expect column id to be unique and not null
//	column status: allowed values {ok, pending}
//	rows must satisfy amount >= 0
//
// Lines with no recognizable column reference are silently discarded.

var (
	columnLineRe = regexp.MustCompile(`(?i)^(?:expect\s+)?column\s+([\w .-]+?)\s*(?:\bto\b|:)?\s+(.+)$`)
	tokenSplitRe = regexp.MustCompile(`(?i)[,;]|\band\b`)

	formatRe    = regexp.MustCompile(`(?i)format\s+(.+)`)
	allowedRe   = regexp.MustCompile(`(?i)allowed\s+values?\W*(.+)`)
	valuesInRe  = regexp.MustCompile(`(?i)values?\s+in\s+(.+)`)
	regexRe     = regexp.MustCompile(`(?i)regex\s+(.+)`)
	matchesRe   = regexp.MustCompile(`(?i)match(?:es)?\s+(.+)`)
	listChopRe  = regexp.MustCompile(`(?i);|\band\b`)
	orSplitRe   = regexp.MustCompile(`(?i)\bor\b`)
	rowPrefixes = []string{"rows must", "every row must", "expect rows"}
)

// Parse splits a block of rule text into lines and parses each one.
func Parse(text string) ([]ColumnRule, []RowRule) {
	return ParseLines(strings.Split(text, "\n"))
}

// ParseLines parses one rule per entry. Unparseable entries are
// discarded, not errors: rule text is user input and the permissive
// contract is deliberate.
func ParseLines(lines []string) ([]ColumnRule, []RowRule) {
	var columnRules []ColumnRule
	var rowRules []RowRule

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if isRowRuleLine(line) {
			rowRules = append(rowRules, parseRowRule(line))
			continue
		}

		name, body, ok := splitColumnLine(line)
		if !ok {
			continue
		}
		columnRules = append(columnRules, parseColumnBody(name, body))
	}

	return columnRules, rowRules
}

func isRowRuleLine(line string) bool {
	lowered := strings.ToLower(line)
	for _, prefix := range rowPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	return false
}

// parseRowRule extracts the boolean expression: the remainder after
// "satisfy" when present, else after "must", else the whole line.
func parseRowRule(line string) RowRule {
	lowered := strings.ToLower(line)
	expression := line
	if i := strings.Index(lowered, "satisfy"); i >= 0 {
		expression = strings.TrimSpace(line[i+len("satisfy"):])
	} else if i := strings.Index(lowered, "must"); i >= 0 {
		expression = strings.TrimSpace(line[i+len("must"):])
	}
	return RowRule{Description: line, Expression: expression}
}

// splitColumnLine extracts the column name and constraint body. The
// explicit "column <name> to/: <body>" shape wins; otherwise the line
// splits on its first colon.
func splitColumnLine(line string) (name, body string, ok bool) {
	if m := columnLineRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}
	if i := strings.Index(line, ":"); i >= 0 {
		name = strings.TrimSpace(line[:i])
		if lowered := strings.ToLower(name); strings.HasPrefix(lowered, "column") {
			name = strings.TrimSpace(name[len("column"):])
		}
		body = strings.TrimSpace(line[i+1:])
		if name != "" && body != "" {
			return name, body, true
		}
	}
	return "", "", false
}

// recognizer scans one constraint token. A consuming recognizer stops
// the chain for that token.
type recognizer func(token, lowered string, rule *ColumnRule) (hit, consume bool)

// Ordered chain, first consuming match wins per token. Kind detection
// deliberately does not consume so that a token like "datetime format
// %Y-%m-%d" yields both a type and a format.
var recognizers = []recognizer{
	recognizeUnique,
	recognizeNotNull,
	recognizeAllowNull,
	recognizeAllowedValues,
	recognizeRegex,
	recognizeKind,
	recognizeFormat,
}

func parseColumnBody(name, body string) ColumnRule {
	rule := ColumnRule{Column: name}

	// Allowed-value sets may contain commas, so try the full body
	// before comma tokenization rips the set apart.
	if values := extractAllowedValues(body); values != nil {
		rule.AllowedValues = values
	}

	for _, rawToken := range tokenSplitRe.Split(body, -1) {
		token := strings.TrimSpace(rawToken)
		if token == "" {
			continue
		}
		lowered := strings.ToLower(token)
		for _, recognize := range recognizers {
			hit, consume := recognize(token, lowered, &rule)
			if hit && consume {
				break
			}
		}
	}

	return rule
}

func recognizeUnique(_, lowered string, rule *ColumnRule) (bool, bool) {
	if strings.Contains(lowered, "unique") {
		rule.Unique = true
		return true, true
	}
	return false, false
}

func recognizeNotNull(_, lowered string, rule *ColumnRule) (bool, bool) {
	for _, phrase := range []string{"not null", "no null", "non-null"} {
		if strings.Contains(lowered, phrase) {
			rule.Nulls = NullsForbidden
			return true, true
		}
	}
	return false, false
}

func recognizeAllowNull(_, lowered string, rule *ColumnRule) (bool, bool) {
	if strings.Contains(lowered, "allow null") {
		rule.Nulls = NullsAllowed
		return true, true
	}
	return false, false
}

func recognizeAllowedValues(token, _ string, rule *ColumnRule) (bool, bool) {
	if rule.HasAllowedValues() {
		return false, false
	}
	if values := extractAllowedValues(token); values != nil {
		rule.AllowedValues = values
		return true, true
	}
	return false, false
}

func recognizeRegex(token, _ string, rule *ColumnRule) (bool, bool) {
	if m := regexRe.FindStringSubmatch(token); m != nil {
		rule.Regex = strings.TrimSpace(m[1])
		return true, true
	}
	if m := matchesRe.FindStringSubmatch(token); m != nil {
		rule.Regex = strings.TrimSpace(m[1])
		return true, true
	}
	return false, false
}

func recognizeKind(_, lowered string, rule *ColumnRule) (bool, bool) {
	kind, ok := extractKind(lowered)
	if !ok {
		return false, false
	}
	rule.Kind = kind
	return true, false
}

func recognizeFormat(token, _ string, rule *ColumnRule) (bool, bool) {
	if m := formatRe.FindStringSubmatch(token); m != nil {
		rule.Format = strings.TrimSpace(m[1])
		return true, true
	}
	return false, false
}

func extractKind(lowered string) (value.Kind, bool) {
	switch {
	case strings.Contains(lowered, "integer"), strings.Contains(lowered, "int"):
		return value.KindInt, true
	case strings.Contains(lowered, "float"),
		strings.Contains(lowered, "double"),
		strings.Contains(lowered, "numeric"):
		return value.KindFloat, true
	case strings.Contains(lowered, "string"), strings.Contains(lowered, "text"):
		return value.KindText, true
	case strings.Contains(lowered, "datetime"), strings.Contains(lowered, "date"):
		return value.KindTime, true
	default:
		return value.KindNull, false
	}
}

// extractAllowedValues parses "allowed values {a, b}" / "values in
// (a or b)" style sets: brace/bracket/paren-delimited, comma- or
// "or"-separated, quotes stripped.
func extractAllowedValues(text string) []string {
	m := allowedRe.FindStringSubmatch(text)
	if m == nil {
		m = valuesInRe.FindStringSubmatch(text)
	}
	if m == nil {
		return nil
	}

	part := strings.TrimSpace(m[1])
	part = strings.TrimSpace(listChopRe.Split(part, 2)[0])
	part = strings.Trim(part, "{}[]()")

	var values []string
	seen := make(map[string]bool)
	for _, chunk := range orSplitRe.Split(part, -1) {
		for _, item := range strings.Split(chunk, ",") {
			v := strings.Trim(strings.TrimSpace(item), `'"`)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			values = append(values, v)
		}
	}
	return values
}
