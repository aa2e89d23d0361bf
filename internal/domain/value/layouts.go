package value

import "strings"

// DefaultTimeLayouts are tried in order when no explicit format is given.
// Unambiguous ISO-style layouts come first.
var DefaultTimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"20060102",
}

// strftime directives mapped onto Go's reference time. Rule text tends to
// carry formats like "%Y-%m-%d" from other tooling.
var strftimeTable = []struct {
	directive string
	layout    string
}{
	{"%Y", "2006"},
	{"%y", "06"},
	{"%m", "01"},
	{"%d", "02"},
	{"%H", "15"},
	{"%I", "03"},
	{"%M", "04"},
	{"%S", "05"},
	{"%p", "PM"},
	{"%b", "Jan"},
	{"%B", "January"},
	{"%a", "Mon"},
	{"%A", "Monday"},
	{"%z", "-0700"},
	{"%Z", "MST"},
	{"%%", "%"},
}

// NormalizeLayout turns a strftime-style format into a Go time layout.
// Strings without strftime directives pass through unchanged, so callers
// may supply native Go layouts directly.
func NormalizeLayout(format string) string {
	if !strings.Contains(format, "%") {
		return format
	}
	out := format
	for _, e := range strftimeTable {
		out = strings.ReplaceAll(out, e.directive, e.layout)
	}
	return out
}
