package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the type category a cell value belongs to.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindText
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindInt:
		return "INT"
	case KindFloat:
		return "FLOAT"
	case KindText:
		return "TEXT"
	case KindTime:
		return "TIME"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single table cell: a tagged variant over the supported
// scalar categories. The zero Value is Null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	t    time.Time
}

func Null() Value              { return Value{} }
func Int(v int64) Value        { return Value{kind: KindInt, i: v} }
func Float(v float64) Value    { return Value{kind: KindFloat, f: v} }
func Text(v string) Value      { return Value{kind: KindText, s: v} }
func Time(v time.Time) Value   { return Value{kind: KindTime, t: v} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == KindNull }

// IsNumeric reports whether the value carries an INT or FLOAT payload.
func (v Value) IsNumeric() bool {
	return v.kind == KindInt || v.kind == KindFloat
}

// Int returns the INT payload. Only meaningful when Kind() == KindInt.
func (v Value) Int() int64 { return v.i }

// Float returns the FLOAT payload. Only meaningful when Kind() == KindFloat.
func (v Value) Float() float64 { return v.f }

// Text returns the TEXT payload. Only meaningful when Kind() == KindText.
func (v Value) Text() string { return v.s }

// Time returns the TIME payload. Only meaningful when Kind() == KindTime.
func (v Value) Time() time.Time { return v.t }

// AsFloat converts INT and FLOAT payloads to float64.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// CoerceFloat is AsFloat extended to TEXT payloads that parse as numbers.
func (v Value) CoerceFloat() (float64, bool) {
	if f, ok := v.AsFloat(); ok {
		return f, true
	}
	if v.kind == KindText {
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}

// CoerceInt succeeds when CoerceFloat does and the fractional part is
// exactly zero.
func (v Value) CoerceInt() (int64, bool) {
	f, ok := v.CoerceFloat()
	if !ok {
		return 0, false
	}
	i := int64(f)
	if float64(i) != f {
		return 0, false
	}
	return i, true
}

// CoerceTime converts TIME payloads directly and attempts to parse TEXT
// payloads. When layouts is empty, DefaultTimeLayouts is used.
func (v Value) CoerceTime(layouts ...string) (time.Time, bool) {
	if v.kind == KindTime {
		return v.t, true
	}
	if v.kind != KindText {
		return time.Time{}, false
	}
	if len(layouts) == 0 {
		layouts = DefaultTimeLayouts
	}
	s := strings.TrimSpace(v.s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Equal reports exact equality. Nulls are never equal to anything,
// including another null. INT and FLOAT payloads compare numerically.
func (v Value) Equal(o Value) bool {
	if v.kind == KindNull || o.kind == KindNull {
		return false
	}
	if v.IsNumeric() && o.IsNumeric() {
		a, _ := v.AsFloat()
		b, _ := o.AsFloat()
		return a == b
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.s == o.s
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return false
	}
}

// TrimSpace strips leading/trailing whitespace from TEXT payloads and
// leaves every other kind untouched.
func (v Value) TrimSpace() Value {
	if v.kind != KindText {
		return v
	}
	return Text(strings.TrimSpace(v.s))
}

// String renders the value for display and CSV output. Nulls render empty.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindTime:
		if v.t.Hour() == 0 && v.t.Minute() == 0 && v.t.Second() == 0 {
			return v.t.Format("2006-01-02")
		}
		return v.t.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// ParseKind maps the type names accepted by rules and configs to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer":
		return KindInt, true
	case "float", "double", "numeric", "number":
		return KindFloat, true
	case "string", "text":
		return KindText, true
	case "date", "datetime", "time", "timestamp":
		return KindTime, true
	default:
		return KindNull, false
	}
}
