package value_test

import (
	"testing"
	"time"

	"github.com/deltakit/deltakit/internal/domain/value"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b value.Value
		want bool
	}{
		{"int vs int", value.Int(7), value.Int(7), true},
		{"int vs equal float", value.Int(7), value.Float(7.0), true},
		{"int vs close float", value.Int(7), value.Float(7.1), false},
		{"text exact", value.Text("ok"), value.Text("ok"), true},
		{"text case sensitive", value.Text("OK"), value.Text("ok"), false},
		{"text vs numeric", value.Text("7"), value.Int(7), false},
		{"null vs null", value.Null(), value.Null(), false},
		{"null vs int", value.Null(), value.Int(0), false},
		{"int vs null", value.Int(0), value.Null(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEqual_Time(t *testing.T) {
	d1 := value.Time(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	d2 := value.Time(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	d3 := value.Time(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))

	if !d1.Equal(d2) {
		t.Error("identical instants reported unequal")
	}
	if d1.Equal(d3) {
		t.Error("different instants reported equal")
	}
}

func TestCoerceFloat(t *testing.T) {
	if f, ok := value.Int(5).CoerceFloat(); !ok || f != 5.0 {
		t.Errorf("Int(5).CoerceFloat() = %v, %v", f, ok)
	}
	if f, ok := value.Text(" 3.5 ").CoerceFloat(); !ok || f != 3.5 {
		t.Errorf("Text coercion = %v, %v", f, ok)
	}
	if _, ok := value.Text("abc").CoerceFloat(); ok {
		t.Error("non-numeric text coerced")
	}
	if _, ok := value.Null().CoerceFloat(); ok {
		t.Error("null coerced to float")
	}
}

func TestCoerceInt(t *testing.T) {
	if i, ok := value.Float(4.0).CoerceInt(); !ok || i != 4 {
		t.Errorf("Float(4.0).CoerceInt() = %v, %v", i, ok)
	}
	if _, ok := value.Float(4.5).CoerceInt(); ok {
		t.Error("fractional float coerced to int")
	}
	if i, ok := value.Text("12").CoerceInt(); !ok || i != 12 {
		t.Errorf("Text(\"12\").CoerceInt() = %v, %v", i, ok)
	}
}

func TestCoerceTime(t *testing.T) {
	got, ok := value.Text("2024-03-01").CoerceTime()
	if !ok {
		t.Fatal("ISO date did not parse")
	}
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parsed %v, want %v", got, want)
	}

	if _, ok := value.Text("not a date").CoerceTime(); ok {
		t.Error("garbage text parsed as time")
	}

	// Explicit layout overrides the defaults.
	if _, ok := value.Text("01-03-2024").CoerceTime("02-01-2006"); !ok {
		t.Error("explicit layout rejected matching text")
	}
	if _, ok := value.Text("2024-03-01").CoerceTime("02-01-2006"); ok {
		t.Error("explicit layout accepted non-matching text")
	}
}

func TestTrimSpace(t *testing.T) {
	if got := value.Text("  hi  ").TrimSpace(); got.Text() != "hi" {
		t.Errorf("TrimSpace = %q", got.Text())
	}
	if got := value.Int(3).TrimSpace(); !got.Equal(value.Int(3)) {
		t.Errorf("TrimSpace changed a non-text value: %v", got)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		v    value.Value
		want string
	}{
		{value.Null(), ""},
		{value.Int(42), "42"},
		{value.Float(2.5), "2.5"},
		{value.Text("hello"), "hello"},
		{value.Time(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), "2024-03-01"},
		{value.Time(time.Date(2024, 3, 1, 13, 30, 5, 0, time.UTC)), "2024-03-01 13:30:05"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String(%v) = %q, want %q", tt.v.Kind(), got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want value.Kind
		ok   bool
	}{
		{"int", value.KindInt, true},
		{"Integer", value.KindInt, true},
		{"float", value.KindFloat, true},
		{"NUMBER", value.KindFloat, true},
		{"string", value.KindText, true},
		{" datetime ", value.KindTime, true},
		{"blob", value.KindNull, false},
	}
	for _, tt := range tests {
		got, ok := value.ParseKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseKind(%q) = %v, %v", tt.in, got, ok)
		}
	}
}

func TestNormalizeLayout(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"%Y-%m-%d", "2006-01-02"},
		{"%d/%m/%Y %H:%M:%S", "02/01/2006 15:04:05"},
		{"2006-01-02", "2006-01-02"},
		{"%Y%%", "2006%"},
	}
	for _, tt := range tests {
		if got := value.NormalizeLayout(tt.in); got != tt.want {
			t.Errorf("NormalizeLayout(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
