// Package testutil provides shared table builders and assertions for
// tests.
package testutil

import (
	"github.com/deltakit/deltakit/internal/domain/table"
	"github.com/deltakit/deltakit/internal/domain/value"
)

// IntColumn builds an INT column from literals.
func IntColumn(name string, vals ...int64) table.Column {
	values := make([]value.Value, len(vals))
	for i, v := range vals {
		values[i] = value.Int(v)
	}
	return table.Column{Name: name, Kind: value.KindInt, Values: values}
}

// FloatColumn builds a FLOAT column from literals.
func FloatColumn(name string, vals ...float64) table.Column {
	values := make([]value.Value, len(vals))
	for i, v := range vals {
		values[i] = value.Float(v)
	}
	return table.Column{Name: name, Kind: value.KindFloat, Values: values}
}

// TextColumn builds a TEXT column from literals.
func TextColumn(name string, vals ...string) table.Column {
	values := make([]value.Value, len(vals))
	for i, v := range vals {
		values[i] = value.Text(v)
	}
	return table.Column{Name: name, Kind: value.KindText, Values: values}
}

// PricesTableA is the first side of the canonical pricing fixture.
func PricesTableA() *table.Table {
	return table.MustNew(
		IntColumn("id", 1, 2, 3),
		IntColumn("price", 100, 200, 300),
	)
}

// PricesTableB overlaps PricesTableA on ids 2 and 3, with id 3 priced
// differently.
func PricesTableB() *table.Table {
	return table.MustNew(
		IntColumn("id", 2, 3, 4),
		IntColumn("price", 200, 250, 400),
	)
}
