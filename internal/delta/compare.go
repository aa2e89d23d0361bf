package delta

import (
	"math"

	"github.com/deltakit/deltakit/internal/domain/value"
)

// Equal decides cell equality for a matched row. Pure function.
//
// Numeric columns use the tolerance band |a-b| <= absTol + relTol*|b|.
// Non-numeric columns compare exactly (inputs are expected to be
// whitespace-trimmed at table level beforehand). A null on either side
// is never equal to anything, including another null: an absent value
// coincides with no present one.
func Equal(a, b value.Value, numeric bool, absTol, relTol float64) bool {
	if a.IsNull() || b.IsNull() {
		return false
	}
	if numeric {
		x, okA := a.AsFloat()
		y, okB := b.AsFloat()
		if !okA || !okB {
			return false
		}
		return math.Abs(x-y) <= absTol+relTol*math.Abs(y)
	}
	return a.Equal(b)
}
