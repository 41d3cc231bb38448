package models

import "math"

// Slippage crosses the wire in basis points (1% = 100) but is edited and
// displayed as a percent. These conversions are exact inverses for any
// finite input.

// ToBasisPoints converts a human-facing percent to wire basis points.
func ToBasisPoints(percent float64) float64 {
	return NumberOrZero(percent) * 100
}

// ToPercent converts wire basis points to a human-facing percent.
func ToPercent(basisPoints float64) float64 {
	return NumberOrZero(basisPoints) / 100
}

// NumberOrZero maps NaN to 0 so an absent or unparseable input never
// propagates into arithmetic.
func NumberOrZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
