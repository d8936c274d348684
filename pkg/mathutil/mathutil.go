// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/forfettario/fisco-forecast/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// NonNegative floors a value at zero. Deductions may exceed their base but
// the resulting figure must never go negative.
func NonNegative(val float64) float64 {
	if val < 0 {
		return 0
	}
	return val
}

// SafeQuotient divides numerator by denominator, returning 0 when the
// denominator is zero so downstream formatting never sees NaN or Inf.
func SafeQuotient(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// Percentage calculates what percentage value is of total, with a zero-guard
// on the total.
func Percentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}
