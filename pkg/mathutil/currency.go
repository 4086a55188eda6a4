// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/loan-planner/pkg/constants"
)

// Round rounds a value to the smallest currency unit, i.e. whole won. Every
// schedule computation rounds through here so results are reproducible.
func Round(val float64) float64 {
	return math.Round(val/constants.CurrencyUnit) * constants.CurrencyUnit
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// MonthlyRate converts an annual percentage rate into a periodic monthly rate.
func MonthlyRate(annualRate float64) float64 {
	return annualRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}
