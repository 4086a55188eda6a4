package loans

import (
	"math"

	"github.com/iwvelando/loan-planner/pkg/mathutil"
)

// CalculateMonthlyPayment calculates the level payment that retires principal
// over termMonths using the standard annuity formula.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 || principal <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	periodicInterestRate := mathutil.MonthlyRate(annualInterestRate)
	power := math.Pow(1.00+periodicInterestRate, float64(termMonths))
	growth := power - 1.00
	// Rates too small to register in 1+r degrade to the zero-interest case.
	if growth <= 0 || math.IsInf(power, 0) || math.IsNaN(power) {
		return principal / float64(termMonths)
	}
	return principal * periodicInterestRate * power / growth
}

// CalculateInterestPayment calculates the interest accrued on a balance over one month.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * mathutil.MonthlyRate(annualInterestRate)
}

// CalculatePrincipalShare calculates the constant principal share that retires
// principal over termMonths.
func CalculatePrincipalShare(principal float64, termMonths int) float64 {
	if termMonths <= 0 || principal <= 0 {
		return 0
	}
	return principal / float64(termMonths)
}
