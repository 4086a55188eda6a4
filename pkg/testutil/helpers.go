// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"
	"testing"

	"github.com/iwvelando/loan-planner/pkg/constants"
	"github.com/iwvelando/loan-planner/pkg/loans"
)

// Entry returns the schedule entry for a 1-based month, failing the test if
// the schedule is too short.
func Entry(t testing.TB, result *loans.CalculationResult, month int) loans.ScheduleEntry {
	t.Helper()
	if result == nil || month < 1 || month > len(result.Schedule) {
		t.Fatalf("schedule has no month %d", month)
	}
	return result.Schedule[month-1]
}

// AssertScheduleInvariants checks the properties every schedule must hold:
// entries in month order, payments that add up, a non-negative balance that
// ends at zero, and totals that balance against the principal.
func AssertScheduleInvariants(t testing.TB, principal float64, result *loans.CalculationResult) {
	t.Helper()
	if result == nil {
		t.Fatal("expected a calculation result")
	}

	var interest, principalPaid float64
	for i, entry := range result.Schedule {
		if entry.Month != i+1 {
			t.Errorf("%s: entry %d has month %d", result.Method, i, entry.Month)
		}
		if math.Abs(entry.TotalPayment-(entry.PrincipalPayment+entry.InterestPayment)) > constants.CurrencyTolerance {
			t.Errorf("%s month %d: total %.2f != principal %.2f + interest %.2f",
				result.Method, entry.Month, entry.TotalPayment, entry.PrincipalPayment, entry.InterestPayment)
		}
		if entry.PrincipalPayment < 0 || entry.InterestPayment < 0 || entry.RemainingPrincipal < 0 {
			t.Errorf("%s month %d: negative amount in %+v", result.Method, entry.Month, entry)
		}
		if entry.Prepayment > entry.PrincipalPayment {
			t.Errorf("%s month %d: prepayment %.2f exceeds principal paid %.2f",
				result.Method, entry.Month, entry.Prepayment, entry.PrincipalPayment)
		}
		interest += entry.InterestPayment
		principalPaid += entry.PrincipalPayment
	}

	if n := len(result.Schedule); n > 0 && result.Schedule[n-1].RemainingPrincipal != 0 {
		t.Errorf("%s: final remaining principal %.2f, expected 0", result.Method, result.Schedule[n-1].RemainingPrincipal)
	}
	if math.Abs(interest-result.TotalInterest) > constants.CurrencyTolerance {
		t.Errorf("%s: total interest %.2f != sum of interest %.2f", result.Method, result.TotalInterest, interest)
	}
	if math.Abs(principalPaid-principal) > constants.CurrencyTolerance {
		t.Errorf("%s: principal repaid %.2f, expected %.2f", result.Method, principalPaid, principal)
	}
	if math.Abs(result.TotalPaid-(principal+result.TotalInterest)) > constants.CurrencyTolerance {
		t.Errorf("%s: total paid %.2f != principal %.2f + interest %.2f",
			result.Method, result.TotalPaid, principal, result.TotalInterest)
	}
}
