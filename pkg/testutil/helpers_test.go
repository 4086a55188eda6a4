package testutil

import (
	"testing"

	"github.com/iwvelando/loan-planner/pkg/loans"
)

// recordingTB records failures instead of failing the running test.
type recordingTB struct {
	testing.TB
	failed bool
}

func (r *recordingTB) Helper() {}
func (r *recordingTB) Errorf(format string, args ...any) { r.failed = true }
func (r *recordingTB) Fatalf(format string, args ...any) { r.failed = true }
func (r *recordingTB) Fatal(args ...any) { r.failed = true }

func sampleResult() *loans.CalculationResult {
	return &loans.CalculationResult{
		Method:        loans.MethodEqualPrincipal,
		TotalInterest: 15000,
		TotalPaid:     1015000,
		Schedule: []loans.ScheduleEntry{
			{Month: 1, PrincipalPayment: 500000, InterestPayment: 10000, TotalPayment: 510000, RemainingPrincipal: 500000},
			{Month: 2, PrincipalPayment: 500000, InterestPayment: 5000, TotalPayment: 505000, RemainingPrincipal: 0},
		},
	}
}

func TestEntry(t *testing.T) {
	result := sampleResult()

	entry := Entry(t, result, 2)
	if entry.Month != 2 || entry.InterestPayment != 5000 {
		t.Errorf("Entry() = %+v, expected month 2", entry)
	}
}

func TestAssertScheduleInvariantsAcceptsBalancedSchedule(t *testing.T) {
	AssertScheduleInvariants(t, 1000000, sampleResult())
}

func TestAssertScheduleInvariantsReportsViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*loans.CalculationResult)
	}{
		{
			name: "Outstanding balance",
			mutate: func(r *loans.CalculationResult) {
				r.Schedule[1].RemainingPrincipal = 10
			},
		},
		{
			name: "Total payment does not add up",
			mutate: func(r *loans.CalculationResult) {
				r.Schedule[0].TotalPayment = 600000
			},
		},
		{
			name: "Total interest does not match entries",
			mutate: func(r *loans.CalculationResult) {
				r.TotalInterest = 20000
			},
		},
		{
			name: "Month out of order",
			mutate: func(r *loans.CalculationResult) {
				r.Schedule[0].Month = 3
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sampleResult()
			tt.mutate(result)

			recorder := &recordingTB{TB: t}
			AssertScheduleInvariants(recorder, 1000000, result)
			if !recorder.failed {
				t.Error("expected AssertScheduleInvariants to report a failure")
			}
		})
	}
}
