// Package loans computes amortization schedules for the supported repayment
// methods and estimates refinancing savings on top of them.
package loans

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidRequest is returned when a request breaks an assumption the
// schedule engine relies on. The validator should never let one through.
var ErrInvalidRequest = errors.New("invalid loan request")

// Method identifies a repayment method.
type Method string

const (
	// MethodEqualInstallment repays a constant total amount every period.
	MethodEqualInstallment Method = "equal-installment"
	// MethodEqualPrincipal repays a constant principal share every period.
	MethodEqualPrincipal Method = "equal-principal"
	// MethodBullet pays interest only and repays the principal at maturity.
	MethodBullet Method = "bullet"
)

// Methods lists every supported repayment method in presentation order.
var Methods = []Method{MethodEqualInstallment, MethodEqualPrincipal, MethodBullet}

// String returns the method identifier.
func (m Method) String() string {
	return string(m)
}

// Title returns a human-readable method name.
func (m Method) Title() string {
	switch m {
	case MethodEqualInstallment:
		return "Equal installment"
	case MethodEqualPrincipal:
		return "Equal principal"
	case MethodBullet:
		return "Bullet payment"
	default:
		return string(m)
	}
}

// ReAmortizes reports whether the payment basis is recomputed after a
// prepayment or rate change.
func (m Method) ReAmortizes() bool {
	return m == MethodEqualInstallment || m == MethodEqualPrincipal
}

// ParseMethod converts a method identifier into a Method.
func ParseMethod(value string) (Method, error) {
	for _, method := range Methods {
		if string(method) == value {
			return method, nil
		}
	}
	return "", fmt.Errorf("unknown repayment method %q", value)
}

// RepaymentEvent is a prepayment and/or rate change scheduled for a round.
type RepaymentEvent struct {
	Round   int      `json:"round"`
	Amount  float64  `json:"amount,omitempty"`  // extra principal, 0 for none
	NewRate *float64 `json:"newRate,omitempty"` // annual percent from the next round on
}

// HasPrepayment reports whether the event repays extra principal.
func (e RepaymentEvent) HasPrepayment() bool {
	return e.Amount > 0
}

// HasRateChange reports whether the event changes the interest rate.
func (e RepaymentEvent) HasRateChange() bool {
	return e.NewRate != nil
}

// LoanRequest holds validated loan parameters. Amounts are in won and rates
// in annual percent.
type LoanRequest struct {
	Principal         float64          `json:"principal"`
	AnnualRate        float64          `json:"annualRate"`
	TermMonths        int              `json:"loanTermMonths"`
	GracePeriodMonths int              `json:"gracePeriodMonths"`
	Events            []RepaymentEvent `json:"events,omitempty"`
	StartDate         string           `json:"startDate,omitempty"` // YYYY-MM of the first payment
}

// check re-verifies the assumptions of the period loop.
func (r LoanRequest) check() error {
	if r.Principal <= 0 {
		return fmt.Errorf("%w: principal must be positive, got %.2f", ErrInvalidRequest, r.Principal)
	}
	if r.AnnualRate < 0 {
		return fmt.Errorf("%w: annual rate must not be negative, got %.3f", ErrInvalidRequest, r.AnnualRate)
	}
	if r.TermMonths <= 0 {
		return fmt.Errorf("%w: term must be positive, got %d", ErrInvalidRequest, r.TermMonths)
	}
	if r.GracePeriodMonths < 0 || r.GracePeriodMonths > r.TermMonths {
		return fmt.Errorf("%w: grace period %d outside term of %d months", ErrInvalidRequest, r.GracePeriodMonths, r.TermMonths)
	}
	seen := make(map[int]struct{}, len(r.Events))
	for _, event := range r.Events {
		if event.Round < 1 || event.Round > r.TermMonths {
			return fmt.Errorf("%w: event round %d outside term of %d months", ErrInvalidRequest, event.Round, r.TermMonths)
		}
		if _, dup := seen[event.Round]; dup {
			return fmt.Errorf("%w: more than one event in round %d", ErrInvalidRequest, event.Round)
		}
		seen[event.Round] = struct{}{}
		if event.Amount < 0 {
			return fmt.Errorf("%w: negative prepayment in round %d", ErrInvalidRequest, event.Round)
		}
		if event.NewRate != nil && *event.NewRate < 0 {
			return fmt.Errorf("%w: negative rate in round %d", ErrInvalidRequest, event.Round)
		}
	}
	return nil
}

// eventsByRound indexes the events by the round they fall on.
func (r LoanRequest) eventsByRound() map[int]RepaymentEvent {
	index := make(map[int]RepaymentEvent, len(r.Events))
	for _, event := range r.Events {
		index[event.Round] = event
	}
	return index
}

// SortEvents orders events by round.
func SortEvents(events []RepaymentEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Round < events[j].Round
	})
}

// ScheduleEntry is one period of an amortization schedule.
type ScheduleEntry struct {
	Month              int     `json:"month"`
	Date               string  `json:"date,omitempty"`
	PrincipalPayment   float64 `json:"principalPayment"` // includes Prepayment
	Prepayment         float64 `json:"prepayment,omitempty"`
	InterestPayment    float64 `json:"interestPayment"`
	TotalPayment       float64 `json:"totalPayment"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// CalculationResult is the schedule for one repayment method with its totals.
type CalculationResult struct {
	Method        Method          `json:"method"`
	TotalInterest float64         `json:"totalInterest"`
	TotalPaid     float64         `json:"totalPaid"`
	Schedule      []ScheduleEntry `json:"schedule"`
}

// RefinanceEstimate projects the savings of refinancing the remaining balance
// into a lower-rate equal-installment loan.
type RefinanceEstimate struct {
	PotentialSavings        float64 `json:"potentialSavings"`
	OriginalTotalInterest   float64 `json:"originalTotalInterest"`
	RefinancedTotalInterest float64 `json:"refinancedTotalInterest"`
	RefinanceMonth          int     `json:"refinanceMonth"`
	RefinanceRate           float64 `json:"refinanceRate"`
	BalanceAtRefinance      float64 `json:"balanceAtRefinance"`
}
