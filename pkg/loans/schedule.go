package loans

import (
	"context"
	"errors"
	"fmt"

	"github.com/iwvelando/loan-planner/pkg/constants"
	"github.com/iwvelando/loan-planner/pkg/datetime"
	"github.com/iwvelando/loan-planner/pkg/mathutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrScheduleInvariant is returned when a computed schedule does not balance.
var ErrScheduleInvariant = errors.New("schedule invariant violated")

// ScheduleEngine generates amortization schedules.
type ScheduleEngine struct {
	logger *zap.Logger
}

// NewScheduleEngine creates a new engine instance
func NewScheduleEngine(logger *zap.Logger) *ScheduleEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleEngine{logger: logger}
}

// scheduleState is the running state threaded through the period loop.
type scheduleState struct {
	remaining float64
	rate      float64
	// basis is the level payment for equal installment and the principal
	// share for equal principal; bullet loans do not use it.
	basis float64
}

// amortizingPeriods counts the periods after month that repay principal,
// excluding whatever is left of the grace period.
func amortizingPeriods(req LoanRequest, month int) int {
	residualGrace := req.GracePeriodMonths - month
	if residualGrace < 0 {
		residualGrace = 0
	}
	return req.TermMonths - month - residualGrace
}

// paymentBasis computes the rounded basis for the method over the given periods.
func paymentBasis(method Method, remaining, rate float64, periods int) float64 {
	switch method {
	case MethodEqualInstallment:
		return mathutil.Round(CalculateMonthlyPayment(remaining, rate, periods))
	case MethodEqualPrincipal:
		return mathutil.Round(CalculatePrincipalShare(remaining, periods))
	default:
		return 0
	}
}

// basePrincipal is the principal due this period before events.
func basePrincipal(method Method, state scheduleState, interest float64) float64 {
	switch method {
	case MethodEqualInstallment:
		return mathutil.Max(state.basis-interest, 0)
	case MethodEqualPrincipal:
		return state.basis
	default:
		return 0
	}
}

// Calculate creates the complete amortization schedule of a loan for one
// repayment method.
func (g *ScheduleEngine) Calculate(req LoanRequest, method Method) (*CalculationResult, error) {
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := req.check(); err != nil {
		return nil, err
	}
	labels, err := datetime.MonthLabels(req.StartDate, req.TermMonths)
	if err != nil {
		return nil, fmt.Errorf("%w: start date: %v", ErrInvalidRequest, err)
	}

	events := req.eventsByRound()
	state := scheduleState{
		remaining: req.Principal,
		rate:      req.AnnualRate,
	}
	state.basis = paymentBasis(method, state.remaining, state.rate, amortizingPeriods(req, 0))

	result := &CalculationResult{
		Method:   method,
		Schedule: make([]ScheduleEntry, 0, req.TermMonths),
	}

	for month := 1; month <= req.TermMonths; month++ {
		entry := ScheduleEntry{Month: month}
		if labels != nil {
			entry.Date = labels[month-1]
		}

		// Already retired early, e.g. by a large prepayment.
		if state.remaining <= 0 {
			result.Schedule = append(result.Schedule, entry)
			continue
		}

		interest := mathutil.Round(CalculateInterestPayment(state.remaining, state.rate))

		var principal float64
		if month > req.GracePeriodMonths {
			principal = mathutil.Min(basePrincipal(method, state, interest), state.remaining)
		}

		event, hasEvent := events[month]
		var prepayment float64
		if hasEvent && event.HasPrepayment() {
			prepayment = mathutil.Min(event.Amount, state.remaining-principal)
			g.logger.Debug(fmt.Sprintf("round %d: applying prepayment %.0f of requested %.0f", month, prepayment, event.Amount),
				zap.String("op", "loans.Calculate"),
				zap.String("method", method.String()),
			)
		}

		if month == req.TermMonths {
			// Clear any residual balance left by rounding.
			principal = state.remaining - prepayment
		}

		paid := principal + prepayment
		state.remaining -= paid
		if state.remaining < 0 {
			state.remaining = 0
		}
		result.TotalInterest += interest

		entry.PrincipalPayment = paid
		entry.Prepayment = prepayment
		entry.InterestPayment = interest
		entry.TotalPayment = paid + interest
		entry.RemainingPrincipal = state.remaining
		result.Schedule = append(result.Schedule, entry)

		if !hasEvent {
			continue
		}
		if event.HasRateChange() {
			g.logger.Debug(fmt.Sprintf("round %d: rate changes from %.3f to %.3f", month, state.rate, *event.NewRate),
				zap.String("op", "loans.Calculate"),
				zap.String("method", method.String()),
			)
			state.rate = *event.NewRate
		}
		if method.ReAmortizes() && (event.HasPrepayment() || event.HasRateChange()) {
			state.basis = paymentBasis(method, state.remaining, state.rate, amortizingPeriods(req, month))
		}
	}

	result.TotalPaid = req.Principal + result.TotalInterest

	if err := result.verify(req.Principal); err != nil {
		return nil, err
	}
	return result, nil
}

// verify checks that the schedule retires the principal and that its totals balance.
func (r *CalculationResult) verify(principal float64) error {
	var principalPaid, interestPaid float64
	for _, entry := range r.Schedule {
		principalPaid += entry.PrincipalPayment
		interestPaid += entry.InterestPayment
	}
	if n := len(r.Schedule); n > 0 && !mathutil.IsZero(r.Schedule[n-1].RemainingPrincipal) {
		return fmt.Errorf("%w: %s schedule ends with %.2f outstanding", ErrScheduleInvariant, r.Method, r.Schedule[n-1].RemainingPrincipal)
	}
	if !mathutil.WithinTolerance(principalPaid, principal, constants.CurrencyTolerance) {
		return fmt.Errorf("%w: %s schedule repays %.2f of %.2f", ErrScheduleInvariant, r.Method, principalPaid, principal)
	}
	if !mathutil.WithinTolerance(interestPaid, r.TotalInterest, constants.CurrencyTolerance) {
		return fmt.Errorf("%w: %s schedule interest %.2f does not match total %.2f", ErrScheduleInvariant, r.Method, interestPaid, r.TotalInterest)
	}
	return nil
}

// CalculateAll runs every repayment method for the request concurrently. The
// runs share nothing, so either every schedule is returned or none is.
func (g *ScheduleEngine) CalculateAll(ctx context.Context, req LoanRequest) (map[Method]*CalculationResult, error) {
	results := make([]*CalculationResult, len(Methods))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, method := range Methods {
		i, method := i, method
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%s schedule: unexpected failure: %v", method, r)
				}
			}()
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result, err := g.Calculate(req, method)
			if err != nil {
				return fmt.Errorf("%s schedule: %w", method, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	byMethod := make(map[Method]*CalculationResult, len(Methods))
	for i, method := range Methods {
		byMethod[method] = results[i]
	}
	return byMethod, nil
}
