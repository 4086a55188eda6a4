package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/loan-planner/pkg/constants"
	"github.com/iwvelando/loan-planner/pkg/datetime"
	"github.com/iwvelando/loan-planner/pkg/events"
	"github.com/iwvelando/loan-planner/pkg/loans"
	"github.com/shopspring/decimal"
)

// LoanValidator turns raw input into a loans.LoanRequest.
type LoanValidator struct {
	// UnitScale is the number of won in one submitted amount unit.
	UnitScale int64
}

// NewLoanValidator creates a validator; a non-positive scale falls back to
// constants.DefaultUnitScale.
func NewLoanValidator(unitScale int64) *LoanValidator {
	if unitScale <= 0 {
		unitScale = constants.DefaultUnitScale
	}
	return &LoanValidator{UnitScale: unitScale}
}

func (v *LoanValidator) scale() decimal.Decimal {
	if v.UnitScale <= 0 {
		return decimal.NewFromInt(constants.DefaultUnitScale)
	}
	return decimal.NewFromInt(v.UnitScale)
}

// parseDecimal parses a submitted number, tolerating thousands separators.
func parseDecimal(value Value) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(value.String(), ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, errors.New("must be a number")
	}
	return d, nil
}

// parseInt parses a submitted whole number.
func parseInt(value Value) (int, error) {
	d, err := parseDecimal(value)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, errors.New("must be a whole number")
	}
	if d.Abs().GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0, errors.New("is out of range")
	}
	return int(d.IntPart()), nil
}

// pendingEvent is an event that passed its own checks and waits for the
// duplicate-round check.
type pendingEvent struct {
	index   int
	rounds  []int
	amount  float64
	newRate *float64
}

// Validate checks raw input and builds a request. On failure the error is a
// FieldErrors holding every problem found.
func (v *LoanValidator) Validate(raw RawLoanInput) (loans.LoanRequest, error) {
	errs := FieldErrors{}
	var req loans.LoanRequest

	if raw.Principal.String() == "" {
		errs.Add("principal", "is required")
	} else if d, err := parseDecimal(raw.Principal); err != nil {
		errs.Add("principal", "%v", err)
	} else if !d.IsPositive() {
		errs.Add("principal", "must be greater than 0")
	} else {
		req.Principal = d.Mul(v.scale()).InexactFloat64()
		if req.Principal > constants.MaxPrincipal {
			errs.Add("principal", "must not exceed %.0f won", constants.MaxPrincipal)
		}
	}

	if raw.AnnualRate.String() == "" {
		errs.Add("annualRate", "is required")
	} else if d, err := parseDecimal(raw.AnnualRate); err != nil {
		errs.Add("annualRate", "%v", err)
	} else if !d.IsPositive() {
		errs.Add("annualRate", "must be greater than 0")
	} else if d.LessThan(decimal.NewFromFloat(constants.MinAnnualRate)) {
		errs.Add("annualRate", "must be at least %g%%", constants.MinAnnualRate)
	} else if d.GreaterThan(decimal.NewFromFloat(constants.MaxAnnualRate)) {
		errs.Add("annualRate", "must not exceed %.0f%%", constants.MaxAnnualRate)
	} else {
		req.AnnualRate = d.InexactFloat64()
	}

	termValid := false
	if raw.LoanTermMonths.String() == "" {
		errs.Add("loanTermMonths", "is required")
	} else if n, err := parseInt(raw.LoanTermMonths); err != nil {
		errs.Add("loanTermMonths", "%v", err)
	} else if n <= 0 {
		errs.Add("loanTermMonths", "must be greater than 0")
	} else if n > constants.MaxTermMonths {
		errs.Add("loanTermMonths", "must not exceed %d months", constants.MaxTermMonths)
	} else {
		req.TermMonths = n
		termValid = true
	}

	if raw.GracePeriodMonths.String() != "" {
		if n, err := parseInt(raw.GracePeriodMonths); err != nil {
			errs.Add("gracePeriodMonths", "%v", err)
		} else if n < 0 {
			errs.Add("gracePeriodMonths", "must not be negative")
		} else if termValid && n > req.TermMonths {
			errs.Add("gracePeriodMonths", "must not exceed the loan term of %d months", req.TermMonths)
		} else {
			req.GracePeriodMonths = n
		}
	}

	if date := raw.StartDate.String(); date != "" {
		if err := datetime.ValidateDate(date); err != nil {
			errs.Add("startDate", "%v", err)
		} else {
			req.StartDate = date
		}
	}

	var processor *events.Processor
	if termValid {
		processor = events.NewProcessor(req.TermMonths)
	}
	pending := make([]pendingEvent, 0, len(raw.Events))
	for i, rawEvent := range raw.Events {
		if event, ok := v.validateEvent(i, rawEvent, processor, errs); ok {
			pending = append(pending, event)
		}
	}

	seen := make(map[int]int)
	for _, event := range pending {
		for _, round := range event.rounds {
			if first, dup := seen[round]; dup {
				errs.Add(eventField(event.index, "round"), "round %d already has an event (events[%d])", round, first)
				continue
			}
			seen[round] = event.index
			req.Events = append(req.Events, loans.RepaymentEvent{
				Round:   round,
				Amount:  event.amount,
				NewRate: copyRate(event.newRate),
			})
		}
	}

	if len(errs) > 0 {
		return loans.LoanRequest{}, errs
	}
	loans.SortEvents(req.Events)
	return req, nil
}

// validateEvent checks one raw event. It returns false when the event is
// discarded or invalid; problems are recorded in errs.
func (v *LoanValidator) validateEvent(index int, raw RawEvent, processor *events.Processor, errs FieldErrors) (pendingEvent, bool) {
	event := pendingEvent{index: index}
	valid := true

	if raw.Amount.String() != "" {
		if d, err := parseDecimal(raw.Amount); err != nil {
			errs.Add(eventField(index, "amount"), "%v", err)
			valid = false
		} else if d.IsPositive() {
			event.amount = d.Mul(v.scale()).InexactFloat64()
		}
	}

	if raw.NewRate.String() != "" {
		if d, err := parseDecimal(raw.NewRate); err != nil {
			errs.Add(eventField(index, "newRate"), "%v", err)
			valid = false
		} else if !d.IsNegative() {
			rate := d.InexactFloat64()
			event.newRate = &rate
		}
	}

	if !valid {
		return event, false
	}
	// Neither a prepayment nor a rate change: nothing to schedule.
	if event.amount <= 0 && event.newRate == nil {
		return event, false
	}

	if event.newRate != nil {
		if *event.newRate == 0 {
			errs.Add(eventField(index, "newRate"), "must be greater than 0")
			valid = false
		} else if *event.newRate < constants.MinAnnualRate {
			errs.Add(eventField(index, "newRate"), "must be at least %g%%", constants.MinAnnualRate)
			valid = false
		} else if *event.newRate > constants.MaxAnnualRate {
			errs.Add(eventField(index, "newRate"), "must not exceed %.0f%%", constants.MaxAnnualRate)
			valid = false
		}
	}

	var rec events.Recurrence
	if raw.Round.String() == "" {
		errs.Add(eventField(index, "round"), "is required")
		valid = false
	} else if n, err := parseInt(raw.Round); err != nil {
		errs.Add(eventField(index, "round"), "%v", err)
		valid = false
	} else if n <= 0 {
		errs.Add(eventField(index, "round"), "must be greater than 0")
		valid = false
	} else {
		rec.StartRound = n
	}

	if raw.Frequency.String() != "" {
		if n, err := parseInt(raw.Frequency); err != nil {
			errs.Add(eventField(index, "frequency"), "%v", err)
			valid = false
		} else if n < 0 {
			errs.Add(eventField(index, "frequency"), "must not be negative")
			valid = false
		} else {
			rec.Frequency = n
		}
	}

	if raw.EndRound.String() != "" {
		if n, err := parseInt(raw.EndRound); err != nil {
			errs.Add(eventField(index, "endRound"), "%v", err)
			valid = false
		} else if n <= 0 {
			errs.Add(eventField(index, "endRound"), "must be greater than 0")
			valid = false
		} else {
			rec.EndRound = n
		}
	}

	// Without a valid term the round range cannot be checked.
	if !valid || processor == nil {
		return event, false
	}

	rounds, err := processor.Rounds(rec)
	if err != nil {
		errs.Add(eventField(index, "round"), "%v", err)
		return event, false
	}
	event.rounds = rounds
	return event, true
}

func eventField(index int, field string) string {
	return fmt.Sprintf("events[%d].%s", index, field)
}

func copyRate(rate *float64) *float64 {
	if rate == nil {
		return nil
	}
	r := *rate
	return &r
}
