// Package planner ties input validation, the schedule engine and the
// refinance estimator into a single calculation.
package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-planner/pkg/loans"
	"github.com/iwvelando/loan-planner/pkg/validation"
	"go.uber.org/zap"
)

// ErrCalculationFailed is returned when the engine fails on input that
// passed validation. Callers show it as a single form-level error.
var ErrCalculationFailed = errors.New("failed to calculate loan schedules")

// Result holds the schedules of every repayment method for one request.
type Result struct {
	ID               uuid.UUID                `json:"id"`
	Request          loans.LoanRequest        `json:"request"`
	EqualInstallment *loans.CalculationResult `json:"equalInstallment"`
	EqualPrincipal   *loans.CalculationResult `json:"equalPrincipal"`
	Bullet           *loans.CalculationResult `json:"bullet"`
	Refinance        *loans.RefinanceEstimate `json:"refinance,omitempty"`
}

// Results returns the schedules in presentation order.
func (r *Result) Results() []*loans.CalculationResult {
	return []*loans.CalculationResult{r.EqualInstallment, r.EqualPrincipal, r.Bullet}
}

// Planner runs calculations.
type Planner struct {
	logger    *zap.Logger
	engine    *loans.ScheduleEngine
	validator *validation.LoanValidator
}

// New creates a planner. Submitted amounts are multiplied by unitScale.
func New(logger *zap.Logger, unitScale int64) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		logger:    logger,
		engine:    loans.NewScheduleEngine(logger),
		validator: validation.NewLoanValidator(unitScale),
	}
}

// Calculate validates raw input and computes every schedule. Invalid input
// yields a validation.FieldErrors.
func (p *Planner) Calculate(ctx context.Context, raw validation.RawLoanInput) (*Result, error) {
	req, err := p.validator.Validate(raw)
	if err != nil {
		p.logger.Debug("rejected loan input",
			zap.String("op", "planner.Calculate"),
			zap.Error(err),
		)
		return nil, err
	}
	return p.CalculateRequest(ctx, req)
}

// CalculateRequest computes every schedule and the refinance estimate for a
// validated request. Either the full result or an error is returned.
func (p *Planner) CalculateRequest(ctx context.Context, req loans.LoanRequest) (result *Result, err error) {
	id := uuid.New()
	logger := p.logger.With(zap.String("calculation_id", id.String()))

	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("calculation panicked: %v", r),
				zap.String("op", "planner.CalculateRequest"),
			)
			result, err = nil, fmt.Errorf("calculation %s: %w", id, ErrCalculationFailed)
		}
	}()

	logger.Debug(fmt.Sprintf("calculating %.0f at %.3f%% over %d months with %d events",
		req.Principal, req.AnnualRate, req.TermMonths, len(req.Events)),
		zap.String("op", "planner.CalculateRequest"),
	)

	schedules, err := p.engine.CalculateAll(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Error("failed to calculate schedules",
			zap.String("op", "planner.CalculateRequest"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("calculation %s: %w", id, ErrCalculationFailed)
	}

	refinance, err := p.engine.EstimateRefinance(req, schedules[loans.MethodEqualInstallment])
	if err != nil {
		logger.Error("failed to estimate refinance",
			zap.String("op", "planner.CalculateRequest"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("calculation %s: %w", id, ErrCalculationFailed)
	}

	logger.Info("calculated loan schedules",
		zap.String("op", "planner.CalculateRequest"),
		zap.Bool("refinance", refinance != nil),
	)

	return &Result{
		ID:               id,
		Request:          req,
		EqualInstallment: schedules[loans.MethodEqualInstallment],
		EqualPrincipal:   schedules[loans.MethodEqualPrincipal],
		Bullet:           schedules[loans.MethodBullet],
		Refinance:        refinance,
	}, nil
}

// FormErrors converts a calculation error into the per-field errors shown to
// the user. Anything other than validation problems becomes the generic
// form-level error.
func FormErrors(err error) validation.FieldErrors {
	if err == nil {
		return nil
	}
	var fieldErrors validation.FieldErrors
	if errors.As(err, &fieldErrors) {
		return fieldErrors
	}
	return validation.FieldErrors{
		validation.FormField: {ErrCalculationFailed.Error()},
	}
}
