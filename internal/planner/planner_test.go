package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-planner/pkg/loans"
	"github.com/iwvelando/loan-planner/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCalculate(t *testing.T) {
	p := New(zaptest.NewLogger(t), 0)

	result, err := p.Calculate(context.Background(), validation.RawLoanInput{
		Principal:      "30000",
		AnnualRate:     "5",
		LoanTermMonths: "360",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, result.ID)
	assert.Equal(t, 300000000.0, result.Request.Principal)

	require.NotNil(t, result.EqualInstallment)
	require.NotNil(t, result.EqualPrincipal)
	require.NotNil(t, result.Bullet)
	assert.Equal(t, loans.MethodEqualInstallment, result.EqualInstallment.Method)
	assert.Equal(t, loans.MethodEqualPrincipal, result.EqualPrincipal.Method)
	assert.Equal(t, loans.MethodBullet, result.Bullet.Method)

	assert.Equal(t, 279767291.0, result.EqualInstallment.TotalInterest)
	assert.Equal(t, 225625090.0, result.EqualPrincipal.TotalInterest)
	assert.Equal(t, 450000000.0, result.Bullet.TotalInterest)

	require.NotNil(t, result.Refinance)
	assert.Equal(t, 60570847.0, result.Refinance.PotentialSavings)

	methods := []loans.Method{}
	for _, schedule := range result.Results() {
		methods = append(methods, schedule.Method)
	}
	assert.Equal(t, loans.Methods, methods)
}

func TestCalculateWithoutRefinance(t *testing.T) {
	p := New(zaptest.NewLogger(t), 0)

	result, err := p.Calculate(context.Background(), validation.RawLoanInput{
		Principal:      "1200",
		AnnualRate:     "3.5",
		LoanTermMonths: "12",
	})
	require.NoError(t, err)
	assert.Nil(t, result.Refinance)
}

func TestCalculateDistinctIDs(t *testing.T) {
	p := New(nil, 0)
	input := validation.RawLoanInput{Principal: "1000", AnnualRate: "4", LoanTermMonths: "24"}

	first, err := p.Calculate(context.Background(), input)
	require.NoError(t, err)
	second, err := p.Calculate(context.Background(), input)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.EqualInstallment, second.EqualInstallment)
}

func TestCalculateInvalidInput(t *testing.T) {
	p := New(zaptest.NewLogger(t), 0)

	result, err := p.Calculate(context.Background(), validation.RawLoanInput{
		Principal:      "0",
		AnnualRate:     "5",
		LoanTermMonths: "360",
	})
	assert.Nil(t, result)

	var fieldErrors validation.FieldErrors
	require.True(t, errors.As(err, &fieldErrors))
	assert.True(t, fieldErrors.Has("principal"))
	assert.False(t, errors.Is(err, ErrCalculationFailed))

	assert.Equal(t, fieldErrors, FormErrors(err))
}

func TestCalculateRequestEngineFailure(t *testing.T) {
	p := New(zaptest.NewLogger(t), 0)

	// A request the validator would never produce.
	result, err := p.CalculateRequest(context.Background(), loans.LoanRequest{
		Principal:  1000000,
		AnnualRate: 5,
		TermMonths: 12,
		Events:     []loans.RepaymentEvent{{Round: 13, Amount: 1000}},
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrCalculationFailed)

	assert.Equal(t, validation.FieldErrors{
		validation.FormField: {"failed to calculate loan schedules"},
	}, FormErrors(err))
}

func TestCalculateRequestCanceled(t *testing.T) {
	p := New(zaptest.NewLogger(t), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.CalculateRequest(ctx, loans.LoanRequest{
		Principal:  1000000,
		AnnualRate: 5,
		TermMonths: 12,
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormErrorsNil(t *testing.T) {
	assert.Nil(t, FormErrors(nil))
}
