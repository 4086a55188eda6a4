package loans

import (
	"fmt"

	"github.com/iwvelando/loan-planner/pkg/constants"
	"github.com/iwvelando/loan-planner/pkg/mathutil"
	"go.uber.org/zap"
)

// EstimateRefinance projects the savings of refinancing an equal-installment
// loan at the fixed evaluation month into a lower-rate loan for the rest of
// the term. It returns nil when no refinance would be proposed.
func (g *ScheduleEngine) EstimateRefinance(req LoanRequest, original *CalculationResult) (*RefinanceEstimate, error) {
	if original == nil {
		return nil, fmt.Errorf("%w: no equal-installment schedule to refinance", ErrInvalidRequest)
	}

	refinanceMonth := constants.RefinanceMonth
	if req.AnnualRate <= constants.ReferenceLowRate ||
		req.TermMonths <= refinanceMonth ||
		len(original.Schedule) <= refinanceMonth {
		return nil, nil
	}

	newRate := mathutil.Max(constants.ReferenceLowRate, req.AnnualRate-constants.RefinanceRateDelta)
	if newRate >= req.AnnualRate {
		return nil, nil
	}

	var interestPaidSoFar float64
	for _, entry := range original.Schedule[:refinanceMonth] {
		interestPaidSoFar += entry.InterestPayment
	}

	balance := original.Schedule[refinanceMonth-1].RemainingPrincipal
	if balance <= 0 {
		return nil, nil
	}

	refinanced, err := g.Calculate(LoanRequest{
		Principal:  balance,
		AnnualRate: newRate,
		TermMonths: req.TermMonths - refinanceMonth,
	}, MethodEqualInstallment)
	if err != nil {
		return nil, fmt.Errorf("failed to compute refinanced schedule: %w", err)
	}

	refinancedTotalInterest := interestPaidSoFar + refinanced.TotalInterest
	savings := original.TotalInterest - refinancedTotalInterest
	if savings <= 0 {
		g.logger.Debug(fmt.Sprintf("refinancing at %.3f%% would not save interest (%.0f)", newRate, savings),
			zap.String("op", "loans.EstimateRefinance"),
		)
		return nil, nil
	}

	return &RefinanceEstimate{
		PotentialSavings:        mathutil.Round(savings),
		OriginalTotalInterest:   mathutil.Round(original.TotalInterest),
		RefinancedTotalInterest: mathutil.Round(refinancedTotalInterest),
		RefinanceMonth:          refinanceMonth,
		RefinanceRate:           newRate,
		BalanceAtRefinance:      mathutil.Round(balance),
	}, nil
}
