package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/iwvelando/loan-planner/pkg/loans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() RawLoanInput {
	return RawLoanInput{
		Principal:      "30000",
		AnnualRate:     "5",
		LoanTermMonths: "360",
	}
}

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	var fe FieldErrors
	require.True(t, errors.As(err, &fe), "expected FieldErrors, got %v", err)
	return fe
}

func TestValidateConvertsUnits(t *testing.T) {
	validator := NewLoanValidator(0)

	input := validInput()
	input.Principal = "30,000"
	input.GracePeriodMonths = "24"
	input.StartDate = "2025-01"

	req, err := validator.Validate(input)
	require.NoError(t, err)

	assert.Equal(t, 300000000.0, req.Principal)
	assert.Equal(t, 5.0, req.AnnualRate)
	assert.Equal(t, 360, req.TermMonths)
	assert.Equal(t, 24, req.GracePeriodMonths)
	assert.Equal(t, "2025-01", req.StartDate)
	assert.Empty(t, req.Events)
}

func TestValidateCustomUnitScale(t *testing.T) {
	validator := NewLoanValidator(1)

	input := validInput()
	input.Principal = "12000000.5"
	input.Events = []RawEvent{{Round: "6", Amount: "0.5"}}

	req, err := validator.Validate(input)
	require.NoError(t, err)

	assert.Equal(t, 12000000.5, req.Principal)
	require.Len(t, req.Events, 1)
	assert.Equal(t, 0.5, req.Events[0].Amount)
}

func TestValidateFieldErrors(t *testing.T) {
	validator := NewLoanValidator(0)

	tests := []struct {
		name   string
		modify func(*RawLoanInput)
		field  string
	}{
		{
			name:   "Missing principal",
			modify: func(in *RawLoanInput) { in.Principal = "" },
			field:  "principal",
		},
		{
			name:   "Zero principal",
			modify: func(in *RawLoanInput) { in.Principal = "0" },
			field:  "principal",
		},
		{
			name:   "Negative principal",
			modify: func(in *RawLoanInput) { in.Principal = "-100" },
			field:  "principal",
		},
		{
			name:   "Non-numeric principal",
			modify: func(in *RawLoanInput) { in.Principal = "lots" },
			field:  "principal",
		},
		{
			name:   "Principal above the limit",
			modify: func(in *RawLoanInput) { in.Principal = "100000001" },
			field:  "principal",
		},
		{
			name:   "Zero rate",
			modify: func(in *RawLoanInput) { in.AnnualRate = "0" },
			field:  "annualRate",
		},
		{
			name:   "Rate too small to compound",
			modify: func(in *RawLoanInput) { in.AnnualRate = "0.00000000000000001" },
			field:  "annualRate",
		},
		{
			name:   "Rate above the limit",
			modify: func(in *RawLoanInput) { in.AnnualRate = "150" },
			field:  "annualRate",
		},
		{
			name:   "Zero term",
			modify: func(in *RawLoanInput) { in.LoanTermMonths = "0" },
			field:  "loanTermMonths",
		},
		{
			name:   "Fractional term",
			modify: func(in *RawLoanInput) { in.LoanTermMonths = "12.5" },
			field:  "loanTermMonths",
		},
		{
			name:   "Term above the limit",
			modify: func(in *RawLoanInput) { in.LoanTermMonths = "601" },
			field:  "loanTermMonths",
		},
		{
			name:   "Negative grace period",
			modify: func(in *RawLoanInput) { in.GracePeriodMonths = "-1" },
			field:  "gracePeriodMonths",
		},
		{
			name:   "Grace period longer than the term",
			modify: func(in *RawLoanInput) { in.GracePeriodMonths = "361" },
			field:  "gracePeriodMonths",
		},
		{
			name:   "Malformed start date",
			modify: func(in *RawLoanInput) { in.StartDate = "2025/01" },
			field:  "startDate",
		},
		{
			name: "Event round beyond the term",
			modify: func(in *RawLoanInput) {
				in.Events = []RawEvent{{Round: "361", Amount: "1000"}}
			},
			field: "events[0].round",
		},
		{
			name: "Event without a round",
			modify: func(in *RawLoanInput) {
				in.Events = []RawEvent{{Amount: "1000"}}
			},
			field: "events[0].round",
		},
		{
			name: "Zero new rate",
			modify: func(in *RawLoanInput) {
				in.Events = []RawEvent{{Round: "12", NewRate: "0"}}
			},
			field: "events[0].newRate",
		},
		{
			name: "New rate below the minimum",
			modify: func(in *RawLoanInput) {
				in.Events = []RawEvent{{Round: "12", NewRate: "0.001"}}
			},
			field: "events[0].newRate",
		},
		{
			name: "Non-numeric amount",
			modify: func(in *RawLoanInput) {
				in.Events = []RawEvent{{Round: "12", Amount: "abc"}}
			},
			field: "events[0].amount",
		},
		{
			name: "Duplicate rounds",
			modify: func(in *RawLoanInput) {
				in.Events = []RawEvent{
					{Round: "12", Amount: "1000"},
					{Round: "12", NewRate: "4"},
				}
			},
			field: "events[1].round",
		},
		{
			name: "Recurrence ending before it starts",
			modify: func(in *RawLoanInput) {
				in.Events = []RawEvent{{Round: "24", Amount: "100", Frequency: "12", EndRound: "12"}}
			},
			field: "events[0].round",
		},
		{
			name: "Negative frequency",
			modify: func(in *RawLoanInput) {
				in.Events = []RawEvent{{Round: "24", Amount: "100", Frequency: "-12"}}
			},
			field: "events[0].frequency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.modify(&input)

			req, err := validator.Validate(input)
			require.Error(t, err)
			assert.Equal(t, loans.LoanRequest{}, req)

			fe := fieldErrors(t, err)
			assert.True(t, fe.Has(tt.field), "expected an error on %s, got %v", tt.field, fe)
		})
	}
}

func TestValidateMinimumRate(t *testing.T) {
	validator := NewLoanValidator(0)

	input := validInput()
	input.AnnualRate = "0.01"
	req, err := validator.Validate(input)
	require.NoError(t, err)
	assert.Equal(t, 0.01, req.AnnualRate)

	input.AnnualRate = "0.009"
	_, err = validator.Validate(input)
	fe := fieldErrors(t, err)
	assert.Equal(t, []string{"must be at least 0.01%"}, fe["annualRate"])
}

func TestValidateCollectsEveryError(t *testing.T) {
	validator := NewLoanValidator(0)

	_, err := validator.Validate(RawLoanInput{})
	fe := fieldErrors(t, err)

	assert.True(t, fe.Has("principal"))
	assert.True(t, fe.Has("annualRate"))
	assert.True(t, fe.Has("loanTermMonths"))
	assert.False(t, fe.Has("gracePeriodMonths"))
	assert.Contains(t, err.Error(), "principal: is required")
}

func TestValidateEvents(t *testing.T) {
	validator := NewLoanValidator(0)

	input := validInput()
	input.Events = []RawEvent{
		{Round: "60", Amount: "5000"},
		{Round: "12", NewRate: "4"},
		// Neither a prepayment nor a rate change.
		{Round: "24"},
		{Round: "36", Amount: "0"},
		{Round: "48", Amount: "-10", NewRate: "-1"},
		{},
	}

	req, err := validator.Validate(input)
	require.NoError(t, err)
	require.Len(t, req.Events, 2)

	assert.Equal(t, 12, req.Events[0].Round)
	assert.False(t, req.Events[0].HasPrepayment())
	require.True(t, req.Events[0].HasRateChange())
	assert.Equal(t, 4.0, *req.Events[0].NewRate)

	assert.Equal(t, 60, req.Events[1].Round)
	assert.Equal(t, 50000000.0, req.Events[1].Amount)
	assert.False(t, req.Events[1].HasRateChange())
}

func TestValidateRecurringEvents(t *testing.T) {
	validator := NewLoanValidator(0)

	input := validInput()
	input.LoanTermMonths = "120"
	input.Events = []RawEvent{
		{Round: "12", Amount: "500", Frequency: "12", EndRound: "48"},
		{Round: "60", Amount: "1000", NewRate: "4.5"},
	}

	req, err := validator.Validate(input)
	require.NoError(t, err)

	var rounds []int
	for _, event := range req.Events {
		rounds = append(rounds, event.Round)
	}
	assert.Equal(t, []int{12, 24, 36, 48, 60}, rounds)
	assert.Equal(t, 5000000.0, req.Events[0].Amount)
	assert.Equal(t, 10000000.0, req.Events[4].Amount)

	// Each expanded event owns its rate.
	*req.Events[4].NewRate = 1
	assert.Nil(t, req.Events[0].NewRate)
}

func TestValidateRecurringEventsDefaultToTermEnd(t *testing.T) {
	validator := NewLoanValidator(0)

	input := validInput()
	input.LoanTermMonths = "36"
	input.Events = []RawEvent{{Round: "6", Amount: "100", Frequency: "12"}}

	req, err := validator.Validate(input)
	require.NoError(t, err)
	require.Len(t, req.Events, 3)
	assert.Equal(t, 30, req.Events[2].Round)
}

func TestValidateOverlappingRecurrences(t *testing.T) {
	validator := NewLoanValidator(0)

	input := validInput()
	input.Events = []RawEvent{
		{Round: "12", Amount: "100", Frequency: "12"},
		{Round: "36", NewRate: "4"},
	}

	_, err := validator.Validate(input)
	fe := fieldErrors(t, err)
	assert.True(t, fe.Has("events[1].round"))
}

func TestRawLoanInputJSON(t *testing.T) {
	body := `{
		"principal": 30000,
		"annualRate": "4.5",
		"loanTermMonths": 360,
		"gracePeriodMonths": null,
		"events": [{"round": 12, "newRate": 3.9}]
	}`

	var input RawLoanInput
	require.NoError(t, json.Unmarshal([]byte(body), &input))

	assert.Equal(t, Value("30000"), input.Principal)
	assert.Equal(t, Value("4.5"), input.AnnualRate)
	assert.Equal(t, Value(""), input.GracePeriodMonths)
	require.Len(t, input.Events, 1)
	assert.Equal(t, Value("3.9"), input.Events[0].NewRate)

	req, err := NewLoanValidator(0).Validate(input)
	require.NoError(t, err)
	assert.Equal(t, 0, req.GracePeriodMonths)
	assert.Equal(t, 3.9, *req.Events[0].NewRate)

	var bad RawLoanInput
	assert.Error(t, json.Unmarshal([]byte(`{"principal": true}`), &bad))
}
