package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FormField is the key for errors that do not belong to a single input field.
const FormField = "_form"

// Value is a raw scalar as submitted. It accepts JSON strings, numbers and
// null so clients can send either "300000000" or 300000000.
type Value string

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or number, got %s", data)
	}
	*v = Value(n.String())
	return nil
}

// String returns the trimmed raw value.
func (v Value) String() string {
	return strings.TrimSpace(string(v))
}

// RawEvent is a repayment event as submitted.
type RawEvent struct {
	Round     Value `json:"round"`
	Amount    Value `json:"amount,omitempty"`
	NewRate   Value `json:"newRate,omitempty"`
	Frequency Value `json:"frequency,omitempty"`
	EndRound  Value `json:"endRound,omitempty"`
}

// RawLoanInput carries the loan fields as submitted. Principal and event
// amounts are in units of the validator's UnitScale.
type RawLoanInput struct {
	Principal         Value      `json:"principal"`
	AnnualRate        Value      `json:"annualRate"`
	LoanTermMonths    Value      `json:"loanTermMonths"`
	GracePeriodMonths Value      `json:"gracePeriodMonths,omitempty"`
	StartDate         Value      `json:"startDate,omitempty"`
	Events            []RawEvent `json:"events,omitempty"`
}

// FieldErrors maps an input field to its human-readable problems.
type FieldErrors map[string][]string

// Add records a problem with a field.
func (fe FieldErrors) Add(field, format string, args ...interface{}) {
	fe[field] = append(fe[field], fmt.Sprintf(format, args...))
}

// Has reports whether a field has any problems.
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(fe[field], "; ")))
	}
	return "invalid input: " + strings.Join(parts, ", ")
}
