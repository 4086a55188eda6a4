// Package format renders monetary amounts for display.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/loan-planner/pkg/constants"
)

// Currency returns a whole-won currency string with thousands separators (e.g., "-₩1,234,567").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0" {
		return "-" + constants.CurrencySymbol + formatted
	}
	return constants.CurrencySymbol + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234,567").
func NumericCurrency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0" {
		return "-" + formatted
	}
	return formatted
}

// Rate renders an annual percentage rate, dropping needless trailing zeros (e.g., "4.5%").
func Rate(rate float64) string {
	formatted := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", rate), "0"), ".")
	return formatted + "%"
}

func formatPositiveCurrency(value float64) string {
	intPart := fmt.Sprintf("%.0f", value)

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart
}
