// Package datetime provides the month arithmetic used to label schedule entries.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-planner/pkg/constants"
)

const (
	// DateTimeLayout is the format expected for start dates and is also the
	// output date format.
	DateTimeLayout = constants.DateTimeLayout
)

// ValidateDate checks that a date is in the YYYY-MM layout.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateTimeLayout, date); err != nil {
		return fmt.Errorf("expected a date formatted as YYYY-MM, got %q", date)
	}
	return nil
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// MonthLabels returns the payment date of each of the given number of periods,
// the first period falling on startDate. An empty startDate yields no labels.
func MonthLabels(startDate string, periods int) ([]string, error) {
	if startDate == "" || periods <= 0 {
		return nil, nil
	}
	labels := make([]string, periods)
	for i := range labels {
		label, err := OffsetDate(startDate, DateTimeLayout, i)
		if err != nil {
			return nil, err
		}
		labels[i] = label
	}
	return labels, nil
}
