// Package datetime provides date utilities for payment due dates.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

// DateLayout is the format expected in config files and flags and is also the
// output date format.
const DateLayout = constants.DateLayout

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseStartDate parses an optional start date. An empty value returns the
// zero time and no error.
func ParseStartDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q, expected YYYY-MM-DD: %w", value, err)
	}
	return t, nil
}

// AddMonths offsets t by the given number of months, keeping the day of month
// where possible and otherwise using the last day of the target month.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DueDate returns the date on which the payment with the given 1-based index
// falls due, for a loan drawn down on start. Monthly payments fall due on the
// same day of each following month and bi-weekly payments every 14 days.
func DueDate(start time.Time, paymentsPerYear, index int) time.Time {
	if paymentsPerYear == constants.BiweeklyPaymentsPerYear {
		return start.AddDate(0, 0, constants.BiweeklyPeriodDays*index)
	}
	return AddMonths(start, index)
}
