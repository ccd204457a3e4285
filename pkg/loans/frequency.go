package loans

import (
	"fmt"
	"strings"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

// Frequency is how often repayments are made.
type Frequency string

const (
	// Monthly repayments, 12 per year.
	Monthly Frequency = "monthly"
	// Biweekly repayments, 26 per year.
	Biweekly Frequency = "biweekly"
)

// ParseFrequency converts user input into a Frequency.
func ParseFrequency(value string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "monthly":
		return Monthly, nil
	case "biweekly", "bi-weekly":
		return Biweekly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, value)
	}
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	return f == Monthly || f == Biweekly
}

// PaymentsPerYear returns 12 for monthly and 26 for bi-weekly repayments, or 0
// for an unknown frequency.
func (f Frequency) PaymentsPerYear() int {
	switch f {
	case Monthly:
		return constants.MonthlyPaymentsPerYear
	case Biweekly:
		return constants.BiweeklyPaymentsPerYear
	default:
		return 0
	}
}

// Unit is the length of one repayment period, e.g. "month".
func (f Frequency) Unit() string {
	if f == Biweekly {
		return "2 weeks"
	}
	return "month"
}

// Title is the display name of the frequency, e.g. "Bi-Weekly".
func (f Frequency) Title() string {
	if f == Biweekly {
		return "Bi-Weekly"
	}
	return "Monthly"
}

// PeriodLabel names the period of a 1-based payment index. Bi-weekly periods
// are labelled by the week in which they fall due.
func (f Frequency) PeriodLabel(index int) string {
	if f == Biweekly {
		return fmt.Sprintf("Week %d", index*2)
	}
	return fmt.Sprintf("Month %d", index)
}
