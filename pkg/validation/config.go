// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/loan-calculator/pkg/mathutil"
)

// Range describes a slider-style control: an inclusive interval walked in
// fixed steps from Min.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Validate checks that the range is well formed.
func (r Range) Validate(name string) error {
	if !mathutil.IsFinite(r.Min) || !mathutil.IsFinite(r.Max) || !mathutil.IsFinite(r.Step) {
		return fmt.Errorf("%s range must be finite, got [%g, %g] step %g", name, r.Min, r.Max, r.Step)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%s range minimum %g exceeds maximum %g", name, r.Min, r.Max)
	}
	if r.Step <= 0 {
		return fmt.Errorf("%s range step must be positive, got %g", name, r.Step)
	}
	return nil
}

// Contains reports whether value lies within the range bounds.
func (r Range) Contains(value float64) bool {
	return value >= r.Min && value <= r.Max
}

// ValidateDefault checks a configured starting value against its control
// range and returns warnings for values the control cannot show as-is.
func ValidateDefault(name string, value float64, r Range) []string {
	var warnings []string

	if !r.Contains(value) {
		warnings = append(warnings, fmt.Sprintf("Default %s %g is outside [%g, %g] and will be clamped",
			name, value, r.Min, r.Max))
		return warnings
	}

	if !mathutil.OnStep(value, r.Min, r.Step) {
		warnings = append(warnings, fmt.Sprintf("Default %s %g is not a multiple of step %g from %g and will be snapped",
			name, value, r.Step, r.Min))
	}

	return warnings
}

// ConfigValidator gathers the calculator settings that are checked together.
type ConfigValidator struct {
	Amount              float64
	TermYears           int
	InterestRate        float64
	SuggestionThreshold int
	BreakdownRows       int
	AmountRange         Range
	TermRange           Range
	RateRange           Range
}

// ValidateAll returns warnings for settings that are accepted but adjusted or
// ineffective. Malformed ranges are reported as errors.
func (cv *ConfigValidator) ValidateAll() ([]string, error) {
	ranges := []struct {
		name string
		r    Range
	}{
		{"amount", cv.AmountRange},
		{"term", cv.TermRange},
		{"interest rate", cv.RateRange},
	}
	for _, entry := range ranges {
		if err := entry.r.Validate(entry.name); err != nil {
			return nil, err
		}
	}

	var warnings []string
	warnings = append(warnings, ValidateDefault("amount", cv.Amount, cv.AmountRange)...)
	warnings = append(warnings, ValidateDefault("term", float64(cv.TermYears), cv.TermRange)...)
	warnings = append(warnings, ValidateDefault("interest rate", cv.InterestRate, cv.RateRange)...)

	if cv.SuggestionThreshold < 1 {
		warnings = append(warnings, fmt.Sprintf("Suggestion threshold %d is below 1; one-year terms still never receive a suggestion",
			cv.SuggestionThreshold))
	}
	if cv.SuggestionThreshold >= int(cv.TermRange.Max) {
		warnings = append(warnings, fmt.Sprintf("Suggestion threshold %d is at or above the maximum term %g; no suggestion will ever be shown",
			cv.SuggestionThreshold, cv.TermRange.Max))
	}
	if cv.BreakdownRows <= 0 {
		warnings = append(warnings, fmt.Sprintf("Breakdown rows %d is not positive; the full schedule will be shown",
			cv.BreakdownRows))
	}

	return warnings, nil
}
