package loans

import "fmt"

// Comparison holds the figures for an alternative term at the same principal,
// rate and frequency.
type Comparison struct {
	TermYears       int     `json:"termYears"`
	PeriodicPayment float64 `json:"periodicPayment"`
	TotalRepayment  float64 `json:"totalRepayment"`
	// Savings is set only when the alternative term is shorter than the base
	// term. It is reported as computed, so a negative value is kept.
	Savings *float64 `json:"savings,omitempty"`
}

// HasSavings reports whether savings are defined for the comparison.
func (c Comparison) HasSavings() bool {
	return c.Savings != nil
}

// Suggestion proposes a term one year shorter than the current one.
type Suggestion struct {
	TermYears        int     `json:"termYears"`
	EstimatedSavings float64 `json:"estimatedSavings"`
}

// Compare recomputes the payment and total repayment for comparisonTermYears.
func Compare(base Parameters, comparisonTermYears int) (Comparison, error) {
	baseResult, err := Calculate(base)
	if err != nil {
		return Comparison{}, err
	}
	if comparisonTermYears <= 0 {
		return Comparison{}, fmt.Errorf("%w: comparison term %d", ErrInvalidTerm, comparisonTermYears)
	}

	alternative, err := Calculate(base.WithTerm(comparisonTermYears))
	if err != nil {
		return Comparison{}, err
	}

	comparison := Comparison{
		TermYears:       comparisonTermYears,
		PeriodicPayment: alternative.PeriodicPayment,
		TotalRepayment:  alternative.TotalRepayment,
	}
	if comparisonTermYears < base.TermYears {
		savings := baseResult.TotalRepayment - alternative.TotalRepayment
		comparison.Savings = &savings
	}
	return comparison, nil
}

// SuggestShorterTerm suggests a term one year shorter when the current term
// is strictly greater than threshold. It returns nil when there is no
// suggestion, including for a one-year term.
func SuggestShorterTerm(base Parameters, threshold int) (*Suggestion, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if base.TermYears <= threshold || base.TermYears <= 1 {
		return nil, nil
	}

	comparison, err := Compare(base, base.TermYears-1)
	if err != nil {
		return nil, err
	}

	suggestion := &Suggestion{TermYears: comparison.TermYears}
	if comparison.Savings != nil {
		suggestion.EstimatedSavings = *comparison.Savings
	}
	return suggestion, nil
}
