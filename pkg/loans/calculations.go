// Package loans provides the amortization engine: periodic payments, total
// interest, per-period breakdowns and term comparisons for fixed-rate loans.
package loans

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

var (
	// ErrInvalidPrincipal is returned for a principal that is not a positive finite amount.
	ErrInvalidPrincipal = errors.New("principal must be a positive amount")
	// ErrInvalidTerm is returned for a term that is not a positive number of years.
	ErrInvalidTerm = errors.New("term must be a positive number of years")
	// ErrInvalidRate is returned for a negative or non-finite annual rate.
	ErrInvalidRate = errors.New("annual interest rate must be zero or positive")
	// ErrInvalidFrequency is returned for an unknown repayment frequency.
	ErrInvalidFrequency = errors.New("repayment frequency must be monthly or biweekly")
)

// maxTermYears keeps TotalPayments within int for every frequency.
const maxTermYears = math.MaxInt / constants.BiweeklyPaymentsPerYear

// Parameters holds the inputs of a single calculation.
type Parameters struct {
	Principal         float64   `json:"principal"`
	TermYears         int       `json:"termYears"`
	AnnualRatePercent float64   `json:"annualRatePercent"`
	Frequency         Frequency `json:"frequency"`
}

// PaymentResult holds the figures derived from a set of Parameters.
type PaymentResult struct {
	PeriodicPayment float64 `json:"periodicPayment"`
	TotalRepayment  float64 `json:"totalRepayment"`
	TotalInterest   float64 `json:"totalInterest"`
	TotalPayments   int     `json:"totalPayments"`
}

// Validate rejects inputs that would otherwise produce NaN or infinite figures.
func (p Parameters) Validate() error {
	if math.IsNaN(p.Principal) || math.IsInf(p.Principal, 0) || p.Principal <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidPrincipal, p.Principal)
	}
	if p.TermYears <= 0 || p.TermYears > maxTermYears {
		return fmt.Errorf("%w: got %d", ErrInvalidTerm, p.TermYears)
	}
	if math.IsNaN(p.AnnualRatePercent) || math.IsInf(p.AnnualRatePercent, 0) || p.AnnualRatePercent < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidRate, p.AnnualRatePercent)
	}
	if !p.Frequency.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidFrequency, p.Frequency)
	}
	return nil
}

// TotalPayments is the number of payments over the whole term.
func (p Parameters) TotalPayments() int {
	return p.TermYears * p.Frequency.PaymentsPerYear()
}

// PeriodicRate is the interest rate applied per repayment period.
func (p Parameters) PeriodicRate() float64 {
	return CalculatePeriodicRate(p.AnnualRatePercent, p.Frequency)
}

// WithTerm returns a copy of p with a different term.
func (p Parameters) WithTerm(termYears int) Parameters {
	p.TermYears = termYears
	return p
}

// CalculatePeriodicRate converts a nominal annual percentage rate into the rate
// for one repayment period.
func CalculatePeriodicRate(annualRatePercent float64, frequency Frequency) float64 {
	n := frequency.PaymentsPerYear()
	if n == 0 {
		return 0
	}
	return annualRatePercent / constants.PercentageMultiplier / float64(n)
}

// CalculatePeriodicPayment calculates the payment for a loan using the standard
// amortization formula. The inputs are assumed valid.
func CalculatePeriodicPayment(principal, periodicRate float64, numberOfPayments int) float64 {
	if periodicRate == 0 {
		// For zero interest, simply divide the principal by the number of payments
		return principal / float64(numberOfPayments)
	}

	power := math.Pow(1.00+periodicRate, float64(numberOfPayments))
	discountFactor := (power - 1.00) / power
	return principal * periodicRate / discountFactor
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, periodicRate float64) float64 {
	return remainingPrincipal * periodicRate
}

// PeriodicPayment returns the fixed payment that amortizes the loan over its term.
func PeriodicPayment(p Parameters) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	payment := CalculatePeriodicPayment(p.Principal, p.PeriodicRate(), p.TotalPayments())
	if math.IsNaN(payment) || math.IsInf(payment, 0) {
		return 0, fmt.Errorf("%w: %d years overflows the payment formula", ErrInvalidTerm, p.TermYears)
	}
	return payment, nil
}

// TotalInterest returns the interest paid over the whole term.
func TotalInterest(p Parameters) (float64, error) {
	result, err := Calculate(p)
	if err != nil {
		return 0, err
	}
	return result.TotalInterest, nil
}

// Calculate returns the periodic payment, total repayment and total interest.
func Calculate(p Parameters) (PaymentResult, error) {
	payment, err := PeriodicPayment(p)
	if err != nil {
		return PaymentResult{}, err
	}

	totalPayments := p.TotalPayments()
	totalRepayment := payment * float64(totalPayments)
	return PaymentResult{
		PeriodicPayment: payment,
		TotalRepayment:  totalRepayment,
		TotalInterest:   totalRepayment - p.Principal,
		TotalPayments:   totalPayments,
	}, nil
}
