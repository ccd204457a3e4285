// Package calculator holds the state behind the loan calculator controls and
// turns it into quotes. Values set through the setters are clamped to the
// configured bounds and snapped to the control steps, so every quote is
// computed from a valid loan.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/iwvelando/loan-calculator/internal/leads"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"go.uber.org/zap"
)

// ErrInvalidPaymentMethod is returned for payment methods other than bank or cash.
var ErrInvalidPaymentMethod = errors.New("invalid payment method")

// Bounds holds the range of each control.
type Bounds struct {
	Amount       validation.Range `json:"amount"`
	TermYears    validation.Range `json:"termYears"`
	InterestRate validation.Range `json:"interestRate"`
}

// DefaultBounds returns the standard control ranges.
func DefaultBounds() Bounds {
	return Bounds{
		Amount:       validation.Range{Min: constants.MinAmount, Max: constants.MaxAmount, Step: constants.AmountStep},
		TermYears:    validation.Range{Min: constants.MinTermYears, Max: constants.MaxTermYears, Step: constants.TermYearsStep},
		InterestRate: validation.Range{Min: constants.MinInterestRate, Max: constants.MaxInterestRate, Step: constants.InterestRateStep},
	}
}

// Validate checks each range.
func (b Bounds) Validate() error {
	if err := b.Amount.Validate("amount"); err != nil {
		return err
	}
	if err := b.TermYears.Validate("term"); err != nil {
		return err
	}
	if b.TermYears.Min < 1 {
		return fmt.Errorf("term range minimum must be at least 1, got %g", b.TermYears.Min)
	}
	if err := b.InterestRate.Validate("interest rate"); err != nil {
		return err
	}
	if b.Amount.Min <= 0 {
		return fmt.Errorf("amount range minimum must be positive, got %g", b.Amount.Min)
	}
	if b.InterestRate.Min < 0 {
		return fmt.Errorf("interest rate range minimum must not be negative, got %g", b.InterestRate.Min)
	}
	return nil
}

// Options configures a Calculator. The starting values are passed through the
// setters, so out-of-range defaults are clamped rather than rejected.
type Options struct {
	Amount              float64
	TermYears           int
	InterestRate        float64
	Frequency           loans.Frequency
	PaymentMethod       string
	ComparisonTermYears int // 0 for no comparison
	StartDate           time.Time
	Bounds              Bounds
	BreakdownRows       int
	SuggestionThreshold int
	Sink                leads.Sink
}

// DefaultOptions returns the options for a fresh calculator.
func DefaultOptions() Options {
	return Options{
		Amount:              constants.DefaultAmount,
		TermYears:           constants.DefaultTermYears,
		InterestRate:        constants.DefaultInterestRate,
		Frequency:           loans.Frequency(constants.DefaultFrequency),
		PaymentMethod:       constants.DefaultPaymentMethod,
		Bounds:              DefaultBounds(),
		BreakdownRows:       constants.DefaultBreakdownRows,
		SuggestionThreshold: constants.DefaultSuggestionThreshold,
	}
}

// Quote is everything shown for the current inputs.
type Quote struct {
	Parameters    loans.Parameters
	PaymentMethod string
	Result        loans.PaymentResult
	Breakdown     []loans.BreakdownRow
	Suggestion    *loans.Suggestion
	Comparison    *loans.Comparison
	StartDate     time.Time
}

// Calculator is the state of one calculator session. It is not safe for
// concurrent use.
type Calculator struct {
	logger *zap.Logger
	sink   leads.Sink

	bounds              Bounds
	breakdownRows       int
	suggestionThreshold int
	startDate           time.Time

	amount         float64
	termYears      int
	interestRate   float64
	frequency      loans.Frequency
	paymentMethod  string
	comparisonTerm int
	submitted      bool
}

// New creates a calculator from opts. A nil logger discards output and a nil
// sink logs leads through logger.
func New(logger *zap.Logger, opts Options) (*Calculator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := opts.Bounds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calculator bounds: %w", err)
	}

	sink := opts.Sink
	if sink == nil {
		sink = leads.NewLogSink(logger)
	}

	c := &Calculator{
		logger:              logger,
		sink:                sink,
		bounds:              opts.Bounds,
		breakdownRows:       opts.BreakdownRows,
		suggestionThreshold: opts.SuggestionThreshold,
		startDate:           opts.StartDate,
	}

	c.SetAmount(opts.Amount)
	c.SetTermYears(opts.TermYears)
	c.SetInterestRate(opts.InterestRate)

	frequency := opts.Frequency
	if frequency == "" {
		frequency = loans.Monthly
	}
	if err := c.SetFrequency(frequency); err != nil {
		return nil, err
	}

	method := opts.PaymentMethod
	if method == "" {
		method = constants.DefaultPaymentMethod
	}
	if err := c.SetPaymentMethod(method); err != nil {
		return nil, err
	}

	if opts.ComparisonTermYears > 0 {
		c.CompareWith(opts.ComparisonTermYears)
	}

	return c, nil
}

// SetAmount sets the loan amount and returns the value actually applied.
func (c *Calculator) SetAmount(amount float64) float64 {
	c.amount = c.snap(amount, c.bounds.Amount)
	return c.amount
}

// SetTermYears sets the term and returns the value actually applied.
func (c *Calculator) SetTermYears(years int) int {
	c.termYears = c.snapTerm(years)
	return c.termYears
}

// SetInterestRate sets the annual rate in percent and returns the value
// actually applied, rounded to two decimals.
func (c *Calculator) SetInterestRate(rate float64) float64 {
	c.interestRate = mathutil.RoundTo(c.snap(rate, c.bounds.InterestRate), 2)
	return c.interestRate
}

// SetFrequency sets the repayment frequency.
func (c *Calculator) SetFrequency(frequency loans.Frequency) error {
	if !frequency.Valid() {
		return fmt.Errorf("%w: %q", loans.ErrInvalidFrequency, frequency)
	}
	c.frequency = frequency
	return nil
}

// SetPaymentMethod sets how repayments will be made.
func (c *Calculator) SetPaymentMethod(method string) error {
	method = strings.ToLower(strings.TrimSpace(method))
	if err := validation.ValidatePaymentMethod(method); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPaymentMethod, err)
	}
	c.paymentMethod = method
	return nil
}

// CompareWith shows a comparison against another term and returns the term
// actually applied.
func (c *Calculator) CompareWith(years int) int {
	c.comparisonTerm = c.snapTerm(years)
	return c.comparisonTerm
}

// ClearComparison closes the comparison.
func (c *Calculator) ClearComparison() {
	c.comparisonTerm = 0
}

// AcceptSuggestion compares against the suggested term, if there is one, and
// reports whether it did.
func (c *Calculator) AcceptSuggestion() (bool, error) {
	suggestion, err := loans.SuggestShorterTerm(c.Parameters(), c.suggestionThreshold)
	if err != nil {
		return false, err
	}
	if suggestion == nil {
		return false, nil
	}
	c.comparisonTerm = suggestion.TermYears
	return true, nil
}

// Amount returns the current loan amount.
func (c *Calculator) Amount() float64 { return c.amount }

// TermYears returns the current term.
func (c *Calculator) TermYears() int { return c.termYears }

// InterestRate returns the current annual rate in percent.
func (c *Calculator) InterestRate() float64 { return c.interestRate }

// Frequency returns the current repayment frequency.
func (c *Calculator) Frequency() loans.Frequency { return c.frequency }

// PaymentMethod returns the current payment method.
func (c *Calculator) PaymentMethod() string { return c.paymentMethod }

// ComparisonTermYears returns the comparison term, or 0 when none is shown.
func (c *Calculator) ComparisonTermYears() int { return c.comparisonTerm }

// Bounds returns the control ranges.
func (c *Calculator) Bounds() Bounds { return c.bounds }

// Parameters returns the current loan parameters.
func (c *Calculator) Parameters() loans.Parameters {
	return loans.Parameters{
		Principal:         c.amount,
		TermYears:         c.termYears,
		AnnualRatePercent: c.interestRate,
		Frequency:         c.frequency,
	}
}

// Quote computes the figures for the current inputs. Nothing is cached
// between calls.
func (c *Calculator) Quote() (Quote, error) {
	params := c.Parameters()

	result, err := loans.Calculate(params)
	if err != nil {
		return Quote{}, err
	}

	breakdown, err := loans.Breakdown(params, c.breakdownRows)
	if err != nil {
		return Quote{}, err
	}

	suggestion, err := loans.SuggestShorterTerm(params, c.suggestionThreshold)
	if err != nil {
		return Quote{}, err
	}

	quote := Quote{
		Parameters:    params,
		PaymentMethod: c.paymentMethod,
		Result:        result,
		Breakdown:     breakdown,
		Suggestion:    suggestion,
		StartDate:     c.startDate,
	}

	if c.comparisonTerm > 0 {
		comparison, err := loans.Compare(params, c.comparisonTerm)
		if err != nil {
			return Quote{}, err
		}
		quote.Comparison = &comparison
	}

	c.logger.Debug("computed quote",
		zap.String("op", "calculator.Quote"),
		zap.Float64("amount", params.Principal),
		zap.Int("termYears", params.TermYears),
		zap.Float64("interestRate", params.AnnualRatePercent),
		zap.String("frequency", string(params.Frequency)),
		zap.Float64("periodicPayment", result.PeriodicPayment),
	)

	return quote, nil
}

// Schedule returns every payment row for the current inputs.
func (c *Calculator) Schedule() (iter.Seq[loans.BreakdownRow], error) {
	return loans.Rows(c.Parameters())
}

// SubmitLead sends an application for the current inputs and marks the
// session as submitted.
func (c *Calculator) SubmitLead(ctx context.Context, fullName, email string) (leads.Receipt, error) {
	lead := leads.Lead{
		FullName:      fullName,
		Email:         email,
		Parameters:    c.Parameters(),
		PaymentMethod: c.paymentMethod,
	}

	receipt, err := c.sink.Submit(ctx, lead)
	if err != nil {
		c.logger.Error("lead submission failed",
			zap.String("op", "calculator.SubmitLead"),
			zap.Error(err),
		)
		return leads.Receipt{}, err
	}

	c.submitted = true
	return receipt, nil
}

// Submitted reports whether an application has been sent.
func (c *Calculator) Submitted() bool { return c.submitted }

// ResetSubmission allows another application to be sent.
func (c *Calculator) ResetSubmission() { c.submitted = false }

func (c *Calculator) snap(value float64, r validation.Range) float64 {
	if !mathutil.IsFinite(value) {
		value = r.Min
	}
	snapped := mathutil.SnapToStep(mathutil.Clamp(value, r.Min, r.Max), r.Min, r.Step)
	if snapped > r.Max {
		// Max itself may sit off the step grid.
		if mathutil.WithinTolerance(snapped, r.Max, r.Step*1e-6) {
			return r.Max
		}
		snapped -= r.Step
	}
	return snapped
}

func (c *Calculator) snapTerm(years int) int {
	return int(c.snap(float64(years), c.bounds.TermYears))
}
