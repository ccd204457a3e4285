package output

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/iwvelando/loan-calculator/pkg/loans"
)

// QuoteView is the rendered form of a quote: raw figures for machines and
// formatted strings for people.
type QuoteView struct {
	Amount          float64         `json:"amount"`
	TermYears       int             `json:"termYears"`
	InterestRate    float64         `json:"interestRate"`
	Frequency       loans.Frequency `json:"frequency"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentUnit     string          `json:"paymentUnit"`
	TotalPayments   int             `json:"totalPayments"`
	PeriodicPayment float64         `json:"periodicPayment"`
	TotalRepayment  float64         `json:"totalRepayment"`
	TotalInterest   float64         `json:"totalInterest"`
	Formatted       FormattedTotals `json:"formatted"`
	Breakdown       []RowView       `json:"breakdown"`
	Suggestion      *SuggestionView `json:"suggestion,omitempty"`
	Comparison      *ComparisonView `json:"comparison,omitempty"`
}

// FormattedTotals holds the headline figures as currency strings.
type FormattedTotals struct {
	Amount          string `json:"amount"`
	PeriodicPayment string `json:"periodicPayment"`
	TotalRepayment  string `json:"totalRepayment"`
	TotalInterest   string `json:"totalInterest"`
}

// RowView is one schedule row.
type RowView struct {
	Index            int     `json:"index"`
	Label            string  `json:"label"`
	DueDate          string  `json:"dueDate,omitempty"`
	Payment          float64 `json:"payment"`
	Principal        float64 `json:"principal"`
	Interest         float64 `json:"interest"`
	RemainingBalance float64 `json:"remainingBalance"`
}

// SuggestionView is the shorter-term hint.
type SuggestionView struct {
	TermYears        int     `json:"termYears"`
	EstimatedSavings float64 `json:"estimatedSavings"`
	Text             string  `json:"text"`
}

// ComparisonView compares the quote with an alternative term.
type ComparisonView struct {
	TermYears                int      `json:"termYears"`
	PeriodicPayment          float64  `json:"periodicPayment"`
	TotalRepayment           float64  `json:"totalRepayment"`
	Savings                  *float64 `json:"savings,omitempty"`
	FormattedPeriodicPayment string   `json:"formattedPeriodicPayment"`
	FormattedTotalRepayment  string   `json:"formattedTotalRepayment"`
	FormattedSavings         string   `json:"formattedSavings,omitempty"`
}

// SuggestionText is the hint shown for a shorter term.
func SuggestionText(f *format.Formatter, s loans.Suggestion) string {
	return fmt.Sprintf("Save %s by choosing a %d-year term", f.WholeCurrency(s.EstimatedSavings), s.TermYears)
}

// NewQuoteView renders q with f. A nil formatter uses the default currency.
func NewQuoteView(q calculator.Quote, f *format.Formatter) QuoteView {
	if f == nil {
		f = format.Default()
	}

	view := QuoteView{
		Amount:          q.Parameters.Principal,
		TermYears:       q.Parameters.TermYears,
		InterestRate:    q.Parameters.AnnualRatePercent,
		Frequency:       q.Parameters.Frequency,
		PaymentMethod:   q.PaymentMethod,
		PaymentUnit:     q.Parameters.Frequency.Unit(),
		TotalPayments:   q.Result.TotalPayments,
		PeriodicPayment: q.Result.PeriodicPayment,
		TotalRepayment:  q.Result.TotalRepayment,
		TotalInterest:   q.Result.TotalInterest,
		Formatted: FormattedTotals{
			Amount:          f.WholeCurrency(q.Parameters.Principal),
			PeriodicPayment: f.Currency(q.Result.PeriodicPayment),
			TotalRepayment:  f.WholeCurrency(q.Result.TotalRepayment),
			TotalInterest:   f.WholeCurrency(q.Result.TotalInterest),
		},
		Breakdown: RowViews(q.Parameters.Frequency, q.StartDate, slices.Values(q.Breakdown)),
	}

	if q.Suggestion != nil {
		view.Suggestion = &SuggestionView{
			TermYears:        q.Suggestion.TermYears,
			EstimatedSavings: q.Suggestion.EstimatedSavings,
			Text:             SuggestionText(f, *q.Suggestion),
		}
	}

	if q.Comparison != nil {
		comparison := &ComparisonView{
			TermYears:                q.Comparison.TermYears,
			PeriodicPayment:          q.Comparison.PeriodicPayment,
			TotalRepayment:           q.Comparison.TotalRepayment,
			Savings:                  q.Comparison.Savings,
			FormattedPeriodicPayment: f.Currency(q.Comparison.PeriodicPayment),
			FormattedTotalRepayment:  f.WholeCurrency(q.Comparison.TotalRepayment),
		}
		if q.Comparison.HasSavings() {
			comparison.FormattedSavings = f.WholeCurrency(*q.Comparison.Savings)
		}
		view.Comparison = comparison
	}

	return view
}

// RowViews labels rows for frequency. When start is set each row also gets
// its due date.
func RowViews(frequency loans.Frequency, start time.Time, rows iter.Seq[loans.BreakdownRow]) []RowView {
	views := []RowView{}
	for row := range rows {
		view := RowView{
			Index:            row.Index,
			Label:            frequency.PeriodLabel(row.Index),
			Payment:          row.Payment,
			Principal:        row.Principal,
			Interest:         row.Interest,
			RemainingBalance: row.RemainingBalance,
		}
		if !start.IsZero() {
			view.DueDate = datetime.DueDate(start, frequency.PaymentsPerYear(), row.Index).Format(datetime.DateLayout)
		}
		views = append(views, view)
	}
	return views
}
