// Package output provides utilities for formatting and displaying loan quotes.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/iwvelando/loan-calculator/pkg/validation"
)

// Write renders view to w in the named output format.
func Write(w io.Writer, outputFormat string, view QuoteView, f *format.Formatter) error {
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}
	if outputFormat == constants.OutputFormatJSON {
		return JSONFormat(w, view)
	}
	return PrettyFormat(w, view, f)
}

// JSONFormat outputs the quote as indented JSON.
func JSONFormat(w io.Writer, view QuoteView) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(view); err != nil {
		return fmt.Errorf("failed to encode quote: %w", err)
	}
	return nil
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, view QuoteView, f *format.Formatter) error {
	if f == nil {
		f = format.Default()
	}
	pw := &errWriter{w: w}

	pw.printf("--- Loan quote ---\n")
	pw.printf("Amount          | %s\n", view.Formatted.Amount)
	pw.printf("Term            | %d years\n", view.TermYears)
	pw.printf("Interest rate   | %.2f%%\n", view.InterestRate)
	pw.printf("Frequency       | %s\n", view.Frequency.Title())
	pw.printf("Payment method  | %s\n", view.PaymentMethod)
	pw.printf("Payment         | %s / %s\n", view.Formatted.PeriodicPayment, view.PaymentUnit)
	pw.printf("To repay        | %s\n", view.Formatted.TotalRepayment)
	pw.printf("Total interest  | %s\n", view.Formatted.TotalInterest)

	if view.Suggestion != nil {
		pw.printf("\nSuggestion: %s\n", view.Suggestion.Text)
	}

	if c := view.Comparison; c != nil {
		pw.printf("\n--- Comparison: %d vs %d Years ---\n", view.TermYears, c.TermYears)
		pw.printf("Current (%d years)     | %s / %s | %s total\n",
			view.TermYears, view.Formatted.PeriodicPayment, view.PaymentUnit, view.Formatted.TotalRepayment)
		pw.printf("Alternative (%d years) | %s / %s | %s total\n",
			c.TermYears, c.FormattedPeriodicPayment, view.PaymentUnit, c.FormattedTotalRepayment)
		if c.Savings != nil && mathutil.IsPositive(*c.Savings) {
			pw.printf("Potential savings: %s\n", c.FormattedSavings)
		}
	}

	if len(view.Breakdown) > 0 {
		withDates := view.Breakdown[0].DueDate != ""
		pw.printf("\n--- Payment breakdown ---\n")
		if withDates {
			pw.printf("Payment    | Due date   | Total      | Principal  | Interest   | Balance\n")
			pw.printf("_______    | ________   | _____      | _________  | ________   | _______\n")
		} else {
			pw.printf("Payment    | Total      | Principal  | Interest   | Balance\n")
			pw.printf("_______    | _____      | _________  | ________   | _______\n")
		}
		for _, row := range view.Breakdown {
			pw.printf("%-10s | ", row.Label)
			if withDates {
				pw.printf("%-10s | ", row.DueDate)
			}
			pw.printf("%-10s | %-10s | %-10s | %s\n",
				f.Currency(row.Payment), f.Currency(row.Principal), f.Currency(row.Interest), f.Currency(row.RemainingBalance))
		}
	}

	return pw.err
}

// errWriter keeps the first write error so a run of prints can be checked once.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(layout string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, layout, args...)
}
