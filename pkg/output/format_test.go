package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/iwvelando/loan-calculator/pkg/loans"
)

func defaultQuote(t *testing.T, modify func(*calculator.Options)) calculator.Quote {
	t.Helper()
	opts := calculator.DefaultOptions()
	if modify != nil {
		modify(&opts)
	}
	calc, err := calculator.New(nil, opts)
	if err != nil {
		t.Fatalf("calculator.New() error = %v", err)
	}
	quote, err := calc.Quote()
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	return quote
}

func TestPrettyFormat(t *testing.T) {
	view := NewQuoteView(defaultQuote(t, nil), nil)

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, view, nil); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()

	expected := []string{
		"--- Loan quote ---",
		"Amount          | £2,000",
		"Term            | 5 years",
		"Interest rate   | 4.95%",
		"Frequency       | Monthly",
		"Payment         | £37.70 / month",
		"To repay        | £2,262",
		"Total interest  | £262",
		"Suggestion: Save £53 by choosing a 4-year term",
		"--- Payment breakdown ---",
		"Month 1",
		"£29.45",
		"£1,970.55",
		"Month 12",
		"£1,638.51",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat output missing %q\n%s", want, output)
		}
	}
	if strings.Contains(output, "Month 13") {
		t.Error("PrettyFormat output contains more than 12 breakdown rows")
	}
	if strings.Contains(output, "Comparison") {
		t.Error("PrettyFormat output contains a comparison that was not requested")
	}
}

func TestPrettyFormatComparison(t *testing.T) {
	quote := defaultQuote(t, func(o *calculator.Options) { o.ComparisonTermYears = 4 })

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, NewQuoteView(quote, nil), nil); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"--- Comparison: 5 vs 4 Years ---",
		"Current (5 years)",
		"Alternative (4 years) | £46.01 / month | £2,209 total",
		"Potential savings: £53",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat output missing %q\n%s", want, output)
		}
	}
}

func TestPrettyFormatLongerComparisonHidesSavings(t *testing.T) {
	quote := defaultQuote(t, func(o *calculator.Options) { o.ComparisonTermYears = 7 })

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, NewQuoteView(quote, nil), nil); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	if strings.Contains(buf.String(), "Potential savings") {
		t.Errorf("PrettyFormat shows savings for a longer term\n%s", buf.String())
	}
}

func TestPrettyFormatBiweeklyWithDueDates(t *testing.T) {
	quote := defaultQuote(t, func(o *calculator.Options) {
		o.Frequency = loans.Biweekly
		o.StartDate = datetime.MustParseTime(datetime.DateLayout, "2025-01-01")
	})

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, NewQuoteView(quote, nil), nil); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Frequency       | Bi-Weekly",
		"/ 2 weeks",
		"Due date",
		"Week 2     | 2025-01-15",
		"Week 24    | 2025-06-18",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat output missing %q\n%s", want, output)
		}
	}
}

func TestPrettyFormatCustomCurrency(t *testing.T) {
	f, err := format.NewFormatter("$", "en-US")
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, NewQuoteView(defaultQuote(t, nil), f), f); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	if !strings.Contains(buf.String(), "$37.70 / month") {
		t.Errorf("PrettyFormat output missing dollar payment\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "£") {
		t.Errorf("PrettyFormat output contains the default symbol\n%s", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	quote := defaultQuote(t, func(o *calculator.Options) { o.ComparisonTermYears = 4 })

	var buf bytes.Buffer
	if err := JSONFormat(&buf, NewQuoteView(quote, nil)); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var decoded QuoteView
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if decoded.TotalPayments != 60 {
		t.Errorf("totalPayments = %d, expected 60", decoded.TotalPayments)
	}
	if decoded.Formatted.PeriodicPayment != "£37.70" {
		t.Errorf("formatted.periodicPayment = %q, expected £37.70", decoded.Formatted.PeriodicPayment)
	}
	if len(decoded.Breakdown) != 12 || decoded.Breakdown[0].Label != "Month 1" {
		t.Errorf("breakdown = %d rows starting %+v", len(decoded.Breakdown), decoded.Breakdown)
	}
	if decoded.Breakdown[0].DueDate != "" {
		t.Errorf("dueDate = %q without a start date", decoded.Breakdown[0].DueDate)
	}
	if decoded.Suggestion == nil || decoded.Suggestion.Text != "Save £53 by choosing a 4-year term" {
		t.Errorf("suggestion = %+v", decoded.Suggestion)
	}
	if decoded.Comparison == nil || decoded.Comparison.Savings == nil || decoded.Comparison.FormattedSavings != "£53" {
		t.Errorf("comparison = %+v", decoded.Comparison)
	}
}

func TestJSONFormatOmitsAbsentSections(t *testing.T) {
	quote := defaultQuote(t, func(o *calculator.Options) { o.TermYears = 2 })

	var buf bytes.Buffer
	if err := JSONFormat(&buf, NewQuoteView(quote, nil)); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := raw["suggestion"]; ok {
		t.Error("suggestion present for a 2-year term")
	}
	if _, ok := raw["comparison"]; ok {
		t.Error("comparison present without a comparison term")
	}
}

func TestWrite(t *testing.T) {
	view := NewQuoteView(defaultQuote(t, nil), nil)

	tests := []struct {
		format    string
		expectErr bool
		contains  string
	}{
		{format: "pretty", contains: "--- Loan quote ---"},
		{format: "json", contains: `"periodicPayment"`},
		{format: "csv", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			err := Write(&buf, tt.format, view, nil)
			if tt.expectErr {
				if err == nil {
					t.Error("Write() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("Write(%s) output missing %q", tt.format, tt.contains)
			}
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestPrettyFormatWriteError(t *testing.T) {
	view := NewQuoteView(defaultQuote(t, nil), nil)
	if err := PrettyFormat(failingWriter{}, view, nil); err == nil {
		t.Error("PrettyFormat() expected write error")
	}
}

func TestRowViewsDueDates(t *testing.T) {
	rows, err := loans.Breakdown(loans.Parameters{Principal: 2000, TermYears: 1, AnnualRatePercent: 4.95, Frequency: loans.Monthly}, 3)
	if err != nil {
		t.Fatalf("Breakdown() error = %v", err)
	}

	views := RowViews(loans.Monthly, datetime.MustParseTime(datetime.DateLayout, "2025-01-31"), slices.Values(rows))

	expected := []string{"2025-02-28", "2025-03-31", "2025-04-30"}
	if len(views) != len(expected) {
		t.Fatalf("RowViews() returned %d rows, expected %d", len(views), len(expected))
	}
	for i, want := range expected {
		if views[i].DueDate != want {
			t.Errorf("row %d due date = %s, expected %s", i+1, views[i].DueDate, want)
		}
	}
}
