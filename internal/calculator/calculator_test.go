package calculator

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/loan-calculator/internal/leads"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/testutil"
	"github.com/iwvelando/loan-calculator/pkg/validation"
)

type recordingSink struct {
	leads []leads.Lead
	err   error
}

func (s *recordingSink) Submit(_ context.Context, lead leads.Lead) (leads.Receipt, error) {
	if s.err != nil {
		return leads.Receipt{}, s.err
	}
	lead.ID = "lead-1"
	s.leads = append(s.leads, lead)
	return leads.NewReceipt(lead), nil
}

func newTestCalculator(t *testing.T, sink leads.Sink) *Calculator {
	t.Helper()
	opts := DefaultOptions()
	opts.Sink = sink
	calc, err := New(nil, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return calc
}

func TestNewDefaults(t *testing.T) {
	calc := newTestCalculator(t, nil)

	if calc.Amount() != 2000 {
		t.Errorf("Amount() = %v, expected 2000", calc.Amount())
	}
	if calc.TermYears() != 5 {
		t.Errorf("TermYears() = %d, expected 5", calc.TermYears())
	}
	if calc.InterestRate() != 4.95 {
		t.Errorf("InterestRate() = %v, expected 4.95", calc.InterestRate())
	}
	if calc.Frequency() != loans.Monthly {
		t.Errorf("Frequency() = %s, expected monthly", calc.Frequency())
	}
	if calc.PaymentMethod() != "bank" {
		t.Errorf("PaymentMethod() = %s, expected bank", calc.PaymentMethod())
	}
	if calc.ComparisonTermYears() != 0 {
		t.Errorf("ComparisonTermYears() = %d, expected 0", calc.ComparisonTermYears())
	}
	if calc.Submitted() {
		t.Error("Submitted() = true for a new calculator")
	}
}

func TestNewClampsDefaults(t *testing.T) {
	opts := DefaultOptions()
	opts.Amount = 50000
	opts.TermYears = 0
	opts.InterestRate = 4.93
	opts.Frequency = ""
	opts.PaymentMethod = ""
	opts.ComparisonTermYears = 30

	calc, err := New(nil, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if calc.Amount() != 20000 {
		t.Errorf("Amount() = %v, expected 20000", calc.Amount())
	}
	if calc.TermYears() != 1 {
		t.Errorf("TermYears() = %d, expected 1", calc.TermYears())
	}
	if calc.InterestRate() != 4.95 {
		t.Errorf("InterestRate() = %v, expected 4.95", calc.InterestRate())
	}
	if calc.Frequency() != loans.Monthly {
		t.Errorf("Frequency() = %s, expected monthly", calc.Frequency())
	}
	if calc.PaymentMethod() != "bank" {
		t.Errorf("PaymentMethod() = %s, expected bank", calc.PaymentMethod())
	}
	if calc.ComparisonTermYears() != 15 {
		t.Errorf("ComparisonTermYears() = %d, expected 15", calc.ComparisonTermYears())
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{name: "Inverted amount range", modify: func(o *Options) { o.Bounds.Amount = validation.Range{Min: 5000, Max: 1000, Step: 100} }},
		{name: "Zero rate step", modify: func(o *Options) { o.Bounds.InterestRate.Step = 0 }},
		{name: "Zero term minimum", modify: func(o *Options) { o.Bounds.TermYears.Min = 0 }},
		{name: "Non-positive amount minimum", modify: func(o *Options) { o.Bounds.Amount.Min = 0 }},
		{name: "Unknown frequency", modify: func(o *Options) { o.Frequency = "weekly" }},
		{name: "Unknown payment method", modify: func(o *Options) { o.PaymentMethod = "card" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			if _, err := New(nil, opts); err == nil {
				t.Error("New() expected error")
			}
		})
	}
}

func TestSetAmount(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{input: 2000, expected: 2000},
		{input: 500, expected: 1000},
		{input: 25000, expected: 20000},
		{input: 2049, expected: 2000},
		{input: 2051, expected: 2100},
		{input: 19990, expected: 20000},
		{input: math.NaN(), expected: 1000},
		{input: math.Inf(1), expected: 1000},
	}

	calc := newTestCalculator(t, nil)
	for _, tt := range tests {
		if got := calc.SetAmount(tt.input); got != tt.expected {
			t.Errorf("SetAmount(%v) = %v, expected %v", tt.input, got, tt.expected)
		}
		if calc.Amount() != tt.expected {
			t.Errorf("Amount() after SetAmount(%v) = %v, expected %v", tt.input, calc.Amount(), tt.expected)
		}
	}
}

func TestSetTermYears(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{input: 5, expected: 5},
		{input: 0, expected: 1},
		{input: -3, expected: 1},
		{input: 15, expected: 15},
		{input: 40, expected: 15},
	}

	calc := newTestCalculator(t, nil)
	for _, tt := range tests {
		if got := calc.SetTermYears(tt.input); got != tt.expected {
			t.Errorf("SetTermYears(%d) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}

func TestSetInterestRate(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{input: 4.95, expected: 4.95},
		{input: 0.1, expected: 0.5},
		{input: 0, expected: 0.5},
		{input: 25, expected: 20},
		{input: 20, expected: 20},
		{input: 4.97, expected: 4.95},
		{input: 4.98, expected: 5},
		{input: 7.123, expected: 7.1},
	}

	calc := newTestCalculator(t, nil)
	for _, tt := range tests {
		if got := calc.SetInterestRate(tt.input); got != tt.expected {
			t.Errorf("SetInterestRate(%v) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestSetFrequencyAndPaymentMethod(t *testing.T) {
	calc := newTestCalculator(t, nil)

	if err := calc.SetFrequency(loans.Biweekly); err != nil {
		t.Fatalf("SetFrequency() error = %v", err)
	}
	if calc.Parameters().TotalPayments() != 130 {
		t.Errorf("TotalPayments() = %d, expected 130", calc.Parameters().TotalPayments())
	}
	if err := calc.SetFrequency("fortnightly"); !errors.Is(err, loans.ErrInvalidFrequency) {
		t.Errorf("SetFrequency() error = %v, expected %v", err, loans.ErrInvalidFrequency)
	}
	if calc.Frequency() != loans.Biweekly {
		t.Errorf("Frequency() changed after rejected update: %s", calc.Frequency())
	}

	if err := calc.SetPaymentMethod(" Cash "); err != nil {
		t.Fatalf("SetPaymentMethod() error = %v", err)
	}
	if calc.PaymentMethod() != "cash" {
		t.Errorf("PaymentMethod() = %s, expected cash", calc.PaymentMethod())
	}
	if err := calc.SetPaymentMethod("card"); !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Errorf("SetPaymentMethod() error = %v, expected %v", err, ErrInvalidPaymentMethod)
	}
}

func TestQuoteDefaultScenario(t *testing.T) {
	calc := newTestCalculator(t, nil)

	quote, err := calc.Quote()
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}

	testutil.AssertClose(t, "PeriodicPayment", quote.Result.PeriodicPayment, 37.6967, 0.001)
	testutil.AssertClose(t, "TotalRepayment", quote.Result.TotalRepayment, 2261.80, 0.01)
	testutil.AssertClose(t, "TotalInterest", quote.Result.TotalInterest, 261.80, 0.01)

	if len(quote.Breakdown) != 12 {
		t.Errorf("Breakdown has %d rows, expected 12", len(quote.Breakdown))
	}
	if quote.Suggestion == nil || quote.Suggestion.TermYears != 4 {
		t.Errorf("Suggestion = %+v, expected a 4-year suggestion", quote.Suggestion)
	}
	if quote.Comparison != nil {
		t.Errorf("Comparison = %+v, expected none", quote.Comparison)
	}
	if quote.PaymentMethod != "bank" {
		t.Errorf("PaymentMethod = %s, expected bank", quote.PaymentMethod)
	}
}

func TestQuoteRecomputesOnChange(t *testing.T) {
	calc := newTestCalculator(t, nil)

	monthly, err := calc.Quote()
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}

	if err := calc.SetFrequency(loans.Biweekly); err != nil {
		t.Fatalf("SetFrequency() error = %v", err)
	}
	biweekly, err := calc.Quote()
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}

	if biweekly.Result.TotalPayments != 130 || monthly.Result.TotalPayments != 60 {
		t.Errorf("TotalPayments = %d/%d, expected 60/130", monthly.Result.TotalPayments, biweekly.Result.TotalPayments)
	}
	if biweekly.Result.PeriodicPayment >= monthly.Result.PeriodicPayment {
		t.Errorf("bi-weekly payment %.2f should be below monthly %.2f",
			biweekly.Result.PeriodicPayment, monthly.Result.PeriodicPayment)
	}
}

func TestQuoteSuggestionThreshold(t *testing.T) {
	calc := newTestCalculator(t, nil)

	for _, tt := range []struct {
		term          int
		hasSuggestion bool
	}{
		{term: 1}, {term: 3}, {term: 4, hasSuggestion: true}, {term: 15, hasSuggestion: true},
	} {
		calc.SetTermYears(tt.term)
		quote, err := calc.Quote()
		if err != nil {
			t.Fatalf("Quote() error = %v", err)
		}
		if (quote.Suggestion != nil) != tt.hasSuggestion {
			t.Errorf("term %d suggestion = %+v, expected present = %t", tt.term, quote.Suggestion, tt.hasSuggestion)
		}
	}
}

func TestComparisonLifecycle(t *testing.T) {
	calc := newTestCalculator(t, nil)

	accepted, err := calc.AcceptSuggestion()
	if err != nil {
		t.Fatalf("AcceptSuggestion() error = %v", err)
	}
	if !accepted || calc.ComparisonTermYears() != 4 {
		t.Fatalf("AcceptSuggestion() = %t with comparison term %d, expected true and 4", accepted, calc.ComparisonTermYears())
	}

	quote, err := calc.Quote()
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if quote.Comparison == nil || !quote.Comparison.HasSavings() {
		t.Fatalf("Comparison = %+v, expected savings", quote.Comparison)
	}
	testutil.AssertClose(t, "Savings", *quote.Comparison.Savings, 53.16, 0.01)

	// The comparison stays open when the main term moves past it.
	calc.SetTermYears(3)
	quote, err = calc.Quote()
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if quote.Comparison == nil {
		t.Fatal("Comparison closed after term change")
	}
	if quote.Comparison.HasSavings() {
		t.Errorf("Comparison against a longer term reported savings %.2f", *quote.Comparison.Savings)
	}

	calc.ClearComparison()
	quote, err = calc.Quote()
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if quote.Comparison != nil {
		t.Errorf("Comparison = %+v after ClearComparison()", quote.Comparison)
	}

	accepted, err = calc.AcceptSuggestion()
	if err != nil {
		t.Fatalf("AcceptSuggestion() error = %v", err)
	}
	if accepted || calc.ComparisonTermYears() != 0 {
		t.Errorf("AcceptSuggestion() at 3 years = %t with comparison term %d, expected false and 0",
			accepted, calc.ComparisonTermYears())
	}

	if got := calc.CompareWith(0); got != 1 {
		t.Errorf("CompareWith(0) = %d, expected 1", got)
	}
}

func TestSchedule(t *testing.T) {
	calc := newTestCalculator(t, nil)

	seq, err := calc.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	count := 0
	var last loans.BreakdownRow
	for row := range seq {
		count++
		last = row
	}
	if count != 60 {
		t.Errorf("Schedule() yielded %d rows, expected 60", count)
	}
	if last.RemainingBalance != 0 {
		t.Errorf("final balance = %v, expected 0", last.RemainingBalance)
	}
}

func TestSubmitLead(t *testing.T) {
	sink := &recordingSink{}
	calc := newTestCalculator(t, sink)
	if err := calc.SetPaymentMethod("cash"); err != nil {
		t.Fatalf("SetPaymentMethod() error = %v", err)
	}

	receipt, err := calc.SubmitLead(context.Background(), "Ada Lovelace", "ada@example.com")
	if err != nil {
		t.Fatalf("SubmitLead() error = %v", err)
	}
	if receipt.Title != leads.ReceiptTitle || receipt.Message != leads.ReceiptMessage {
		t.Errorf("receipt = %+v", receipt)
	}
	if !calc.Submitted() {
		t.Error("Submitted() = false after SubmitLead()")
	}

	if len(sink.leads) != 1 {
		t.Fatalf("sink received %d leads, expected 1", len(sink.leads))
	}
	lead := sink.leads[0]
	if lead.FullName != "Ada Lovelace" || lead.Email != "ada@example.com" {
		t.Errorf("lead contact = %q <%q>", lead.FullName, lead.Email)
	}
	if lead.Parameters != calc.Parameters() {
		t.Errorf("lead parameters = %+v, expected %+v", lead.Parameters, calc.Parameters())
	}
	if lead.PaymentMethod != "cash" {
		t.Errorf("lead payment method = %s, expected cash", lead.PaymentMethod)
	}

	calc.ResetSubmission()
	if calc.Submitted() {
		t.Error("Submitted() = true after ResetSubmission()")
	}
}

func TestSubmitLeadFailure(t *testing.T) {
	sinkErr := errors.New("sink unavailable")
	calc := newTestCalculator(t, &recordingSink{err: sinkErr})

	if _, err := calc.SubmitLead(context.Background(), "Ada Lovelace", "ada@example.com"); !errors.Is(err, sinkErr) {
		t.Errorf("SubmitLead() error = %v, expected %v", err, sinkErr)
	}
	if calc.Submitted() {
		t.Error("Submitted() = true after failed submission")
	}
}
