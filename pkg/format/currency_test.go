package format

import "testing"

func TestCurrency(t *testing.T) {
	f := Default()

	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"Default periodic payment", 37.69667003103178, "£37.70"},
		{"Thousands grouping", 2261.8002018619068, "£2,261.80"},
		{"Millions grouping", 1234567.891, "£1,234,567.89"},
		{"Small amount", 0.5, "£0.50"},
		{"Zero", 0, "£0.00"},
		{"Negative amount", -1234.5, "-£1,234.50"},
		{"Negative rounds to zero", -0.001, "£0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := f.Currency(tt.amount); result != tt.expected {
				t.Errorf("Currency(%v) = %q, expected %q", tt.amount, result, tt.expected)
			}
		})
	}
}

func TestWholeCurrency(t *testing.T) {
	f := Default()

	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"Total repayment", 2261.8002018619068, "£2,262"},
		{"Total interest", 261.80020186190677, "£262"},
		{"Borrowing amount", 20000, "£20,000"},
		{"Savings", 53.16, "£53"},
		{"Negative savings", -1500.4, "-£1,500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := f.WholeCurrency(tt.amount); result != tt.expected {
				t.Errorf("WholeCurrency(%v) = %q, expected %q", tt.amount, result, tt.expected)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name           string
		symbol         string
		locale         string
		expectErr      bool
		expectedSymbol string
		expected       string
	}{
		{name: "Defaults", expectedSymbol: "£", expected: "£1,000.00"},
		{name: "Custom symbol", symbol: "$", locale: "en-US", expectedSymbol: "$", expected: "$1,000.00"},
		{name: "Invalid locale", symbol: "£", locale: "???", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFormatter(tt.symbol, tt.locale)
			if tt.expectErr {
				if err == nil {
					t.Fatal("NewFormatter() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFormatter() error = %v", err)
			}
			if f.Symbol() != tt.expectedSymbol {
				t.Errorf("Symbol() = %q, expected %q", f.Symbol(), tt.expectedSymbol)
			}
			if result := f.Currency(1000); result != tt.expected {
				t.Errorf("Currency(1000) = %q, expected %q", result, tt.expected)
			}
		})
	}
}
