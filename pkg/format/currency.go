// Package format renders amounts as currency strings with a fixed symbol and
// locale-grouped thousands.
package format

import (
	"fmt"
	"math"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter formats currency amounts for one symbol and locale.
type Formatter struct {
	symbol  string
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter creates a Formatter. An empty symbol or locale falls back to
// the defaults.
func NewFormatter(symbol, locale string) (*Formatter, error) {
	if symbol == "" {
		symbol = constants.DefaultCurrencySymbol
	}
	if locale == "" {
		locale = constants.DefaultLocale
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	return &Formatter{
		symbol:  symbol,
		tag:     tag,
		printer: message.NewPrinter(tag),
	}, nil
}

// Default returns a Formatter for the default symbol and locale.
func Default() *Formatter {
	tag := language.MustParse(constants.DefaultLocale)
	return &Formatter{
		symbol:  constants.DefaultCurrencySymbol,
		tag:     tag,
		printer: message.NewPrinter(tag),
	}
}

// Symbol returns the currency symbol.
func (f *Formatter) Symbol() string {
	return f.symbol
}

// Locale returns the locale tag used for grouping.
func (f *Formatter) Locale() string {
	return f.tag.String()
}

// Currency returns an amount with two decimals, e.g. "-£1,234.56".
func (f *Formatter) Currency(amount float64) string {
	return f.format(amount, 2)
}

// WholeCurrency returns an amount rounded to whole units, e.g. "£2,262".
func (f *Formatter) WholeCurrency(amount float64) string {
	return f.format(amount, 0)
}

func (f *Formatter) grouped(amount float64, decimals int) string {
	if decimals == 0 {
		return f.printer.Sprintf("%.0f", amount)
	}
	return f.printer.Sprintf("%.2f", amount)
}

func (f *Formatter) format(amount float64, decimals int) string {
	rounded, negative := normalize(amount, decimals)
	formatted := f.grouped(rounded, decimals)
	if negative {
		return "-" + f.symbol + formatted
	}
	return f.symbol + formatted
}

// normalize returns the rounded magnitude of amount and whether it should be
// shown as negative. Amounts that round to zero never carry a sign.
func normalize(amount float64, decimals int) (float64, bool) {
	factor := math.Pow(10, float64(decimals))
	rounded := math.Round(math.Abs(amount)*factor) / factor
	return rounded, amount < 0 && rounded != 0
}
