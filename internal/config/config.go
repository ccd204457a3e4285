// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/internal/leads"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variable overrides, e.g.
// LOANCALC_LOAN_AMOUNT.
const EnvPrefix = "LOANCALC"

// Configuration holds all configuration for the loan calculator.
type Configuration struct {
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
	Loan       LoanConfig       `yaml:"loan,omitempty"`
	Calculator CalculatorConfig `yaml:"calculator,omitempty"`
	Bounds     BoundsConfig     `yaml:"bounds,omitempty"`
	Currency   CurrencyConfig   `yaml:"currency,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format       string `yaml:"format,omitempty"` // pretty, json
	FullSchedule bool   `yaml:"fullSchedule,omitempty"`
}

// LoanConfig holds the values the calculator starts with.
type LoanConfig struct {
	Amount              float64 `yaml:"amount,omitempty"`
	TermYears           int     `yaml:"termYears,omitempty"`
	InterestRate        float64 `yaml:"interestRate,omitempty"` // annual, percent
	Frequency           string  `yaml:"frequency,omitempty"`    // monthly, biweekly
	PaymentMethod       string  `yaml:"paymentMethod,omitempty"`
	ComparisonTermYears int     `yaml:"comparisonTermYears,omitempty"`
	StartDate           string  `yaml:"startDate,omitempty"` // YYYY-MM-DD, enables due dates
}

// CalculatorConfig tunes the quote contents.
type CalculatorConfig struct {
	BreakdownRows       int `yaml:"breakdownRows,omitempty"`
	SuggestionThreshold int `yaml:"suggestionThreshold,omitempty"`
}

// RangeConfig is the range of one control.
type RangeConfig struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// BoundsConfig holds the control ranges.
type BoundsConfig struct {
	Amount       RangeConfig `yaml:"amount"`
	TermYears    RangeConfig `yaml:"termYears"`
	InterestRate RangeConfig `yaml:"interestRate"`
}

// CurrencyConfig selects the currency symbol and the locale used to group digits.
type CurrencyConfig struct {
	Symbol string `yaml:"symbol,omitempty"`
	Locale string `yaml:"locale,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Configuration {
	v := viper.New()
	setDefaults(v)
	configuration, err := decode(v)
	if err != nil {
		// The defaults are static and always decode.
		panic(err)
	}
	return configuration
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	return decode(v)
}

// LoadEnvironment builds a configuration from defaults and environment
// overrides only.
func LoadEnvironment() (*Configuration, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.outputFile", "")

	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.fullSchedule", false)

	v.SetDefault("loan.amount", constants.DefaultAmount)
	v.SetDefault("loan.termYears", constants.DefaultTermYears)
	v.SetDefault("loan.interestRate", constants.DefaultInterestRate)
	v.SetDefault("loan.frequency", constants.DefaultFrequency)
	v.SetDefault("loan.paymentMethod", constants.DefaultPaymentMethod)
	v.SetDefault("loan.comparisonTermYears", 0)
	v.SetDefault("loan.startDate", "")

	v.SetDefault("calculator.breakdownRows", constants.DefaultBreakdownRows)
	v.SetDefault("calculator.suggestionThreshold", constants.DefaultSuggestionThreshold)

	v.SetDefault("bounds.amount.min", constants.MinAmount)
	v.SetDefault("bounds.amount.max", constants.MaxAmount)
	v.SetDefault("bounds.amount.step", constants.AmountStep)
	v.SetDefault("bounds.termYears.min", constants.MinTermYears)
	v.SetDefault("bounds.termYears.max", constants.MaxTermYears)
	v.SetDefault("bounds.termYears.step", constants.TermYearsStep)
	v.SetDefault("bounds.interestRate.min", constants.MinInterestRate)
	v.SetDefault("bounds.interestRate.max", constants.MaxInterestRate)
	v.SetDefault("bounds.interestRate.step", constants.InterestRateStep)

	v.SetDefault("currency.symbol", constants.DefaultCurrencySymbol)
	v.SetDefault("currency.locale", constants.DefaultLocale)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &configuration, nil
}

// Range converts the config form into a validation range.
func (r RangeConfig) Range() validation.Range {
	return validation.Range{Min: r.Min, Max: r.Max, Step: r.Step}
}

// Bounds returns the control ranges.
func (c *Configuration) Bounds() calculator.Bounds {
	return calculator.Bounds{
		Amount:       c.Bounds.Amount.Range(),
		TermYears:    c.Bounds.TermYears.Range(),
		InterestRate: c.Bounds.InterestRate.Range(),
	}
}

// StartDate returns the parsed loan start date, or the zero time when unset.
func (c *Configuration) StartDate() (time.Time, error) {
	return datetime.ParseStartDate(c.Loan.StartDate)
}

// Formatter returns the currency formatter for the configured symbol and locale.
func (c *Configuration) Formatter() (*format.Formatter, error) {
	return format.NewFormatter(c.Currency.Symbol, c.Currency.Locale)
}

// CalculatorOptions converts the configuration into calculator options.
// Leads are handed to sink.
func (c *Configuration) CalculatorOptions(sink leads.Sink) (calculator.Options, error) {
	frequency, err := loans.ParseFrequency(c.Loan.Frequency)
	if err != nil {
		return calculator.Options{}, err
	}

	startDate, err := c.StartDate()
	if err != nil {
		return calculator.Options{}, err
	}

	return calculator.Options{
		Amount:              c.Loan.Amount,
		TermYears:           c.Loan.TermYears,
		InterestRate:        c.Loan.InterestRate,
		Frequency:           frequency,
		PaymentMethod:       c.Loan.PaymentMethod,
		ComparisonTermYears: c.Loan.ComparisonTermYears,
		StartDate:           startDate,
		Bounds:              c.Bounds(),
		BreakdownRows:       c.Calculator.BreakdownRows,
		SuggestionThreshold: c.Calculator.SuggestionThreshold,
		Sink:                sink,
	}, nil
}

// Validate reports settings that cannot be used.
func (c *Configuration) Validate() error {
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if _, err := loans.ParseFrequency(c.Loan.Frequency); err != nil {
		return err
	}
	if err := validation.ValidatePaymentMethod(strings.ToLower(c.Loan.PaymentMethod)); err != nil {
		return err
	}
	if _, err := c.StartDate(); err != nil {
		return err
	}
	if _, err := c.Formatter(); err != nil {
		return err
	}
	return c.Bounds().Validate()
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	bounds := c.Bounds()
	validator := validation.ConfigValidator{
		Amount:              c.Loan.Amount,
		TermYears:           c.Loan.TermYears,
		InterestRate:        c.Loan.InterestRate,
		SuggestionThreshold: c.Calculator.SuggestionThreshold,
		BreakdownRows:       c.Calculator.BreakdownRows,
		AmountRange:         bounds.Amount,
		TermRange:           bounds.TermYears,
		RateRange:           bounds.InterestRate,
	}

	warnings, err := validator.ValidateAll()
	if err != nil {
		return []string{err.Error()}
	}

	if c.Loan.ComparisonTermYears != 0 && !bounds.TermYears.Contains(float64(c.Loan.ComparisonTermYears)) {
		warnings = append(warnings, fmt.Sprintf("Comparison term %d is outside [%g, %g] and will be clamped",
			c.Loan.ComparisonTermYears, bounds.TermYears.Min, bounds.TermYears.Max))
	}

	return warnings
}
