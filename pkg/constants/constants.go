// Package constants provides shared constants for the loan-calculator application.
package constants

// Repayment schedule constants
const (
	// MonthlyPaymentsPerYear is the number of payments per year on a monthly schedule
	MonthlyPaymentsPerYear = 12

	// BiweeklyPaymentsPerYear is the number of payments per year on a bi-weekly schedule
	BiweeklyPaymentsPerYear = 26

	// BiweeklyPeriodDays is the length of a bi-weekly period in days
	BiweeklyPeriodDays = 14

	// DefaultBreakdownRows is the number of breakdown rows shown in the loan summary
	DefaultBreakdownRows = 12

	// DefaultSuggestionThreshold is the term (in years) a loan must exceed before a
	// shorter term is suggested
	DefaultSuggestionThreshold = 3
)

// Financial constants
const (
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 penny)
	CurrencyTolerance = 0.01
)

// Calculator defaults, matching the initial state of the calculator controls.
const (
	DefaultAmount        = 2000.0
	DefaultTermYears     = 5
	DefaultInterestRate  = 4.95
	DefaultFrequency     = "monthly"
	DefaultPaymentMethod = PaymentMethodBank
)

// Repayment methods offered alongside a quote.
const (
	PaymentMethodBank = "bank"
	PaymentMethodCash = "cash"
)

// Control bounds. The amount and term controls move in whole steps, the rate
// control in 0.05 percentage point steps.
const (
	MinAmount  = 1000.0
	MaxAmount  = 20000.0
	AmountStep = 100.0

	MinTermYears  = 1
	MaxTermYears  = 15
	TermYearsStep = 1

	MinInterestRate  = 0.5
	MaxInterestRate  = 20.0
	InterestRateStep = 0.05
)

// Currency defaults
const (
	// DefaultCurrencySymbol is the fixed currency symbol used for all amounts
	DefaultCurrencySymbol = "£"

	// DefaultLocale is the BCP 47 tag used for thousands grouping
	DefaultLocale = "en-GB"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Date layout for optional schedule start dates.
const DateLayout = "2006-01-02"

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultShutdownTimeout is the default graceful shutdown timeout
	DefaultShutdownTimeout = "10s"

	// DefaultRequestTimeout is the default per-request timeout
	DefaultRequestTimeout = "15s"
)
