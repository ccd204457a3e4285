package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/internal/logging"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/output"
	"go.uber.org/zap"
)

type cliFlags struct {
	configLocation string
	outputFormat   string
	logLevel       string
	amount         float64
	termYears      int
	interestRate   float64
	frequency      string
	paymentMethod  string
	compare        int
	startDate      string
	fullSchedule   bool
	set            map[string]bool
}

func parseFlags(args []string) (*cliFlags, error) {
	flags := &cliFlags{set: make(map[string]bool)}

	flagSet := flag.NewFlagSet("loan-calculator", flag.ContinueOnError)
	flagSet.StringVar(&flags.configLocation, "config", constants.DefaultConfigFile, "path to configuration file")
	flagSet.StringVar(&flags.outputFormat, "output-format", "", "type of output override: pretty, json")
	flagSet.StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flagSet.Float64Var(&flags.amount, "amount", 0, "loan amount override")
	flagSet.IntVar(&flags.termYears, "term", 0, "loan term override in years")
	flagSet.Float64Var(&flags.interestRate, "rate", 0, "annual interest rate override in percent")
	flagSet.StringVar(&flags.frequency, "frequency", "", "repayment frequency override: monthly, biweekly")
	flagSet.StringVar(&flags.paymentMethod, "payment-method", "", "payment method override: bank, cash")
	flagSet.IntVar(&flags.compare, "compare", 0, "compare against another term in years")
	flagSet.StringVar(&flags.startDate, "start-date", "", "loan start date (YYYY-MM-DD) to show due dates")
	flagSet.BoolVar(&flags.fullSchedule, "full-schedule", false, "show every payment instead of the first year")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	flagSet.Visit(func(f *flag.Flag) {
		flags.set[f.Name] = true
	})
	return flags, nil
}

// loadConfiguration reads the config file. A missing file at the default
// location falls back to defaults and environment overrides.
func loadConfiguration(flags *cliFlags) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(flags.configLocation)
	if err == nil {
		return conf, nil
	}
	if !flags.set["config"] {
		if _, statErr := os.Stat(flags.configLocation); errors.Is(statErr, fs.ErrNotExist) {
			return config.LoadEnvironment()
		}
	}
	return nil, err
}

func applyOverrides(conf *config.Configuration, flags *cliFlags) {
	if flags.set["amount"] {
		conf.Loan.Amount = flags.amount
	}
	if flags.set["term"] {
		conf.Loan.TermYears = flags.termYears
	}
	if flags.set["rate"] {
		conf.Loan.InterestRate = flags.interestRate
	}
	if flags.set["frequency"] {
		conf.Loan.Frequency = flags.frequency
	}
	if flags.set["payment-method"] {
		conf.Loan.PaymentMethod = flags.paymentMethod
	}
	if flags.set["compare"] {
		conf.Loan.ComparisonTermYears = flags.compare
	}
	if flags.set["start-date"] {
		conf.Loan.StartDate = flags.startDate
	}
	if flags.set["output-format"] {
		conf.Output.Format = flags.outputFormat
	}
	if flags.fullSchedule {
		conf.Output.FullSchedule = true
	}
	if conf.Output.Format == "" {
		conf.Output.Format = constants.OutputFormatPretty
	}
	if conf.Output.FullSchedule {
		conf.Calculator.BreakdownRows = 0
	}
}

// run produces one quote and writes it to stdout.
func run(logger *zap.Logger, conf *config.Configuration, stdout io.Writer) error {
	if err := conf.Validate(); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	opts, err := conf.CalculatorOptions(nil)
	if err != nil {
		return err
	}

	calc, err := calculator.New(logger, opts)
	if err != nil {
		return err
	}

	quote, err := calc.Quote()
	if err != nil {
		return fmt.Errorf("failed to compute quote: %w", err)
	}

	formatter, err := conf.Formatter()
	if err != nil {
		return err
	}

	return output.Write(stdout, conf.Output.Format, output.NewQuoteView(quote, formatter), formatter)
}

func main() {
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	conf, err := loadConfiguration(flags)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", flags.configLocation, err)
		os.Exit(1)
	}
	applyOverrides(conf, flags)

	logger, err := logging.NewLogger(conf.Logging, flags.logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(logger, conf, os.Stdout); err != nil {
		logger.Fatal("failed to produce quote",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
