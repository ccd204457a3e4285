// Package server exposes the loan calculator over HTTP: a JSON API and the
// embedded web page that drives it.
package server

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/internal/leads"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/output"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

// Options configures the handler. Zero values fall back to defaults.
type Options struct {
	MaxBodySize    int64
	RequestTimeout time.Duration
	Version        string
	Calculator     *config.Configuration
	Sink           leads.Sink
}

type handler struct {
	logger         *zap.Logger
	maxBodySize    int64
	version        string
	calculatorConf *config.Configuration
	formatter      *format.Formatter
	sink           leads.Sink
}

// NewHandler constructs the HTTP handler that serves the web UI and quote API.
func NewHandler(logger *zap.Logger, opts Options) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	requestTimeout := opts.RequestTimeout
	if requestTimeout <= 0 {
		parsed, err := time.ParseDuration(constants.DefaultRequestTimeout)
		if err != nil {
			return nil, err
		}
		requestTimeout = parsed
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	calculatorConf := opts.Calculator
	if calculatorConf == nil {
		calculatorConf = config.Default()
	}
	if err := calculatorConf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calculator configuration: %w", err)
	}
	formatter, err := calculatorConf.Formatter()
	if err != nil {
		return nil, err
	}

	sink := opts.Sink
	if sink == nil {
		sink = leads.NewLogSink(logger)
	}

	h := &handler{
		logger:         logger,
		maxBodySize:    maxBodySize,
		version:        version,
		calculatorConf: calculatorConf,
		formatter:      formatter,
		sink:           sink,
	}

	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare embedded static files: %w", err)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": http.StatusText(http.StatusMethodNotAllowed)})
	})

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": http.StatusText(http.StatusNotFound)})
		})

		r.Get("/quote", h.handleQuoteQuery)
		r.Post("/quote", h.handleQuoteBody)
		r.Get("/schedule", h.handleSchedule)
		r.Post("/leads", h.handleLead)
		r.Get("/settings", h.handleSettings)
		r.Get("/version", h.handleVersion)
	})

	r.Handle("/*", http.FileServer(http.FS(sub)))

	return r, nil
}

// requestLogger logs every request once it has been served.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Info("request served",
					zap.String("op", "server.request"),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("requestId", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// quoteRequest carries the control values. Absent fields keep the configured
// defaults.
type quoteRequest struct {
	Amount              *float64 `json:"amount,omitempty"`
	TermYears           *int     `json:"termYears,omitempty"`
	InterestRate        *float64 `json:"interestRate,omitempty"`
	Frequency           string   `json:"frequency,omitempty"`
	PaymentMethod       string   `json:"paymentMethod,omitempty"`
	ComparisonTermYears *int     `json:"comparisonTermYears,omitempty"`
	AcceptSuggestion    bool     `json:"acceptSuggestion,omitempty"`
}

type leadRequest struct {
	quoteRequest
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type leadResponse struct {
	Receipt   leads.Receipt `json:"receipt"`
	Submitted bool          `json:"submitted"`
}

type scheduleResponse struct {
	Frequency     loans.Frequency  `json:"frequency"`
	TotalPayments int              `json:"totalPayments"`
	Rows          []output.RowView `json:"rows"`
}

type settingsResponse struct {
	Bounds              calculator.Bounds `json:"bounds"`
	Defaults            quoteRequest      `json:"defaults"`
	BreakdownRows       int               `json:"breakdownRows"`
	SuggestionThreshold int               `json:"suggestionThreshold"`
	CurrencySymbol      string            `json:"currencySymbol"`
	Locale              string            `json:"locale"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleSettings(w http.ResponseWriter, _ *http.Request) {
	loan := h.calculatorConf.Loan
	amount := loan.Amount
	termYears := loan.TermYears
	interestRate := loan.InterestRate

	h.writeJSON(w, http.StatusOK, settingsResponse{
		Bounds: h.calculatorConf.Bounds(),
		Defaults: quoteRequest{
			Amount:        &amount,
			TermYears:     &termYears,
			InterestRate:  &interestRate,
			Frequency:     loan.Frequency,
			PaymentMethod: loan.PaymentMethod,
		},
		BreakdownRows:       h.calculatorConf.Calculator.BreakdownRows,
		SuggestionThreshold: h.calculatorConf.Calculator.SuggestionThreshold,
		CurrencySymbol:      h.formatter.Symbol(),
		Locale:              h.formatter.Locale(),
	})
}

func (h *handler) handleQuoteQuery(w http.ResponseWriter, r *http.Request) {
	req, err := parseQuoteQuery(r.URL.Query())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleQuoteQuery")
		return
	}
	h.respondQuote(w, req, "server.handleQuoteQuery")
}

func (h *handler) handleQuoteBody(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if status, err := h.decodeBody(w, r, &req); err != nil {
		h.respondErrorWithOp(w, status, err.Error(), "server.handleQuoteBody")
		return
	}
	h.respondQuote(w, req, "server.handleQuoteBody")
}

func (h *handler) respondQuote(w http.ResponseWriter, req quoteRequest, op string) {
	calc, err := h.newCalculator(req)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	quote, err := calc.Quote()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, output.NewQuoteView(quote, h.formatter))
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"

	req, err := parseQuoteQuery(r.URL.Query())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	calc, err := h.newCalculator(req)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	rows, err := calc.Schedule()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	params := calc.Parameters()
	startDate, err := h.calculatorConf.StartDate()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, scheduleResponse{
		Frequency:     params.Frequency,
		TotalPayments: params.TotalPayments(),
		Rows:          output.RowViews(params.Frequency, startDate, rows),
	})
}

func (h *handler) handleLead(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLead"

	var req leadRequest
	if status, err := h.decodeBody(w, r, &req); err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	calc, err := h.newCalculator(req.quoteRequest)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	receipt, err := calc.SubmitLead(r.Context(), req.FullName, req.Email)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to submit application: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusAccepted, leadResponse{Receipt: receipt, Submitted: calc.Submitted()})
}

// newCalculator builds a calculator from the configured defaults and applies
// the request on top.
func (h *handler) newCalculator(req quoteRequest) (*calculator.Calculator, error) {
	opts, err := h.calculatorConf.CalculatorOptions(h.sink)
	if err != nil {
		return nil, err
	}

	calc, err := calculator.New(h.logger, opts)
	if err != nil {
		return nil, err
	}

	if req.Amount != nil {
		calc.SetAmount(*req.Amount)
	}
	if req.TermYears != nil {
		calc.SetTermYears(*req.TermYears)
	}
	if req.InterestRate != nil {
		calc.SetInterestRate(*req.InterestRate)
	}
	if req.Frequency != "" {
		frequency, err := loans.ParseFrequency(req.Frequency)
		if err != nil {
			return nil, err
		}
		if err := calc.SetFrequency(frequency); err != nil {
			return nil, err
		}
	}
	if req.PaymentMethod != "" {
		if err := calc.SetPaymentMethod(req.PaymentMethod); err != nil {
			return nil, err
		}
	}
	if req.ComparisonTermYears != nil {
		if *req.ComparisonTermYears > 0 {
			calc.CompareWith(*req.ComparisonTermYears)
		} else {
			calc.ClearComparison()
		}
	}
	if req.AcceptSuggestion {
		if _, err := calc.AcceptSuggestion(); err != nil {
			return nil, err
		}
	}

	return calc, nil
}

func parseQuoteQuery(values url.Values) (quoteRequest, error) {
	var req quoteRequest

	if raw := values.Get("amount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, fmt.Errorf("invalid amount %q", raw)
		}
		req.Amount = &amount
	}
	if raw := values.Get("termYears"); raw != "" {
		termYears, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("invalid termYears %q", raw)
		}
		req.TermYears = &termYears
	}
	if raw := values.Get("interestRate"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, fmt.Errorf("invalid interestRate %q", raw)
		}
		req.InterestRate = &rate
	}
	if raw := values.Get("compare"); raw != "" {
		term, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("invalid compare %q", raw)
		}
		req.ComparisonTermYears = &term
	}
	if raw := values.Get("acceptSuggestion"); raw != "" {
		accept, err := strconv.ParseBool(raw)
		if err != nil {
			return req, fmt.Errorf("invalid acceptSuggestion %q", raw)
		}
		req.AcceptSuggestion = accept
	}
	req.Frequency = values.Get("frequency")
	req.PaymentMethod = values.Get("paymentMethod")

	return req, nil
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return http.StatusOK, nil
		case errors.As(err, &maxBytesErr):
			return http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds limit of %d bytes", h.maxBodySize)
		default:
			return http.StatusBadRequest, fmt.Errorf("failed to decode request: %v", err)
		}
	}
	return http.StatusOK, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Warn("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
