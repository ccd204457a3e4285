// Package leads handles loan application submissions. Submissions are
// acknowledged and logged; nothing is stored.
package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"go.uber.org/zap"
)

// Acknowledgement text shown once an application is accepted.
const (
	ReceiptTitle   = "Application Submitted"
	ReceiptMessage = "We'll be in touch soon!"
)

// Lead is a single application: contact details plus the loan parameters
// that were on screen when it was sent.
type Lead struct {
	ID            string           `json:"id"`
	FullName      string           `json:"fullName"`
	Email         string           `json:"email"`
	Parameters    loans.Parameters `json:"parameters"`
	PaymentMethod string           `json:"paymentMethod"`
	SubmittedAt   time.Time        `json:"submittedAt"`
}

// Receipt acknowledges a submitted lead.
type Receipt struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Sink accepts leads.
type Sink interface {
	Submit(ctx context.Context, lead Lead) (Receipt, error)
}

// NewReceipt builds the acknowledgement for lead.
func NewReceipt(lead Lead) Receipt {
	return Receipt{
		ID:          lead.ID,
		Title:       ReceiptTitle,
		Message:     ReceiptMessage,
		SubmittedAt: lead.SubmittedAt,
	}
}

// LogSink is a Sink that writes each lead to the log. Field contents are not
// validated.
type LogSink struct {
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewLogSink returns a LogSink writing to logger. A nil logger discards output.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Submit logs lead and returns its receipt. Missing IDs and timestamps are
// filled in.
func (s *LogSink) Submit(ctx context.Context, lead Lead) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, fmt.Errorf("lead submission cancelled: %w", err)
	}

	if lead.ID == "" {
		lead.ID = s.newID()
	}
	if lead.SubmittedAt.IsZero() {
		lead.SubmittedAt = s.now().UTC()
	}

	s.logger.Info("loan application submitted",
		zap.String("op", "leads.Submit"),
		zap.String("id", lead.ID),
		zap.String("fullName", lead.FullName),
		zap.String("email", lead.Email),
		zap.Float64("amount", lead.Parameters.Principal),
		zap.Int("termYears", lead.Parameters.TermYears),
		zap.Float64("interestRate", lead.Parameters.AnnualRatePercent),
		zap.String("frequency", string(lead.Parameters.Frequency)),
		zap.String("paymentMethod", lead.PaymentMethod),
		zap.Time("submittedAt", lead.SubmittedAt),
	)

	return NewReceipt(lead), nil
}
