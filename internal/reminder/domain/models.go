package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Source records which path produced a reminder message.
type Source string

const (
	SourceTemplate Source = "template"
	SourceAI       Source = "ai"
	// SourceManual marks a message the caller wrote; it never came from a draft.
	SourceManual Source = "manual"
)

// Request holds the fields a reminder message is built from.
type Request struct {
	CustomerName  string
	InvoiceNumber string
	Amount        decimal.Decimal
	DueDate       time.Time
	BusinessName  string
}

type Reminder struct {
	Message string `json:"message"`
	Source  Source `json:"source"`
}

// SendRequest dispatches a reminder. An empty Message is drafted first.
type SendRequest struct {
	InvoiceID string
	Message   string
}

type Dispatch struct {
	InvoiceID  string    `json:"invoice_id"`
	CustomerID string    `json:"customer_id"`
	Phone      string    `json:"phone"`
	Provider   string    `json:"provider"`
	Message    string    `json:"message"`
	Source     Source    `json:"source"`
	SentAt     time.Time `json:"sent_at"`
}

type Service interface {
	Generate(ctx context.Context, invoiceID string) (Reminder, error)
	Send(ctx context.Context, req SendRequest) (Dispatch, error)
}

var (
	ErrMissingPhone = errors.New("customer_missing_phone")
	ErrRateLimited  = errors.New("reminder_rate_limited")
)
