package domain

import (
	"context"
	"errors"
	"time"
)

type ListInvoiceRequest struct {
	// Status is "all", empty, or an InvoiceStatus matched after derivation.
	Status string
}

type SaveInvoiceRequest struct {
	ID                  string
	CustomerID          string
	IssueDate           time.Time
	DueDate             time.Time
	Items               []InvoiceItem
	Status              string
	PaymentReceivedDate *time.Time
	PDFURL              string
}

type Service interface {
	List(context.Context, ListInvoiceRequest) ([]Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	Save(context.Context, SaveInvoiceRequest) (Invoice, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (Invoice, error)
	AttachDocument(ctx context.Context, id, url string) (Invoice, error)
}

var (
	ErrNotFound         = errors.New("invoice_not_found")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidCustomer  = errors.New("invalid_customer")
	ErrInvalidIssueDate = errors.New("invalid_issue_date")
	ErrInvalidDueDate   = errors.New("invalid_due_date")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidRate      = errors.New("invalid_rate")
	ErrInvalidTax       = errors.New("invalid_tax")
	ErrAlreadyPaid      = errors.New("invoice_already_paid")
	ErrNumberConflict   = errors.New("invoice_number_conflict")
)

// ErrInvalidTransition rejects a status change other than the derived
// Pending to Overdue move or settling as Paid.
var ErrInvalidTransition = errors.New("invalid_status_transition")
