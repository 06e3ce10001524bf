// Package domain contains the invoice model and the pure rules around it.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	IDPrefix     = "inv_"
	ItemIDPrefix = "item_"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	StatusPending InvoiceStatus = "pending"
	StatusPaid    InvoiceStatus = "paid"
	StatusOverdue InvoiceStatus = "overdue"
)

// Statuses lists every status in display order.
var Statuses = []InvoiceStatus{StatusPaid, StatusPending, StatusOverdue}

func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	default:
		return false
	}
}

// Label returns the capitalised display name.
func (s InvoiceStatus) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ParseInvoiceStatus accepts any casing of a known status.
func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	status := InvoiceStatus(strings.ToLower(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// InvoiceItem is one billed line. Tax is a percentage applied to qty × rate.
type InvoiceItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	Rate        decimal.Decimal `json:"rate"`
	Tax         decimal.Decimal `json:"tax"`
}

// Invoice represents a bill issued to a customer.
type Invoice struct {
	ID                  string                           `gorm:"primaryKey;size:64" json:"id"`
	CustomerID          string                           `gorm:"size:64;not null;index" json:"customer_id"`
	InvoiceNumber       string                           `gorm:"size:64;not null;uniqueIndex" json:"invoice_number"`
	Sequence            int64                            `gorm:"not null;index" json:"-"`
	IssueDate           time.Time                        `gorm:"not null;index" json:"issue_date"`
	DueDate             time.Time                        `gorm:"not null" json:"due_date"`
	Items               datatypes.JSONSlice[InvoiceItem] `gorm:"not null" json:"items"`
	TotalAmount         decimal.Decimal                  `gorm:"type:decimal(38,12);not null" json:"total_amount"`
	Status              InvoiceStatus                    `gorm:"type:text;not null" json:"status"`
	PaymentReceivedDate *time.Time                       `json:"payment_received_date,omitempty"`
	PDFURL              string                           `gorm:"column:pdf_url" json:"pdf_url,omitempty"`
	CreatedAt           time.Time                        `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Clone returns a deep copy so callers cannot mutate stored state.
func (inv Invoice) Clone() Invoice {
	if inv.Items != nil {
		items := make(datatypes.JSONSlice[InvoiceItem], len(inv.Items))
		copy(items, inv.Items)
		inv.Items = items
	}
	if inv.PaymentReceivedDate != nil {
		paid := *inv.PaymentReceivedDate
		inv.PaymentReceivedDate = &paid
	}
	return inv
}
