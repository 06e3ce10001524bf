package pdf

import (
	"context"
	"errors"

	customerdomain "github.com/smallbiznis/invoicedesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
)

var ErrRenderFailed = errors.New("pdf_render_failed")

// Document carries everything printed on an invoice PDF.
type Document struct {
	BusinessName string
	Invoice      invoicedomain.Invoice
	Customer     customerdomain.Customer
	DateLayout   string
}

type Provider interface {
	RenderInvoice(ctx context.Context, doc Document) ([]byte, error)
}
