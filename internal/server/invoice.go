package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/invoicedesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	obslogger "github.com/smallbiznis/invoicedesk/internal/observability/logger"
	"github.com/smallbiznis/invoicedesk/internal/providers/pdf"
	"go.uber.org/zap"
)

type invoiceItemPayload struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	Rate        decimal.Decimal `json:"rate"`
	Tax         decimal.Decimal `json:"tax"`
}

type invoiceItemResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Qty         string `json:"qty"`
	Rate        string `json:"rate"`
	Tax         string `json:"tax"`
	LineTotal   string `json:"line_total"`
}

type invoiceResponse struct {
	ID                  string                `json:"id"`
	CustomerID          string                `json:"customer_id"`
	InvoiceNumber       string                `json:"invoice_number"`
	IssueDate           time.Time             `json:"issue_date"`
	DueDate             time.Time             `json:"due_date"`
	Items               []invoiceItemResponse `json:"items"`
	TotalAmount         string                `json:"total_amount"`
	Status              string                `json:"status"`
	PaymentReceivedDate *time.Time            `json:"payment_received_date,omitempty"`
	PDFURL              string                `json:"pdf_url,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
}

func newInvoiceResponse(inv invoicedomain.Invoice) invoiceResponse {
	items := make([]invoiceItemResponse, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, invoiceItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Qty:         item.Qty.String(),
			Rate:        item.Rate.StringFixed(2),
			Tax:         item.Tax.String(),
			LineTotal:   invoicedomain.LineTotal(item).StringFixed(2),
		})
	}
	return invoiceResponse{
		ID:                  inv.ID,
		CustomerID:          inv.CustomerID,
		InvoiceNumber:       inv.InvoiceNumber,
		IssueDate:           inv.IssueDate,
		DueDate:             inv.DueDate,
		Items:               items,
		TotalAmount:         inv.TotalAmount.StringFixed(2),
		Status:              string(inv.Status),
		PaymentReceivedDate: inv.PaymentReceivedDate,
		PDFURL:              inv.PDFURL,
		CreatedAt:           inv.CreatedAt,
	}
}

func newInvoiceResponses(invoices []invoicedomain.Invoice) []invoiceResponse {
	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, newInvoiceResponse(inv))
	}
	return out
}

type saveInvoiceRequest struct {
	ID                  string               `json:"id"`
	CustomerID          string               `json:"customer_id"`
	IssueDate           string               `json:"issue_date"`
	DueDate             string               `json:"due_date"`
	Items               []invoiceItemPayload `json:"items"`
	Status              string               `json:"status"`
	PaymentReceivedDate string               `json:"payment_received_date"`
	PDFURL              string               `json:"pdf_url"`
}

type markPaidRequest struct {
	PaidAt string `json:"paid_at"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		Status: strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newInvoiceResponses(resp)})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	item, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newInvoiceResponse(item)})
}

func (s *Server) SaveInvoice(c *gin.Context) {
	var req saveInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	issueDate, err := parseRequiredDate(req.IssueDate)
	if err != nil {
		AbortWithError(c, newValidationError("issue_date", "invalid_issue_date", "invalid issue_date"))
		return
	}
	dueDate, err := parseRequiredDate(req.DueDate)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}
	paidAt, err := parseOptionalTime(req.PaymentReceivedDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("payment_received_date", "invalid_payment_received_date", "invalid payment_received_date"))
		return
	}

	items := make([]invoicedomain.InvoiceItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, invoicedomain.InvoiceItem{
			ID:          strings.TrimSpace(item.ID),
			Description: strings.TrimSpace(item.Description),
			Qty:         item.Qty,
			Rate:        item.Rate,
			Tax:         item.Tax,
		})
	}

	resp, err := s.invoiceSvc.Save(c.Request.Context(), invoicedomain.SaveInvoiceRequest{
		ID:                  strings.TrimSpace(req.ID),
		CustomerID:          strings.TrimSpace(req.CustomerID),
		IssueDate:           issueDate,
		DueDate:             dueDate,
		Items:               items,
		Status:              strings.TrimSpace(req.Status),
		PaymentReceivedDate: paidAt,
		PDFURL:              strings.TrimSpace(req.PDFURL),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newInvoiceResponse(resp)})
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	var req markPaidRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	paidAt, err := parseOptionalTime(req.PaidAt, false)
	if err != nil {
		AbortWithError(c, newValidationError("paid_at", "invalid_paid_at", "invalid paid_at"))
		return
	}
	var at time.Time
	if paidAt != nil {
		at = *paidAt
	}

	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.invoiceSvc.MarkPaid(c.Request.Context(), id, at)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newInvoiceResponse(resp)})
}

func (s *Server) RenderInvoicePDF(c *gin.Context) {
	ctx := c.Request.Context()
	id := strings.TrimSpace(c.Param("id"))

	inv, err := s.invoiceSvc.GetByID(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var cust customerdomain.Customer
	if inv.CustomerID != "" {
		cust, err = s.customerSvc.GetByID(ctx, inv.CustomerID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
	}

	settings := s.settingsSvc.Get(ctx)
	body, err := s.pdf.RenderInvoice(ctx, pdf.Document{
		BusinessName: settings.BusinessName,
		Invoice:      inv,
		Customer:     cust,
		DateLayout:   s.cfg.Reminder.DateLayout,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if inv.PDFURL == "" {
		url := fmt.Sprintf("/api/invoices/%s/pdf", inv.ID)
		if _, err := s.invoiceSvc.AttachDocument(ctx, inv.ID, url); err != nil {
			obslogger.WithInvoice(obslogger.WithContext(ctx, s.log), inv.ID, inv.InvoiceNumber).
				Warn("failed to attach invoice document", zap.Error(err))
		}
	}

	filename := slug.Make(inv.InvoiceNumber) + ".pdf"
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", body)
}
