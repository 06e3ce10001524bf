package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/format"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var maxTax = decimal.NewFromInt(100)

type ServiceParam struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  invoicedomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  invoicedomain.Repository

	numberTemplate string
}

func NewService(p ServiceParam) invoicedomain.Service {
	template := strings.TrimSpace(p.Cfg.InvoiceNumberTemplate)
	if template == "" {
		template = format.DefaultInvoiceNumberTemplate
	}
	return &Service{
		log:            p.Log.Named("invoice.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		numberTemplate: template,
	}
}

// List returns invoices with their status derived at the current time,
// newest issue date first.
func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) ([]invoicedomain.Invoice, error) {
	var want invoicedomain.InvoiceStatus
	if filter := strings.TrimSpace(req.Status); filter != "" && !strings.EqualFold(filter, "all") {
		status, err := invoicedomain.ParseInvoiceStatus(filter)
		if err != nil {
			return nil, err
		}
		want = status
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	out := make([]invoicedomain.Invoice, 0, len(rows))
	for _, row := range rows {
		derived := invoicedomain.DeriveStatus(row, now)
		if want != "" && derived.Status != want {
			continue
		}
		out = append(out, derived)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IssueDate.After(out[j].IssueDate)
	})
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	stored, err := s.find(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	return invoicedomain.DeriveStatus(stored, s.clock.Now()), nil
}

// Save upserts by id. Identity, creation time and invoice number survive an
// update; every other field is replaced and the total is recomputed. A
// supplied id that matches no stored invoice is dropped and a new invoice is
// created.
func (s *Service) Save(ctx context.Context, req invoicedomain.SaveInvoiceRequest) (invoicedomain.Invoice, error) {
	if err := validateSave(req); err != nil {
		return invoicedomain.Invoice{}, err
	}

	var status invoicedomain.InvoiceStatus
	if strings.TrimSpace(req.Status) != "" {
		parsed, err := invoicedomain.ParseInvoiceStatus(req.Status)
		if err != nil {
			return invoicedomain.Invoice{}, err
		}
		status = parsed
	}

	items := s.normalizeItems(req.Items)
	incoming := invoicedomain.Invoice{
		CustomerID:          strings.TrimSpace(req.CustomerID),
		IssueDate:           req.IssueDate.UTC(),
		DueDate:             req.DueDate.UTC(),
		Items:               items,
		TotalAmount:         invoicedomain.ComputeTotal(items),
		Status:              status,
		PaymentReceivedDate: utcPtr(req.PaymentReceivedDate),
		PDFURL:              strings.TrimSpace(req.PDFURL),
	}

	id := strings.TrimSpace(req.ID)
	if id != "" {
		existing, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return invoicedomain.Invoice{}, err
		}
		if existing != nil {
			return s.update(ctx, *existing, incoming)
		}
		s.log.Warn("unknown invoice id on save, creating new invoice", zap.String("requested_id", id))
	}

	return s.create(ctx, incoming)
}

func (s *Service) create(ctx context.Context, inv invoicedomain.Invoice) (invoicedomain.Invoice, error) {
	inv.ID = invoicedomain.IDPrefix + s.genID.Generate().String()
	inv.CreatedAt = s.clock.Now()
	switch inv.Status {
	case "":
		inv.Status = invoicedomain.StatusPending
	case invoicedomain.StatusOverdue:
		// Overdue is derived from the due date on read.
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidTransition
	}
	if inv.Status == invoicedomain.StatusPaid && inv.PaymentReceivedDate == nil {
		paidAt := inv.CreatedAt
		inv.PaymentReceivedDate = &paidAt
	}

	issueDate := inv.IssueDate
	err := s.repo.Insert(ctx, &inv, func(seq int64) (string, error) {
		return format.FormatInvoiceNumber(s.numberTemplate, issueDate, seq)
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", inv.ID),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("total_amount", inv.TotalAmount.StringFixed(2)),
	)
	return invoicedomain.DeriveStatus(inv, s.clock.Now()), nil
}

func (s *Service) update(ctx context.Context, existing, inv invoicedomain.Invoice) (invoicedomain.Invoice, error) {
	inv.ID = existing.ID
	inv.CreatedAt = existing.CreatedAt
	inv.InvoiceNumber = existing.InvoiceNumber
	inv.Sequence = existing.Sequence

	current := invoicedomain.DeriveStatus(existing, s.clock.Now()).Status
	switch {
	case inv.Status == "":
		inv.Status = existing.Status
	case inv.Status == invoicedomain.StatusPaid:
	case current == invoicedomain.StatusPaid:
		return invoicedomain.Invoice{}, invoicedomain.ErrAlreadyPaid
	case inv.Status != current:
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidTransition
	default:
		// Echoing the current status back is not a change. Only the stored
		// base status is persisted.
		inv.Status = existing.Status
	}
	if inv.Status == invoicedomain.StatusPaid && inv.PaymentReceivedDate == nil {
		inv.PaymentReceivedDate = existing.PaymentReceivedDate
	}
	if inv.PDFURL == "" {
		inv.PDFURL = existing.PDFURL
	}

	if err := s.repo.Update(ctx, &inv); err != nil {
		return invoicedomain.Invoice{}, err
	}
	return invoicedomain.DeriveStatus(inv, s.clock.Now()), nil
}

// MarkPaid settles an invoice. Settling an already paid invoice is a no-op
// that keeps the original payment date.
func (s *Service) MarkPaid(ctx context.Context, id string, paidAt time.Time) (invoicedomain.Invoice, error) {
	inv, err := s.find(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if inv.Status == invoicedomain.StatusPaid {
		return inv, nil
	}

	if paidAt.IsZero() {
		paidAt = s.clock.Now()
	}
	paidAt = paidAt.UTC()
	inv.Status = invoicedomain.StatusPaid
	inv.PaymentReceivedDate = &paidAt

	if err := s.repo.Update(ctx, &inv); err != nil {
		return invoicedomain.Invoice{}, err
	}

	s.log.Info("invoice marked paid",
		zap.String("invoice_id", inv.ID),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Time("paid_at", paidAt),
	)
	return inv, nil
}

// AttachDocument records where the rendered document lives unless one is
// already recorded.
func (s *Service) AttachDocument(ctx context.Context, id, url string) (invoicedomain.Invoice, error) {
	inv, err := s.find(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	url = strings.TrimSpace(url)
	if inv.PDFURL == "" && url != "" {
		inv.PDFURL = url
		if err := s.repo.Update(ctx, &inv); err != nil {
			return invoicedomain.Invoice{}, err
		}
	}
	return invoicedomain.DeriveStatus(inv, s.clock.Now()), nil
}

func (s *Service) find(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidID
	}
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if inv == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}
	return *inv, nil
}

func (s *Service) normalizeItems(items []invoicedomain.InvoiceItem) datatypes.JSONSlice[invoicedomain.InvoiceItem] {
	out := make(datatypes.JSONSlice[invoicedomain.InvoiceItem], 0, len(items))
	for _, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			item.ID = invoicedomain.ItemIDPrefix + ulid.Make().String()
		}
		item.Description = strings.TrimSpace(item.Description)
		out = append(out, item)
	}
	return out
}

func validateSave(req invoicedomain.SaveInvoiceRequest) error {
	if strings.TrimSpace(req.CustomerID) == "" {
		return invoicedomain.ErrInvalidCustomer
	}
	if req.IssueDate.IsZero() {
		return invoicedomain.ErrInvalidIssueDate
	}
	if req.DueDate.IsZero() {
		return invoicedomain.ErrInvalidDueDate
	}
	for _, item := range req.Items {
		if item.Qty.IsNegative() {
			return invoicedomain.ErrInvalidQuantity
		}
		if item.Rate.IsNegative() {
			return invoicedomain.ErrInvalidRate
		}
		if item.Tax.IsNegative() || item.Tax.GreaterThan(maxTax) {
			return invoicedomain.ErrInvalidTax
		}
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.UTC()
	return &v
}
