package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/clock"
	customerdomain "github.com/smallbiznis/invoicedesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/observability/logger"
	"github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	"github.com/smallbiznis/invoicedesk/internal/providers/whatsapp"
	"github.com/smallbiznis/invoicedesk/internal/ratelimit"
	"github.com/smallbiznis/invoicedesk/internal/reminder/domain"
	"github.com/smallbiznis/invoicedesk/internal/reminder/generator"
	settingsdomain "github.com/smallbiznis/invoicedesk/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Clock     clock.Clock
	Invoices  invoicedomain.Service
	Customers customerdomain.Service
	Settings  settingsdomain.Service
	Generator generator.Generator
	WhatsApp  *whatsapp.Registry
	Limiter   *ratelimit.ReminderLimiter `optional:"true"`
	Metrics   *metrics.Metrics           `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	clock     clock.Clock
	invoices  invoicedomain.Service
	customers customerdomain.Service
	settings  settingsdomain.Service
	generator generator.Generator
	whatsapp  *whatsapp.Registry
	limiter   *ratelimit.ReminderLimiter
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:       p.Log.Named("reminder.service"),
		clock:     p.Clock,
		invoices:  p.Invoices,
		customers: p.Customers,
		settings:  p.Settings,
		generator: p.Generator,
		whatsapp:  p.WhatsApp,
		limiter:   p.Limiter,
		metrics:   p.Metrics,
	}
}

type reminderTarget struct {
	invoice  invoicedomain.Invoice
	customer customerdomain.Customer
	settings settingsdomain.Settings
}

func (s *Service) Generate(ctx context.Context, invoiceID string) (domain.Reminder, error) {
	target, err := s.load(ctx, invoiceID)
	if err != nil {
		return domain.Reminder{}, err
	}
	return s.draft(ctx, target), nil
}

// Send dispatches through the provider selected in settings. The per-invoice
// rate limit is checked before any drafting happens.
func (s *Service) Send(ctx context.Context, req domain.SendRequest) (domain.Dispatch, error) {
	target, err := s.load(ctx, req.InvoiceID)
	if err != nil {
		return domain.Dispatch{}, err
	}
	phone := strings.TrimSpace(target.customer.Phone)
	if phone == "" {
		return domain.Dispatch{}, domain.ErrMissingPhone
	}

	if decision := s.limiter.AllowSend(ctx, target.invoice.ID); !decision.Allowed {
		return domain.Dispatch{}, fmt.Errorf("%w: retry after %s", domain.ErrRateLimited, decision.RetryAfter.Round(time.Second))
	}

	provider, err := s.whatsapp.Resolve(target.settings.WhatsAppProvider)
	if err != nil {
		return domain.Dispatch{}, err
	}

	reminder := domain.Reminder{Message: strings.TrimSpace(req.Message), Source: domain.SourceManual}
	if reminder.Message == "" {
		reminder = s.draft(ctx, target)
	}

	err = provider.Send(ctx, whatsapp.Message{
		To:     phone,
		Body:   reminder.Message,
		APIKey: target.settings.WhatsAppAPIKey,
	})
	s.metrics.RecordDispatch(ctx, provider.Name(), err)
	if err != nil {
		return domain.Dispatch{}, fmt.Errorf("send reminder via %s: %w", provider.Name(), err)
	}

	dispatch := domain.Dispatch{
		InvoiceID:  target.invoice.ID,
		CustomerID: target.customer.ID,
		Phone:      phone,
		Provider:   provider.Name(),
		Message:    reminder.Message,
		Source:     reminder.Source,
		SentAt:     s.clock.Now().UTC(),
	}
	logger.WithInvoice(logger.WithContext(ctx, s.log), target.invoice.ID, target.invoice.InvoiceNumber).
		Info("reminder dispatched",
			zap.String("provider", dispatch.Provider),
			zap.String("source", string(dispatch.Source)),
		)
	return dispatch, nil
}

// load resolves the invoice (status derived), its customer and the current
// settings. Paid invoices never get reminders.
func (s *Service) load(ctx context.Context, invoiceID string) (reminderTarget, error) {
	inv, err := s.invoices.GetByID(ctx, strings.TrimSpace(invoiceID))
	if err != nil {
		return reminderTarget{}, err
	}
	if inv.Status == invoicedomain.StatusPaid {
		return reminderTarget{}, invoicedomain.ErrAlreadyPaid
	}
	customer, err := s.customers.GetByID(ctx, inv.CustomerID)
	if err != nil {
		return reminderTarget{}, err
	}
	return reminderTarget{
		invoice:  inv,
		customer: customer,
		settings: s.settings.Get(ctx),
	}, nil
}

func (s *Service) draft(ctx context.Context, target reminderTarget) domain.Reminder {
	reminder := s.generator.Generate(ctx, domain.Request{
		CustomerName:  target.customer.Name,
		InvoiceNumber: target.invoice.InvoiceNumber,
		Amount:        target.invoice.TotalAmount,
		DueDate:       target.invoice.DueDate,
		BusinessName:  target.settings.BusinessName,
	})
	s.metrics.RecordReminder(ctx, string(reminder.Source))
	return reminder
}
