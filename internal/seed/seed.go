package seed

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	customerdomain "github.com/smallbiznis/invoicedesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/format"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Cfg       config.Config
	Log       *zap.Logger
	Clock     clock.Clock
	Customers customerdomain.Repository
	Invoices  invoicedomain.Repository
}

// Seeder inserts the demo customers and invoices the dashboard ships with.
type Seeder struct {
	enabled   bool
	template  string
	log       *zap.Logger
	clock     clock.Clock
	customers customerdomain.Repository
	invoices  invoicedomain.Repository
}

func New(p Params) *Seeder {
	template := strings.TrimSpace(p.Cfg.InvoiceNumberTemplate)
	if template == "" {
		template = format.DefaultInvoiceNumberTemplate
	}
	return &Seeder{
		enabled:   p.Cfg.SeedDemoData,
		template:  template,
		log:       p.Log.Named("seed"),
		clock:     p.Clock,
		customers: p.Customers,
		invoices:  p.Invoices,
	}
}

// Run inserts whichever demo records are missing, so a run interrupted
// halfway is completed by the next one. It is a no-op when seeding is
// disabled or every record already exists.
func (s *Seeder) Run(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	now := s.clock.Now().UTC()
	var addedCustomers, addedInvoices int
	for _, customer := range demoCustomers(now) {
		customer := customer
		existing, err := s.customers.FindByID(ctx, customer.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := s.customers.Insert(ctx, &customer); err != nil {
			return err
		}
		addedCustomers++
	}
	for _, inv := range demoInvoices(now) {
		inv := inv
		existing, err := s.invoices.FindByID(ctx, inv.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		issued := inv.IssueDate
		if err := s.invoices.Insert(ctx, &inv, func(seq int64) (string, error) {
			return format.FormatInvoiceNumber(s.template, issued, seq)
		}); err != nil {
			return err
		}
		addedInvoices++
	}

	if addedCustomers == 0 && addedInvoices == 0 {
		s.log.Debug("demo data already present")
		return nil
	}
	s.log.Info("demo data seeded", zap.Int("customers", addedCustomers), zap.Int("invoices", addedInvoices))
	return nil
}

func demoCustomers(now time.Time) []customerdomain.Customer {
	gst := "GSTIN123"
	return []customerdomain.Customer{
		{
			ID:        "cust_1",
			Name:      "Innovate Corp",
			Phone:     "+1234567890",
			Email:     "contact@innovate.com",
			GSTNo:     &gst,
			Address:   "123 Tech Street, Silicon Valley, CA",
			CreatedAt: now,
		},
		{
			ID:        "cust_2",
			Name:      "Quantum Solutions",
			Phone:     "+0987654321",
			Email:     "info@quantum.com",
			Address:   "456 Logic Lane, Boston, MA",
			CreatedAt: now,
		},
	}
}

func demoInvoices(now time.Time) []invoicedomain.Invoice {
	days := func(n int) time.Time { return now.AddDate(0, 0, n) }
	item := func(id, description string, qty, rate, tax int64) invoicedomain.InvoiceItem {
		return invoicedomain.InvoiceItem{
			ID:          id,
			Description: description,
			Qty:         decimal.NewFromInt(qty),
			Rate:        decimal.NewFromInt(rate),
			Tax:         decimal.NewFromInt(tax),
		}
	}
	build := func(id, customerID string, issued, due time.Time, it invoicedomain.InvoiceItem) invoicedomain.Invoice {
		items := datatypes.JSONSlice[invoicedomain.InvoiceItem]{it}
		return invoicedomain.Invoice{
			ID:          id,
			CustomerID:  customerID,
			IssueDate:   issued,
			DueDate:     due,
			Items:       items,
			TotalAmount: invoicedomain.ComputeTotal(items),
			Status:      invoicedomain.StatusPending,
			CreatedAt:   issued,
		}
	}

	paidOn := days(-25)
	paid := build("inv_3", "cust_1", days(-60), days(-30), item("item_3", "Cloud Migration Consulting", 1, 2000, 20))
	paid.Status = invoicedomain.StatusPaid
	paid.PaymentReceivedDate = &paidOn

	return []invoicedomain.Invoice{
		build("inv_1", "cust_1", days(-35), days(-5), item("item_1", "Web Development Services", 10, 120, 18)),
		build("inv_2", "cust_2", days(-20), days(10), item("item_2", "UI/UX Design Mockups", 5, 60, 10)),
		paid,
		build("inv_4", "cust_2", days(-5), days(25), item("item_4", "Backend API Development", 20, 40, 5)),
	}
}
