package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/dashboard/domain"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var chartFills = map[invoicedomain.InvoiceStatus]string{
	invoicedomain.StatusPaid:    "#34D399",
	invoicedomain.StatusPending: "#FBBF24",
	invoicedomain.StatusOverdue: "#F87171",
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Invoices invoicedomain.Service
}

type Service struct {
	log      *zap.Logger
	invoices invoicedomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("dashboard.service"),
		invoices: p.Invoices,
	}
}

func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	invoices, err := s.invoices.List(ctx, invoicedomain.ListInvoiceRequest{})
	if err != nil {
		return domain.Summary{}, err
	}
	return Summarize(invoices), nil
}

// Summarize expects statuses to be derived already.
func Summarize(invoices []invoicedomain.Invoice) domain.Summary {
	counts := make(map[invoicedomain.InvoiceStatus]int, len(invoicedomain.Statuses))
	revenue := decimal.Zero
	outstanding := decimal.Zero

	for _, inv := range invoices {
		counts[inv.Status]++
		if inv.Status == invoicedomain.StatusPaid {
			revenue = revenue.Add(inv.TotalAmount)
		} else {
			outstanding = outstanding.Add(inv.TotalAmount)
		}
	}

	chart := make([]domain.ChartBucket, 0, len(invoicedomain.Statuses))
	for _, status := range invoicedomain.Statuses {
		chart = append(chart, domain.ChartBucket{
			Name:  status.Label(),
			Count: counts[status],
			Fill:  chartFills[status],
		})
	}

	return domain.Summary{
		Total:        len(invoices),
		Paid:         counts[invoicedomain.StatusPaid],
		Pending:      counts[invoicedomain.StatusPending],
		Overdue:      counts[invoicedomain.StatusOverdue],
		TotalRevenue: revenue.StringFixed(2),
		Outstanding:  outstanding.StringFixed(2),
		Chart:        chart,
	}
}
