package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/dashboard/domain"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/invoicedesk/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/invoicedesk/internal/invoice/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func amount(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestSummarize(t *testing.T) {
	summary := Summarize([]invoicedomain.Invoice{
		{Status: invoicedomain.StatusPaid, TotalAmount: amount("1416")},
		{Status: invoicedomain.StatusPaid, TotalAmount: amount("100.5")},
		{Status: invoicedomain.StatusPending, TotalAmount: amount("200")},
		{Status: invoicedomain.StatusOverdue, TotalAmount: amount("50.25")},
	})

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Paid)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, 1, summary.Overdue)
	assert.Equal(t, "1516.50", summary.TotalRevenue)
	assert.Equal(t, "250.25", summary.Outstanding)
	assert.Equal(t, []domain.ChartBucket{
		{Name: "Paid", Count: 2, Fill: "#34D399"},
		{Name: "Pending", Count: 1, Fill: "#FBBF24"},
		{Name: "Overdue", Count: 1, Fill: "#F87171"},
	}, summary.Chart)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	assert.Zero(t, summary.Total)
	assert.Equal(t, "0.00", summary.TotalRevenue)
	assert.Equal(t, "0.00", summary.Outstanding)
	require.Len(t, summary.Chart, 3)
	for _, bucket := range summary.Chart {
		assert.Zero(t, bucket.Count)
	}
}

func TestSummaryDerivesOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	invoices := invoiceservice.NewService(invoiceservice.ServiceParam{
		Cfg:   config.Config{InvoiceNumberTemplate: config.DefaultInvoiceNumber},
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(now),
		Repo:  invoicerepo.NewMemory(0),
	})
	ctx := context.Background()

	items := []invoicedomain.InvoiceItem{{Description: "Work", Qty: amount("1"), Rate: amount("300"), Tax: decimal.Zero}}
	_, err = invoices.Save(ctx, invoicedomain.SaveInvoiceRequest{CustomerID: "cust_1", IssueDate: now.AddDate(0, 0, -20), DueDate: now.AddDate(0, 0, -5), Items: items})
	require.NoError(t, err)
	_, err = invoices.Save(ctx, invoicedomain.SaveInvoiceRequest{CustomerID: "cust_1", IssueDate: now, DueDate: now.AddDate(0, 0, 10), Items: items})
	require.NoError(t, err)

	svc := NewService(Params{Log: zap.NewNop(), Invoices: invoices})
	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Overdue)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, "600.00", summary.Outstanding)
}
