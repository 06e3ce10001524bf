package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	customerdomain "github.com/smallbiznis/invoicedesk/internal/customer/domain"
	customerrepo "github.com/smallbiznis/invoicedesk/internal/customer/repository"
	customerservice "github.com/smallbiznis/invoicedesk/internal/customer/service"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/invoicedesk/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/invoicedesk/internal/invoice/service"
	"github.com/smallbiznis/invoicedesk/internal/providers/whatsapp"
	"github.com/smallbiznis/invoicedesk/internal/ratelimit"
	"github.com/smallbiznis/invoicedesk/internal/reminder/domain"
	"github.com/smallbiznis/invoicedesk/internal/reminder/generator"
	settingsdomain "github.com/smallbiznis/invoicedesk/internal/settings/domain"
	settingsservice "github.com/smallbiznis/invoicedesk/internal/settings/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.Request) domain.Reminder {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Reminder)
}

type fixture struct {
	svc       domain.Service
	invoices  invoicedomain.Service
	customers customerdomain.Service
	settings  settingsdomain.Service
	clock     *clock.FakeClock
}

func newFixture(t *testing.T, gen generator.Generator, limiter *ratelimit.ReminderLimiter) fixture {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(testNow)
	log := zap.NewNop()

	customers := customerservice.New(customerservice.Params{Log: log, GenID: node, Clock: clk, Repo: customerrepo.NewMemory(0)})
	invoices := invoiceservice.NewService(invoiceservice.ServiceParam{
		Cfg:   config.Config{InvoiceNumberTemplate: config.DefaultInvoiceNumber},
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  invoicerepo.NewMemory(0),
	})
	settings := settingsservice.New(settingsservice.Params{
		Log:  log,
		File: config.NewStaticSettingsFileHolder(config.DefaultSettingsFile()),
	})
	if gen == nil {
		gen = generator.NewTemplateGenerator(generator.NewFormatter(""))
	}

	svc := New(Params{
		Log:       log,
		Clock:     clk,
		Invoices:  invoices,
		Customers: customers,
		Settings:  settings,
		Generator: gen,
		WhatsApp:  whatsapp.NewRegistry(whatsapp.Params{Log: log}),
		Limiter:   limiter,
	})
	return fixture{svc: svc, invoices: invoices, customers: customers, settings: settings, clock: clk}
}

func (f fixture) seedInvoice(t *testing.T, phone string, due time.Time) invoicedomain.Invoice {
	t.Helper()
	ctx := context.Background()
	customer, err := f.customers.Save(ctx, customerdomain.SaveCustomerRequest{Name: "Innovate Corp", Phone: phone})
	require.NoError(t, err)
	inv, err := f.invoices.Save(ctx, invoicedomain.SaveInvoiceRequest{
		CustomerID: customer.ID,
		IssueDate:  testNow.AddDate(0, 0, -10),
		DueDate:    due,
		Items: []invoicedomain.InvoiceItem{{
			Description: "Consulting",
			Qty:         decimal.NewFromInt(1),
			Rate:        decimal.NewFromInt(1500),
			Tax:         decimal.Zero,
		}},
	})
	require.NoError(t, err)
	return inv
}

func TestGenerateUsesTemplateForPendingInvoice(t *testing.T) {
	f := newFixture(t, nil, nil)
	inv := f.seedInvoice(t, "+919876543210", time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC))

	got, err := f.svc.Generate(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello Innovate Corp, your invoice #INV-001 of ₹1500.00 is due on 15/05/2024. Kindly clear the payment. - My Awesome Inc.", got.Message)
	assert.Equal(t, domain.SourceTemplate, got.Source)
}

func TestGeneratePassesDerivedFieldsToGenerator(t *testing.T) {
	gen := &mockGenerator{}
	f := newFixture(t, gen, nil)
	due := testNow.AddDate(0, 0, -3)
	inv := f.seedInvoice(t, "+91", due)

	gen.On("Generate", mock.Anything, mock.MatchedBy(func(req domain.Request) bool {
		return req.CustomerName == "Innovate Corp" &&
			req.InvoiceNumber == "INV-001" &&
			req.Amount.Equal(decimal.NewFromInt(1500)) &&
			req.DueDate.Equal(due) &&
			req.BusinessName == "My Awesome Inc."
	})).Return(domain.Reminder{Message: "drafted", Source: domain.SourceAI}).Once()

	got, err := f.svc.Generate(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Reminder{Message: "drafted", Source: domain.SourceAI}, got)
	gen.AssertExpectations(t)
}

func TestGenerateRejectsPaidAndUnknownInvoices(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, "inv_missing")
	assert.ErrorIs(t, err, invoicedomain.ErrNotFound)

	inv := f.seedInvoice(t, "+91", testNow.AddDate(0, 0, 5))
	_, err = f.invoices.MarkPaid(ctx, inv.ID, testNow)
	require.NoError(t, err)

	_, err = f.svc.Generate(ctx, inv.ID)
	assert.ErrorIs(t, err, invoicedomain.ErrAlreadyPaid)
}

func TestGenerateMissingCustomer(t *testing.T) {
	f := newFixture(t, nil, nil)
	inv, err := f.invoices.Save(context.Background(), invoicedomain.SaveInvoiceRequest{
		CustomerID: "cust_gone",
		IssueDate:  testNow,
		DueDate:    testNow.AddDate(0, 0, 7),
	})
	require.NoError(t, err)

	_, err = f.svc.Generate(context.Background(), inv.ID)
	assert.ErrorIs(t, err, customerdomain.ErrNotFound)
}

func TestSendDraftsWhenMessageEmpty(t *testing.T) {
	f := newFixture(t, nil, nil)
	inv := f.seedInvoice(t, " +919876543210 ", testNow.AddDate(0, 0, 5))

	dispatch, err := f.svc.Send(context.Background(), domain.SendRequest{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, inv.ID, dispatch.InvoiceID)
	assert.Equal(t, inv.CustomerID, dispatch.CustomerID)
	assert.Equal(t, "+919876543210", dispatch.Phone)
	assert.Equal(t, string(settingsdomain.ProviderUltraMsg), dispatch.Provider)
	assert.Equal(t, domain.SourceTemplate, dispatch.Source)
	assert.Contains(t, dispatch.Message, "Hello Innovate Corp")
	assert.Equal(t, testNow, dispatch.SentAt)
}

func TestSendUsesSuppliedMessageAndSelectedProvider(t *testing.T) {
	gen := &mockGenerator{}
	f := newFixture(t, gen, nil)
	inv := f.seedInvoice(t, "+91", testNow.AddDate(0, 0, 5))
	_, err := f.settings.Update(context.Background(), settingsdomain.UpdateRequest{
		BusinessName:     "My Awesome Inc.",
		WhatsAppProvider: "meta",
	})
	require.NoError(t, err)

	dispatch, err := f.svc.Send(context.Background(), domain.SendRequest{InvoiceID: inv.ID, Message: "Please pay"})
	require.NoError(t, err)
	assert.Equal(t, "Please pay", dispatch.Message)
	assert.Equal(t, "meta", dispatch.Provider)
	assert.Equal(t, domain.SourceManual, dispatch.Source)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestSendRequiresPhone(t *testing.T) {
	f := newFixture(t, nil, nil)
	inv := f.seedInvoice(t, "", testNow.AddDate(0, 0, 5))

	_, err := f.svc.Send(context.Background(), domain.SendRequest{InvoiceID: inv.ID})
	assert.ErrorIs(t, err, domain.ErrMissingPhone)
}

func TestSendIsRateLimitedPerInvoice(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter := ratelimit.NewReminderLimiter(config.Config{RateLimit: config.RateLimitConfig{
		ReminderSendRate:  0.001,
		ReminderSendBurst: 1,
	}}, client, zap.NewNop())

	f := newFixture(t, nil, limiter)
	inv := f.seedInvoice(t, "+91", testNow.AddDate(0, 0, 5))
	ctx := context.Background()

	_, err := f.svc.Send(ctx, domain.SendRequest{InvoiceID: inv.ID})
	require.NoError(t, err)

	_, err = f.svc.Send(ctx, domain.SendRequest{InvoiceID: inv.ID})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}
