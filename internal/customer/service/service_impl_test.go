package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/customer/domain"
	"github.com/smallbiznis/invoicedesk/internal/customer/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	return New(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.NewMemory(0),
	}), clk
}

func TestSaveCreatesCustomerWithFreshID(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	gst := " GSTIN123 "
	created, err := svc.Save(ctx, domain.SaveCustomerRequest{
		Name:    "Innovate Corp",
		Phone:   "+1234567890",
		Email:   "contact@innovate.com",
		GSTNo:   &gst,
		Address: "123 Tech Street, Silicon Valley, CA",
	})
	require.NoError(t, err)

	assert.Contains(t, created.ID, domain.IDPrefix)
	assert.Equal(t, clk.Now(), created.CreatedAt)
	require.NotNil(t, created.GSTNo)
	assert.Equal(t, "GSTIN123", *created.GSTNo)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestSaveWithKnownIDKeepsIdentityAndOverwritesFields(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	created, err := svc.Save(ctx, domain.SaveCustomerRequest{Name: "Quantum Solutions", Phone: "+0987654321"})
	require.NoError(t, err)

	clk.Advance(48 * time.Hour)
	updated, err := svc.Save(ctx, domain.SaveCustomerRequest{
		ID:      created.ID,
		Name:    "Quantum Solutions Ltd",
		Phone:   "+111",
		Address: "456 Logic Lane, Boston, MA",
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Quantum Solutions Ltd", updated.Name)
	assert.Equal(t, "+111", updated.Phone)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSaveWithUnknownIDCreatesNewCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Save(ctx, domain.SaveCustomerRequest{ID: "cust_missing", Name: "Ghost"})
	require.NoError(t, err)
	assert.NotEqual(t, "cust_missing", created.ID)

	_, err = svc.GetByID(ctx, "cust_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveRejectsEmptyName(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Save(context.Background(), domain.SaveCustomerRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestListKeepsInsertionOrderAndReturnsCopies(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	gst := "GST-A"
	first, err := svc.Save(ctx, domain.SaveCustomerRequest{Name: "A", GSTNo: &gst})
	require.NoError(t, err)
	_, err = svc.Save(ctx, domain.SaveCustomerRequest{Name: "B"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Name)
	assert.Equal(t, "B", list[1].Name)

	*list[0].GSTNo = "mutated"
	list[0].Name = "mutated"
	again, err := svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
	assert.Equal(t, "GST-A", *again.GSTNo)
}
