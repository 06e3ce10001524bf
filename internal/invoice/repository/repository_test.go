package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func numberer(seq int64) (string, error) { return fmt.Sprintf("INV-%03d", seq), nil }

func setupGorm(t *testing.T) domain.Repository {
	t.Helper()
	conn := dbtest.Open(t)
	require.NoError(t, Migrate(conn))
	return NewGorm(conn)
}

func TestRepositories(t *testing.T) {
	impls := map[string]func(t *testing.T) domain.Repository{
		"memory": func(*testing.T) domain.Repository { return NewMemory(0) },
		"gorm":   setupGorm,
	}

	for name, build := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := build(t)
			issued := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

			first := &domain.Invoice{
				ID:         "inv_1",
				CustomerID: "cust_1",
				IssueDate:  issued,
				DueDate:    issued.AddDate(0, 0, 30),
				Items: []domain.InvoiceItem{{
					ID:          "item_1",
					Description: "Web Development Services",
					Qty:         decimal.NewFromInt(10),
					Rate:        decimal.NewFromInt(120),
					Tax:         decimal.NewFromInt(18),
				}},
				TotalAmount: decimal.NewFromInt(1416),
				Status:      domain.StatusPending,
				CreatedAt:   issued,
			}
			require.NoError(t, repo.Insert(ctx, first, numberer))
			assert.Equal(t, "INV-001", first.InvoiceNumber)
			assert.EqualValues(t, 1, first.Sequence)

			second := &domain.Invoice{ID: "inv_2", CustomerID: "cust_2", IssueDate: issued, DueDate: issued, Items: []domain.InvoiceItem{}, TotalAmount: decimal.Zero, Status: domain.StatusPending, CreatedAt: issued}
			require.NoError(t, repo.Insert(ctx, second, numberer))
			assert.Equal(t, "INV-002", second.InvoiceNumber)

			got, err := repo.FindByID(ctx, "inv_1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "INV-001", got.InvoiceNumber)
			require.Len(t, got.Items, 1)
			assert.Equal(t, "Web Development Services", got.Items[0].Description)
			assert.True(t, got.Items[0].Qty.Equal(decimal.NewFromInt(10)))
			assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(1416)))

			paidAt := issued.AddDate(0, 0, 3)
			got.Status = domain.StatusPaid
			got.PaymentReceivedDate = &paidAt
			require.NoError(t, repo.Update(ctx, got))

			all, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "inv_1", all[0].ID)
			assert.Equal(t, domain.StatusPaid, all[0].Status)
			require.NotNil(t, all[0].PaymentReceivedDate)
			assert.True(t, paidAt.Equal(*all[0].PaymentReceivedDate))

			missing, err := repo.FindByID(ctx, "inv_404")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})
	}
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory(0)
	inv := &domain.Invoice{ID: "inv_1", Items: []domain.InvoiceItem{{ID: "item_1", Description: "a"}}}
	require.NoError(t, repo.Insert(ctx, inv, numberer))

	inv.Items[0].Description = "changed after insert"
	got, err := repo.FindByID(ctx, "inv_1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Items[0].Description)

	got.Items[0].Description = "changed after read"
	again, err := repo.FindByID(ctx, "inv_1")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Items[0].Description)
}

func TestMemoryRepositoryNumberFailureLeavesCounter(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory(0)
	boom := func(int64) (string, error) { return "", fmt.Errorf("bad template") }

	assert.Error(t, repo.Insert(ctx, &domain.Invoice{ID: "inv_x"}, boom))

	inv := &domain.Invoice{ID: "inv_1"}
	require.NoError(t, repo.Insert(ctx, inv, numberer))
	assert.Equal(t, "INV-001", inv.InvoiceNumber)
}

func TestTotalAmountColumnKeepsComputedScale(t *testing.T) {
	parsed, err := schema.Parse(&domain.Invoice{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	field := parsed.LookUpField("TotalAmount")
	require.NotNil(t, field)
	assert.Equal(t, "decimal(38,12)", field.TagSettings["TYPE"])

	ctx := context.Background()
	repo := setupGorm(t)
	total := decimal.RequireFromString("56.244375")
	require.NoError(t, repo.Insert(ctx, &domain.Invoice{ID: "inv_1", CustomerID: "cust_1", TotalAmount: total}, numberer))

	got, err := repo.FindByID(ctx, "inv_1")
	require.NoError(t, err)
	assert.True(t, total.Equal(got.TotalAmount), "got %s", got.TotalAmount)
}
