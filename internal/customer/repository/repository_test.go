package repository

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/customer/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db"
	"github.com/smallbiznis/invoicedesk/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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
			now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

			missing, err := repo.FindByID(ctx, "cust_1")
			require.NoError(t, err)
			assert.Nil(t, missing)

			require.NoError(t, repo.Insert(ctx, &domain.Customer{ID: "cust_1", Name: "Innovate Corp", CreatedAt: now}))
			require.NoError(t, repo.Insert(ctx, &domain.Customer{ID: "cust_2", Name: "Quantum Solutions", CreatedAt: now.Add(time.Hour)}))

			require.NoError(t, repo.Update(ctx, &domain.Customer{ID: "cust_1", Name: "Innovate Corp 2", CreatedAt: now}))

			found, err := repo.FindByID(ctx, "cust_1")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, "Innovate Corp 2", found.Name)

			all, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "cust_1", all[0].ID)
			assert.Equal(t, "cust_2", all[1].ID)

			assert.ErrorIs(t, repo.Insert(ctx, &domain.Customer{ID: "cust_2", Name: "dup", CreatedAt: now}), domain.ErrInvalidID)
		})
	}
}

func TestMemoryRepositoryLatencyHonoursContext(t *testing.T) {
	repo := NewMemory(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := repo.List(ctx)
	assert.ErrorIs(t, err, db.ErrStorageUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
