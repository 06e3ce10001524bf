package repository

import (
	"context"
	"fmt"

	"github.com/smallbiznis/invoicedesk/internal/customer/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db"
	"github.com/smallbiznis/invoicedesk/pkg/repository"
	"gorm.io/gorm"
)

type gormRepo struct {
	store repository.Repository[domain.Customer]
}

// NewGorm returns a SQL-backed repository. Call Migrate before first use.
func NewGorm(conn *gorm.DB) domain.Repository {
	return &gormRepo{store: repository.ProvideStore[domain.Customer](conn)}
}

func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(&domain.Customer{})
}

func (r *gormRepo) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.store.Find(ctx, nil, "created_at asc, id asc")
	if err != nil {
		return nil, db.Unavailable(err)
	}
	out := make([]domain.Customer, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func (r *gormRepo) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	row, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, db.Unavailable(err)
	}
	return row, nil
}

func (r *gormRepo) Insert(ctx context.Context, customer *domain.Customer) error {
	if err := r.store.Create(ctx, customer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return fmt.Errorf("%w: %s", domain.ErrInvalidID, customer.ID)
		}
		return db.Unavailable(err)
	}
	return nil
}

func (r *gormRepo) Update(ctx context.Context, customer *domain.Customer) error {
	if err := r.store.Save(ctx, customer); err != nil {
		return db.Unavailable(err)
	}
	return nil
}
