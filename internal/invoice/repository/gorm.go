package repository

import (
	"context"
	"sync"

	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db"
	"github.com/smallbiznis/invoicedesk/pkg/repository"
	"gorm.io/gorm"
)

type gormRepo struct {
	mu    sync.Mutex
	db    *gorm.DB
	store repository.Repository[domain.Invoice]
}

// NewGorm returns a SQL-backed repository. Call Migrate before first use.
func NewGorm(conn *gorm.DB) domain.Repository {
	return &gormRepo{
		db:    conn,
		store: repository.ProvideStore[domain.Invoice](conn),
	}
}

func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(&domain.Invoice{})
}

func (r *gormRepo) List(ctx context.Context) ([]domain.Invoice, error) {
	rows, err := r.store.Find(ctx, nil, "sequence asc")
	if err != nil {
		return nil, db.Unavailable(err)
	}
	out := make([]domain.Invoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func (r *gormRepo) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	row, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, db.Unavailable(err)
	}
	return row, nil
}

func (r *gormRepo) Insert(ctx context.Context, invoice *domain.Invoice, number domain.NumberFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&domain.Invoice{}).Select("COALESCE(MAX(sequence), 0)").Scan(&last).Error; err != nil {
			return db.Unavailable(err)
		}

		seq := last + 1
		formatted, err := number(seq)
		if err != nil {
			return err
		}
		invoice.Sequence = seq
		invoice.InvoiceNumber = formatted

		if err := r.store.WithTrx(tx).Create(ctx, invoice); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrNumberConflict
			}
			return db.Unavailable(err)
		}
		return nil
	})
}

func (r *gormRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	if err := r.store.Save(ctx, invoice); err != nil {
		return db.Unavailable(err)
	}
	return nil
}
