package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository is a thin generic gorm store shared by the SQL-backed domains.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	FindByID(ctx context.Context, id string) (*T, error)
	Find(ctx context.Context, query *T, order string) ([]*T, error)
	Create(ctx context.Context, resource *T) error
	Save(ctx context.Context, resource *T) error
	Count(ctx context.Context, query *T) (int64, error)
}
