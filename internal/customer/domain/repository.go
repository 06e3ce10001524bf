package domain

import "context"

// Repository persists customers. FindByID returns nil, nil when the id is unknown.
type Repository interface {
	List(ctx context.Context) ([]Customer, error)
	FindByID(ctx context.Context, id string) (*Customer, error)
	Insert(ctx context.Context, customer *Customer) error
	Update(ctx context.Context, customer *Customer) error
}
