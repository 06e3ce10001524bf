package domain

import "context"

// NumberFunc renders the invoice number for a freshly allocated sequence.
type NumberFunc func(seq int64) (string, error)

// Repository persists invoices. FindByID returns nil, nil when the id is unknown.
type Repository interface {
	List(ctx context.Context) ([]Invoice, error)
	FindByID(ctx context.Context, id string) (*Invoice, error)
	// Insert allocates the next sequence, numbers the invoice with number and
	// stores it, all under one lock.
	Insert(ctx context.Context, invoice *Invoice, number NumberFunc) error
	Update(ctx context.Context, invoice *Invoice) error
}
