package repository

import (
	"context"
	"sync"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/customer/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db"
)

type memoryRepo struct {
	mu        sync.RWMutex
	latency   time.Duration
	customers []domain.Customer
}

// NewMemory returns a process-local repository that keeps insertion order.
func NewMemory(latency time.Duration) domain.Repository {
	return &memoryRepo{latency: latency}
}

func (r *memoryRepo) List(ctx context.Context) ([]domain.Customer, error) {
	if err := db.Wait(ctx, r.latency); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Customer, len(r.customers))
	for i, c := range r.customers {
		out[i] = clone(c)
	}
	return out, nil
}

func (r *memoryRepo) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	if err := db.Wait(ctx, r.latency); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.customers {
		if c.ID == id {
			found := clone(c)
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) Insert(ctx context.Context, customer *domain.Customer) error {
	if err := db.Wait(ctx, r.latency); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.customers {
		if c.ID == customer.ID {
			return domain.ErrInvalidID
		}
	}
	r.customers = append(r.customers, clone(*customer))
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, customer *domain.Customer) error {
	if err := db.Wait(ctx, r.latency); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.customers {
		if r.customers[i].ID == customer.ID {
			r.customers[i] = clone(*customer)
			return nil
		}
	}
	return domain.ErrNotFound
}

func clone(c domain.Customer) domain.Customer {
	if c.GSTNo != nil {
		gst := *c.GSTNo
		c.GSTNo = &gst
	}
	return c
}
