package repository

import (
	"context"
	"sync"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db"
)

type memoryRepo struct {
	mu       sync.RWMutex
	latency  time.Duration
	seq      int64
	invoices []domain.Invoice
}

// NewMemory returns a process-local repository that keeps insertion order.
func NewMemory(latency time.Duration) domain.Repository {
	return &memoryRepo{latency: latency}
}

func (r *memoryRepo) List(ctx context.Context) ([]domain.Invoice, error) {
	if err := db.Wait(ctx, r.latency); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Invoice, len(r.invoices))
	for i, inv := range r.invoices {
		out[i] = inv.Clone()
	}
	return out, nil
}

func (r *memoryRepo) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	if err := db.Wait(ctx, r.latency); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, inv := range r.invoices {
		if inv.ID == id {
			found := inv.Clone()
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) Insert(ctx context.Context, invoice *domain.Invoice, number domain.NumberFunc) error {
	if err := db.Wait(ctx, r.latency); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, inv := range r.invoices {
		if inv.ID == invoice.ID {
			return domain.ErrInvalidID
		}
	}

	seq := r.seq + 1
	formatted, err := number(seq)
	if err != nil {
		return err
	}
	for _, inv := range r.invoices {
		if inv.InvoiceNumber == formatted {
			return domain.ErrNumberConflict
		}
	}

	r.seq = seq
	invoice.Sequence = seq
	invoice.InvoiceNumber = formatted
	r.invoices = append(r.invoices, invoice.Clone())
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	if err := db.Wait(ctx, r.latency); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.invoices {
		if r.invoices[i].ID == invoice.ID {
			r.invoices[i] = invoice.Clone()
			return nil
		}
	}
	return domain.ErrNotFound
}
