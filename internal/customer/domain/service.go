package domain

import (
	"context"
	"errors"
)

type SaveCustomerRequest struct {
	ID      string
	Name    string
	Phone   string
	Email   string
	GSTNo   *string
	Address string
}

type Service interface {
	List(context.Context) ([]Customer, error)
	GetByID(context.Context, string) (Customer, error)
	Save(context.Context, SaveCustomerRequest) (Customer, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("customer_not_found")
)
