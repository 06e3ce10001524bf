package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/customer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Customer{}, domain.ErrInvalidID
	}

	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *customer, nil
}

// Save upserts by id. A supplied id that matches no stored customer is
// dropped and a new customer is created under a fresh id.
func (s *Service) Save(ctx context.Context, req domain.SaveCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	incoming := domain.Customer{
		Name:    name,
		Phone:   strings.TrimSpace(req.Phone),
		Email:   strings.TrimSpace(req.Email),
		GSTNo:   normalizeGST(req.GSTNo),
		Address: strings.TrimSpace(req.Address),
	}

	id := strings.TrimSpace(req.ID)
	if id != "" {
		existing, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return domain.Customer{}, err
		}
		if existing != nil {
			incoming.ID = existing.ID
			incoming.CreatedAt = existing.CreatedAt
			if err := s.repo.Update(ctx, &incoming); err != nil {
				return domain.Customer{}, err
			}
			return incoming, nil
		}
		s.log.Warn("unknown customer id on save, creating new customer", zap.String("requested_id", id))
	}

	incoming.ID = domain.IDPrefix + s.genID.Generate().String()
	incoming.CreatedAt = s.clock.Now()
	if err := s.repo.Insert(ctx, &incoming); err != nil {
		return domain.Customer{}, err
	}
	return incoming, nil
}

func normalizeGST(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
