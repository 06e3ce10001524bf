package repository

import (
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg config.Config
	DB  *gorm.DB `optional:"true"`
}

func Provide(p Params) domain.Repository {
	if p.DB != nil && p.Cfg.UsesDatabase() {
		return NewGorm(p.DB)
	}
	return NewMemory(p.Cfg.StoreLatency)
}
