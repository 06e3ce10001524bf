package migration

import (
	"context"

	"github.com/smallbiznis/invoicedesk/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB `optional:"true"`
	Seeder *seed.Seeder
}

var Module = fx.Module("migrations",
	fx.Provide(seed.New),
	fx.Invoke(func(p Params) error {
		if p.DB != nil {
			if err := RunMigrations(p.DB); err != nil {
				return err
			}
		}
		return p.Seeder.Run(context.Background())
	}),
)
