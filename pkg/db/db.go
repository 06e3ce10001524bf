package db

import (
	"context"

	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/observability"
	obslogger "github.com/smallbiznis/invoicedesk/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("db",
	fx.Provide(NewConfig),
	fx.Provide(Open),
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	App       config.Config
	Obs       observability.Config
	Cfg       Config
	Log       *zap.Logger
}

// Open connects to the configured SQL database. The memory driver needs no
// connection, so Open returns a nil *gorm.DB for it.
func Open(p Params) (*gorm.DB, error) {
	if !p.App.UsesDatabase() {
		p.Log.Info("using in-memory store", zap.Duration("latency", p.App.StoreLatency))
		return nil, nil
	}

	dialector, err := Dialect(p.Cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: obslogger.NewGormLogger(obslogger.DefaultGormLoggerConfig(p.Obs.Debug())),
	})
	if err != nil {
		return nil, err
	}
	if p.Obs.OtelEnabled {
		if err := conn.Use(otelgorm.NewPlugin(
			otelgorm.WithDBName(p.Cfg.Name),
			otelgorm.WithoutQueryVariables(),
			otelgorm.WithoutMetrics(),
		)); err != nil {
			return nil, err
		}
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(p.Cfg.MaxIdleConn)
	sqlDB.SetMaxOpenConns(p.Cfg.MaxOpenConn)
	sqlDB.SetConnMaxLifetime(p.Cfg.ConnMaxLifetime)

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return sqlDB.Close()
		},
	})

	p.Log.Info("database connected", zap.String("driver", p.Cfg.Type))
	return conn, nil
}
