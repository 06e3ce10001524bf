package reminder

import (
	"github.com/smallbiznis/invoicedesk/internal/reminder/generator"
	"github.com/smallbiznis/invoicedesk/internal/reminder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reminder.service",
	fx.Provide(generator.New),
	fx.Provide(service.New),
)
