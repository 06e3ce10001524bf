package providers

import (
	"github.com/smallbiznis/invoicedesk/internal/providers/pdf"
	"github.com/smallbiznis/invoicedesk/internal/providers/whatsapp"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	pdf.Module,
	whatsapp.Module,
)
