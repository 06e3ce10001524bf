package whatsapp

import (
	"fmt"

	settingsdomain "github.com/smallbiznis/invoicedesk/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log *zap.Logger
}

// Registry resolves the gateway for the provider chosen in settings.
type Registry struct {
	providers map[settingsdomain.WhatsAppProvider]Provider
}

func NewRegistry(p Params) *Registry {
	r := &Registry{providers: make(map[settingsdomain.WhatsAppProvider]Provider, len(settingsdomain.Providers))}
	for _, name := range settingsdomain.Providers {
		switch name {
		case settingsdomain.ProviderUltraMsg,
			settingsdomain.ProviderGreenAPI,
			settingsdomain.ProviderMeta:
			r.providers[name] = NewLogProvider(string(name), p.Log)
		}
	}
	return r
}

func (r *Registry) Resolve(name settingsdomain.WhatsAppProvider) (Provider, error) {
	provider, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", settingsdomain.ErrInvalidWhatsAppProvider, name)
	}
	return provider, nil
}
