package service

import (
	"context"
	"strings"
	"sync"

	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log  *zap.Logger
	File *config.SettingsFileHolder
}

// Service keeps the settings singleton in memory. Updates are lost on
// restart; a reload of the settings file replaces the current value.
type Service struct {
	log *zap.Logger

	mu      sync.RWMutex
	current domain.Settings
}

func New(p Params) domain.Service {
	svc := &Service{log: p.Log.Named("settings.service")}
	svc.current = svc.fromFile(p.File.Get())
	p.File.OnChange(func(file config.SettingsFile) {
		next := svc.fromFile(file)
		svc.mu.Lock()
		svc.current = next
		svc.mu.Unlock()
		svc.log.Info("settings reloaded from file", zap.String("whatsapp_provider", string(next.WhatsAppProvider)))
	})
	return svc
}

func (s *Service) Get(context.Context) domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Service) Update(_ context.Context, req domain.UpdateRequest) (domain.Settings, error) {
	provider, err := domain.ParseWhatsAppProvider(req.WhatsAppProvider)
	if err != nil {
		return domain.Settings{}, err
	}
	name := strings.TrimSpace(req.BusinessName)
	if name == "" {
		return domain.Settings{}, domain.ErrInvalidBusinessName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(req.WhatsAppAPIKey)
	if key != "" && key == s.current.Masked().WhatsAppAPIKey {
		key = s.current.WhatsAppAPIKey
	}

	s.current = domain.Settings{
		BusinessName:           name,
		WhatsAppProvider:       provider,
		WhatsAppAPIKey:         key,
		AutoReminderDaysBefore: req.AutoReminderDaysBefore,
		AutoReminderDaysAfter:  req.AutoReminderDaysAfter,
	}
	s.log.Info("settings updated",
		zap.String("whatsapp_provider", string(provider)),
		zap.Int("auto_reminder_days_before", req.AutoReminderDaysBefore),
		zap.Int("auto_reminder_days_after", req.AutoReminderDaysAfter),
	)
	return s.current, nil
}

func (s *Service) fromFile(file config.SettingsFile) domain.Settings {
	defaults := config.DefaultSettingsFile()

	provider, err := domain.ParseWhatsAppProvider(file.WhatsAppProvider)
	if err != nil {
		s.log.Warn("unknown whatsapp provider in settings file, using default",
			zap.String("whatsapp_provider", file.WhatsAppProvider),
		)
		provider = domain.WhatsAppProvider(defaults.WhatsAppProvider)
	}
	name := strings.TrimSpace(file.BusinessName)
	if name == "" {
		name = defaults.BusinessName
	}

	return domain.Settings{
		BusinessName:           name,
		WhatsAppProvider:       provider,
		WhatsAppAPIKey:         strings.TrimSpace(file.WhatsAppAPIKey),
		AutoReminderDaysBefore: file.AutoReminderDaysBefore,
		AutoReminderDaysAfter:  file.AutoReminderDaysAfter,
	}
}
