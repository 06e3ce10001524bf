package domain

import (
	"context"
	"errors"
	"strings"
)

// WhatsAppProvider names the messaging gateway reminders are sent through.
type WhatsAppProvider string

const (
	ProviderUltraMsg WhatsAppProvider = "ultramsg"
	ProviderGreenAPI WhatsAppProvider = "greenapi"
	ProviderMeta     WhatsAppProvider = "meta"
)

var Providers = []WhatsAppProvider{ProviderUltraMsg, ProviderGreenAPI, ProviderMeta}

func (p WhatsAppProvider) Valid() bool {
	switch p {
	case ProviderUltraMsg, ProviderGreenAPI, ProviderMeta:
		return true
	default:
		return false
	}
}

func ParseWhatsAppProvider(value string) (WhatsAppProvider, error) {
	provider := WhatsAppProvider(strings.ToLower(strings.TrimSpace(value)))
	if !provider.Valid() {
		return "", ErrInvalidWhatsAppProvider
	}
	return provider, nil
}

type Settings struct {
	BusinessName           string           `json:"business_name"`
	WhatsAppProvider       WhatsAppProvider `json:"whatsapp_provider"`
	WhatsAppAPIKey         string           `json:"whatsapp_api_key"`
	AutoReminderDaysBefore int              `json:"auto_reminder_days_before"`
	AutoReminderDaysAfter  int              `json:"auto_reminder_days_after"`
}

// Masked hides all but the last four characters of the API key.
func (s Settings) Masked() Settings {
	key := s.WhatsAppAPIKey
	if key == "" {
		return s
	}
	visible := 4
	if len(key) <= visible {
		s.WhatsAppAPIKey = strings.Repeat("*", len(key))
		return s
	}
	s.WhatsAppAPIKey = strings.Repeat("*", len(key)-visible) + key[len(key)-visible:]
	return s
}

// UpdateRequest replaces the whole settings record. An API key equal to the
// masked form of the current key keeps the current key.
type UpdateRequest struct {
	BusinessName           string
	WhatsAppProvider       string
	WhatsAppAPIKey         string
	AutoReminderDaysBefore int
	AutoReminderDaysAfter  int
}

type Service interface {
	Get(ctx context.Context) Settings
	Update(ctx context.Context, req UpdateRequest) (Settings, error)
}

var (
	ErrInvalidWhatsAppProvider = errors.New("invalid_whatsapp_provider")
	ErrInvalidBusinessName     = errors.New("invalid_business_name")
)
