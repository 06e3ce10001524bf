package config

import (
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SettingsFile is the on-disk shape of the business settings defaults.
type SettingsFile struct {
	BusinessName           string `mapstructure:"businessName"`
	WhatsAppProvider       string `mapstructure:"whatsappProvider"`
	WhatsAppAPIKey         string `mapstructure:"whatsappApiKey"`
	AutoReminderDaysBefore int    `mapstructure:"autoReminderDaysBefore"`
	AutoReminderDaysAfter  int    `mapstructure:"autoReminderDaysAfter"`
}

func DefaultSettingsFile() SettingsFile {
	return SettingsFile{
		BusinessName:           "My Awesome Inc.",
		WhatsAppProvider:       "ultramsg",
		AutoReminderDaysBefore: 3,
		AutoReminderDaysAfter:  1,
	}
}

type SettingsFileHolder struct {
	current atomic.Value // holds SettingsFile

	mu        sync.Mutex
	listeners []func(SettingsFile)
}

func NewSettingsFileHolder() (*SettingsFileHolder, error) {
	v := newSettingsViper()
	v.AddConfigPath("/etc/invoicedesk")
	v.AddConfigPath(".")

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	holder := &SettingsFileHolder{}
	holder.current.Store(readSettings(v))

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			holder.store(readSettings(v))
			log.Printf("[settings] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func newSettingsViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName("settings")
	v.SetConfigType("yml")

	v.SetEnvPrefix("INVOICEDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultSettingsFile()
	v.SetDefault("settings.businessName", defaults.BusinessName)
	v.SetDefault("settings.whatsappProvider", defaults.WhatsAppProvider)
	v.SetDefault("settings.whatsappApiKey", defaults.WhatsAppAPIKey)
	v.SetDefault("settings.autoReminderDaysBefore", defaults.AutoReminderDaysBefore)
	v.SetDefault("settings.autoReminderDaysAfter", defaults.AutoReminderDaysAfter)
	return v
}

// readSettings resolves every key on its own so a partial settings map
// falls back to defaults key by key.
func readSettings(v *viper.Viper) SettingsFile {
	return SettingsFile{
		BusinessName:           v.GetString("settings.businessName"),
		WhatsAppProvider:       v.GetString("settings.whatsappProvider"),
		WhatsAppAPIKey:         v.GetString("settings.whatsappApiKey"),
		AutoReminderDaysBefore: v.GetInt("settings.autoReminderDaysBefore"),
		AutoReminderDaysAfter:  v.GetInt("settings.autoReminderDaysAfter"),
	}
}

// NewStaticSettingsFileHolder returns a holder that never reloads.
func NewStaticSettingsFileHolder(cfg SettingsFile) *SettingsFileHolder {
	holder := &SettingsFileHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *SettingsFileHolder) Get() SettingsFile {
	return h.current.Load().(SettingsFile)
}

// OnChange registers fn to run after every successful reload.
func (h *SettingsFileHolder) OnChange(fn func(SettingsFile)) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

func (h *SettingsFileHolder) store(cfg SettingsFile) {
	h.current.Store(cfg)

	h.mu.Lock()
	listeners := append([]func(SettingsFile){}, h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
}
