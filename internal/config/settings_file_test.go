package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsFileDefaultsWhenMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	holder, err := NewSettingsFileHolder()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettingsFile(), holder.Get())
}

func TestSettingsFileReadsYAML(t *testing.T) {
	dir := t.TempDir()
	content := []byte("settings:\n  businessName: Acme Traders\n  whatsappProvider: meta\n  autoReminderDaysBefore: 5\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yml"), content, 0o600))
	t.Chdir(dir)

	holder, err := NewSettingsFileHolder()
	require.NoError(t, err)

	got := holder.Get()
	assert.Equal(t, "Acme Traders", got.BusinessName)
	assert.Equal(t, "meta", got.WhatsAppProvider)
	assert.Equal(t, 5, got.AutoReminderDaysBefore)
	assert.Equal(t, 1, got.AutoReminderDaysAfter, "unset keys keep their defaults")
}

func TestReadSettingsFallsBackPerKey(t *testing.T) {
	v := newSettingsViper()
	require.NoError(t, v.ReadConfig(bytes.NewBufferString("settings:\n  whatsappApiKey: key-123\n  autoReminderDaysAfter: 7\n")))

	got := readSettings(v)
	want := DefaultSettingsFile()
	want.WhatsAppAPIKey = "key-123"
	want.AutoReminderDaysAfter = 7
	assert.Equal(t, want, got)
}

func TestReadSettingsEnvOverridesFile(t *testing.T) {
	t.Setenv("INVOICEDESK_SETTINGS_AUTOREMINDERDAYSBEFORE", "9")
	v := newSettingsViper()
	require.NoError(t, v.ReadConfig(bytes.NewBufferString("settings:\n  autoReminderDaysBefore: 5\n")))

	got := readSettings(v)
	assert.Equal(t, 9, got.AutoReminderDaysBefore)
	assert.Equal(t, 1, got.AutoReminderDaysAfter)
}

func TestSettingsFileHolderNotifiesListeners(t *testing.T) {
	holder := NewStaticSettingsFileHolder(DefaultSettingsFile())

	var seen []SettingsFile
	holder.OnChange(func(cfg SettingsFile) { seen = append(seen, cfg) })

	next := DefaultSettingsFile()
	next.BusinessName = "Reloaded"
	holder.store(next)

	require.Len(t, seen, 1)
	assert.Equal(t, "Reloaded", seen[0].BusinessName)
	assert.Equal(t, "Reloaded", holder.Get().BusinessName)
}
