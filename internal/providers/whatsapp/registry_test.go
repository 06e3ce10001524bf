package whatsapp

import (
	"context"
	"testing"

	settingsdomain "github.com/smallbiznis/invoicedesk/internal/settings/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRegistryResolvesEveryProvider(t *testing.T) {
	r := NewRegistry(Params{Log: zap.NewNop()})
	for _, name := range settingsdomain.Providers {
		provider, err := r.Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, string(name), provider.Name())
	}
}

func TestRegistryRejectsUnknownProvider(t *testing.T) {
	r := NewRegistry(Params{Log: zap.NewNop()})
	_, err := r.Resolve("twilio")
	assert.ErrorIs(t, err, settingsdomain.ErrInvalidWhatsAppProvider)
}

func TestLogProviderSend(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	provider := NewLogProvider("ultramsg", zap.New(core))

	err := provider.Send(context.Background(), Message{To: "+919876543210", Body: "Hello", APIKey: "secret"})
	require.NoError(t, err)

	entries := logs.FilterMessage("whatsapp message sent").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "+919876543210", fields["to"])
	assert.Equal(t, "Hello", fields["body"])
	assert.Equal(t, true, fields["api_key_configured"])
	assert.NotContains(t, fields, "api_key")
}

func TestLogProviderValidates(t *testing.T) {
	provider := NewLogProvider("meta", nil)
	ctx := context.Background()

	assert.ErrorIs(t, provider.Send(ctx, Message{Body: "Hello"}), ErrMissingRecipient)
	assert.ErrorIs(t, provider.Send(ctx, Message{To: "+91", Body: "  "}), ErrEmptyMessage)
}
