package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsContactAndCredentialKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("invoice_id", "inv_1"),
		attribute.String("customer_phone", "+1234567890"),
		attribute.String("whatsapp_api_key", "secret"),
		attribute.String("reminder.source", "template"),
	)

	keys := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		keys = append(keys, string(attr.Key))
	}
	assert.ElementsMatch(t, []string{"invoice_id", "reminder.source"}, keys)
}

func TestSafeErrorHidesMessage(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	err := SafeError(errors.New("upstream said: key=abc"))
	assert.NotContains(t, err.Error(), "abc")
}

func TestClampRatio(t *testing.T) {
	assert.Equal(t, 0.1, clampRatio(0))
	assert.Equal(t, 1.0, clampRatio(4))
	assert.Equal(t, 0.5, clampRatio(0.5))
}
