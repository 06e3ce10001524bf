package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	issued := time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		template string
		seq      int64
		want     string
	}{
		{DefaultInvoiceNumberTemplate, 1, "INV-001"},
		{DefaultInvoiceNumberTemplate, 42, "INV-042"},
		{DefaultInvoiceNumberTemplate, 1234, "INV-1234"},
		{"INV-{YYYY}{MM}{DD}-{SEQ6}", 7, "INV-20250704-000007"},
		{"{YY}/{SEQ}", 15, "25/15"},
	}

	for _, tc := range cases {
		got, err := FormatInvoiceNumber(tc.template, issued, tc.seq)
		require.NoError(t, err, tc.template)
		assert.Equal(t, tc.want, got)
	}
}

func TestFormatInvoiceNumberErrors(t *testing.T) {
	issued := time.Now()

	_, err := FormatInvoiceNumber("", issued, 1)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber(DefaultInvoiceNumberTemplate, issued, 0)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber("INV-{NOPE}", issued, 1)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("INV-{SEQ3}"))
	assert.Error(t, Validate("INV-{SEQ"))
}
