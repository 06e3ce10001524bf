package db

import (
	"testing"

	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectByDriver(t *testing.T) {
	for _, driver := range []string{config.StoreDriverSQLite, config.StoreDriverPostgres, config.StoreDriverMySQL} {
		d, err := Dialect(Config{Type: driver, Host: "localhost", Port: "5432", Name: "invoicedesk"})
		require.NoError(t, err, driver)
		assert.NotNil(t, d, driver)
	}
}

func TestDialectRejectsUnknownDriver(t *testing.T) {
	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}
