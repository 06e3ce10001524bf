package migration

import (
	"testing"

	customerdomain "github.com/smallbiznis/invoicedesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsCreatesTables(t *testing.T) {
	conn := dbtest.Open(t)

	require.NoError(t, RunMigrations(conn))
	require.NoError(t, RunMigrations(conn), "migrations are repeatable")

	assert.True(t, conn.Migrator().HasTable(&customerdomain.Customer{}))
	assert.True(t, conn.Migrator().HasTable(&invoicedomain.Invoice{}))
	assert.True(t, conn.Migrator().HasIndex(&invoicedomain.Invoice{}, "InvoiceNumber"))
}

func TestRunMigrationsRequiresConnection(t *testing.T) {
	assert.Error(t, RunMigrations(nil))
}
