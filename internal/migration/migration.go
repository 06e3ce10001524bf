package migration

import (
	"errors"
	"fmt"

	customerrepo "github.com/smallbiznis/invoicedesk/internal/customer/repository"
	invoicerepo "github.com/smallbiznis/invoicedesk/internal/invoice/repository"
	"gorm.io/gorm"
)

// RunMigrations creates or updates the tables every SQL driver needs.
func RunMigrations(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	steps := []struct {
		name string
		run  func(*gorm.DB) error
	}{
		{"customers", customerrepo.Migrate},
		{"invoices", invoicerepo.Migrate},
	}
	for _, step := range steps {
		if err := step.run(conn); err != nil {
			return fmt.Errorf("migrate %s: %w", step.name, err)
		}
	}
	return nil
}
