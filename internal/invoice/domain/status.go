package domain

import "time"

// DeriveStatus reports the status an invoice has at now. Paid invoices are
// final; any other invoice whose due date has passed is overdue. The result
// is never persisted.
func DeriveStatus(inv Invoice, now time.Time) Invoice {
	if inv.Status == StatusPaid {
		return inv
	}
	if inv.DueDate.Before(now) {
		inv.Status = StatusOverdue
	}
	return inv
}
