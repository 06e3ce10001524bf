package guard

import (
	"time"

	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
)

// Kind distinguishes reminders sent ahead of the due date from those sent
// after it has passed.
type Kind string

const (
	KindBefore Kind = "before"
	KindAfter  Kind = "after"
)

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ReminderKind reports which automatic reminder, if any, is due today for
// inv. Paid invoices never qualify. When both offsets land on today the
// before reminder wins.
func ReminderKind(inv invoicedomain.Invoice, today time.Time, daysBefore, daysAfter int) (Kind, bool) {
	if inv.Status == invoicedomain.StatusPaid {
		return "", false
	}
	due := Day(inv.DueDate)
	today = Day(today)
	switch {
	case today.Equal(due.AddDate(0, 0, -daysBefore)):
		return KindBefore, true
	case today.Equal(due.AddDate(0, 0, daysAfter)):
		return KindAfter, true
	default:
		return "", false
	}
}
