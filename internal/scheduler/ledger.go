package scheduler

import (
	"sync"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/scheduler/guard"
)

// sentLedger remembers which (invoice, kind, day) reminders this process
// already sent.
type sentLedger struct {
	mu      sync.Mutex
	entries map[ledgerKey]struct{}
}

type ledgerKey struct {
	invoiceID string
	kind      guard.Kind
	day       time.Time
}

func newSentLedger() *sentLedger {
	return &sentLedger{entries: make(map[ledgerKey]struct{})}
}

func (l *sentLedger) Sent(invoiceID string, kind guard.Kind, day time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[ledgerKey{invoiceID: invoiceID, kind: kind, day: guard.Day(day)}]
	return ok
}

func (l *sentLedger) Mark(invoiceID string, kind guard.Kind, day time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[ledgerKey{invoiceID: invoiceID, kind: kind, day: guard.Day(day)}] = struct{}{}
}

// Prune drops entries for days before today. Only today's keys are ever
// consulted.
func (l *sentLedger) Prune(today time.Time) {
	today = guard.Day(today)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.entries {
		if key.day.Before(today) {
			delete(l.entries, key)
		}
	}
}

func (l *sentLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
