package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"go.uber.org/zap"
)

const (
	reminderKeyPrefix = "invoicedesk:ratelimit:reminder:"
	sweepKeyPrefix    = "invoicedesk:lock:"
)

// ReminderLimiter throttles outbound reminder dispatch per invoice and guards
// scheduler sweeps with a distributed lock. A nil limiter allows everything.
type ReminderLimiter struct {
	bucket  *TokenBucket
	locker  *Locker
	rate    float64
	burst   int
	lockTTL time.Duration
	log     *zap.Logger
}

// Decision is the outcome of a send attempt against the limiter.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

func NewReminderLimiter(cfg config.Config, client *redis.Client, log *zap.Logger) *ReminderLimiter {
	if client == nil {
		return nil
	}
	rate := cfg.RateLimit.ReminderSendRate
	if rate <= 0 {
		rate = 1.0 / 60
	}
	burst := cfg.RateLimit.ReminderSendBurst
	if burst <= 0 {
		burst = 3
	}
	ttl := cfg.RateLimit.SweepLockTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReminderLimiter{
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    rate,
		burst:   burst,
		lockTTL: ttl,
		log:     log.Named("ratelimit"),
	}
}

// AllowSend consumes one token from the invoice's bucket.
// Redis failures fail open so a cache outage never blocks reminders.
func (l *ReminderLimiter) AllowSend(ctx context.Context, invoiceID string) Decision {
	if l == nil {
		return Decision{Allowed: true}
	}
	res, err := l.bucket.Allow(ctx, reminderKeyPrefix+invoiceID, l.rate, l.burst)
	if err != nil {
		l.log.Warn("reminder rate limit check failed", zap.String("invoice_id", invoiceID), zap.Error(err))
		return Decision{Allowed: true}
	}
	return Decision{Allowed: res.Allowed, RetryAfter: res.RetryAfter}
}

// AcquireSweep takes the named sweep lock. The returned release func is
// always safe to call. When the limiter is nil the lock is always granted.
func (l *ReminderLimiter) AcquireSweep(ctx context.Context, name string) (func(), bool, error) {
	noop := func() {}
	if l == nil {
		return noop, true, nil
	}
	key := sweepKeyPrefix + name
	token, ok, err := l.locker.TryLock(ctx, key, l.lockTTL)
	if err != nil {
		return noop, false, fmt.Errorf("acquire sweep lock %s: %w", name, err)
	}
	if !ok {
		return noop, false, nil
	}
	release := func() {
		if err := l.locker.Release(context.Background(), key, token); err != nil {
			l.log.Warn("release sweep lock failed", zap.String("lock", name), zap.Error(err))
		}
	}
	return release, true, nil
}
