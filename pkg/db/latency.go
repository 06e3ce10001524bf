package db

import (
	"context"
	"time"
)

// Wait blocks for d, returning early if ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Unavailable(ctx.Err())
	case <-timer.C:
		return nil
	}
}
