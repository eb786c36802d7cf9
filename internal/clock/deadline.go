// Package clock provides helpers for time-related operations.
package clock

import (
	"context"
	"time"
)

// Remaining returns the budget left until the absolute deadline,
// clamped at zero. Sessions started later in a sweep therefore see a
// smaller budget than early ones.
func Remaining(now, deadline time.Time) time.Duration {
	if !deadline.After(now) {
		return 0
	}
	return deadline.Sub(now)
}

// Expired reports whether the deadline has passed.
func Expired(now, deadline time.Time) bool {
	return !deadline.After(now)
}

// SleepWithContext waits for the duration or returns early if the context is canceled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
