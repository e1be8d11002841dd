// Package backoff holds the blocking-pause helpers shared by the clients and
// the batch runner. Every pause goes through a SleepFunc so tests can swap
// in a fake clock.
package backoff

import (
	"context"
	"time"
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real SleepFunc. It returns ctx.Err() if the context ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Exponential returns base * 2^attempt (attempt is zero-based), so a 1s base
// yields 1s, 2s, 4s, ...
func Exponential(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return base << uint(attempt)
}
