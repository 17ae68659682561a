// Package cache provides shared fixed-window counters for rate limiting across
// server instances.
package cache

import (
	"context"
	"time"
)

// DefaultWindow is used when a caller passes a non-positive window.
const DefaultWindow = time.Minute

// Counter increments a per-key counter that resets when its window elapses.
// It returns the count after the increment and the time left in the window.
type Counter interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}
