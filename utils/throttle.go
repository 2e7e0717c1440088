package utils

import (
	"context"
	"time"
)

// Throttle enforces a minimum gap between successive sequential requests.
// A zero interval never blocks.
type Throttle struct {
	interval    time.Duration
	lastRequest time.Time
}

// NewThrottle creates a Throttle with the given minimum interval in milliseconds.
func NewThrottle(rateLimitMs int) *Throttle {
	return &Throttle{interval: time.Duration(rateLimitMs) * time.Millisecond}
}

// Wait blocks until the interval since the previous Wait has elapsed.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.interval <= 0 {
		return nil
	}

	if !t.lastRequest.IsZero() {
		if remaining := t.interval - time.Since(t.lastRequest); remaining > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(remaining):
			}
		}
	}
	t.lastRequest = time.Now()
	return nil
}
