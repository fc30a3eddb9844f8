package models

import "time"

// defaultNotifyInterval bounds how often progress notifications reach
// subscribers while bytes arrive far more frequently.
const defaultNotifyInterval = 150 * time.Millisecond

// ProgressThrottle rate-limits progress notifications by wall clock. The
// computed percentage stays accurate regardless; only the emission of
// notifications is sampled. Not safe for concurrent use; callers hold
// their own lock.
type ProgressThrottle struct {
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewProgressThrottle creates a throttle with the given minimum interval
// between allowed notifications. A non-positive interval allows every
// notification through.
func NewProgressThrottle(interval time.Duration) *ProgressThrottle {
	return &ProgressThrottle{interval: interval, now: time.Now}
}

// Allow reports whether a notification may be emitted now, and if so
// starts the next interval. Terminal notifications bypass the throttle
// entirely and must not be routed through Allow.
func (t *ProgressThrottle) Allow() bool {
	if t.interval <= 0 {
		return true
	}

	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}
