// Package time contains time related helpers
package time

import "time"

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// NextAligned returns the first instant strictly after now on the grid
// anchored at prev with the given step. Missed periods collapse into one:
// prev=10:00 step=1m now=10:07:30 -> 10:08:00.
// A non-positive step returns now unchanged.
func NextAligned(prev, now time.Time, step time.Duration) time.Time {
	if step <= 0 {
		return now
	}
	if prev.After(now) {
		return prev
	}
	k := now.Sub(prev)/step + 1
	return prev.Add(k * step)
}
