// Package timex holds the time helpers used by the stores: a monotonic
// millisecond clock and the conversions to and from the persisted form.
package timex

import (
	"sync"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

// System is the wall clock.
func System() time.Time { return time.Now() }

// Monotonic wraps base so that every call returns a time strictly later than
// the previous one at millisecond precision. Two saves issued within the same
// millisecond still get distinct, ordered timestamps.
func Monotonic(base Clock) Clock {
	if base == nil {
		base = System
	}
	var (
		mu   sync.Mutex
		last int64
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		ms := base().UnixMilli()
		if ms <= last {
			ms = last + 1
		}
		last = ms
		return FromMillis(ms)
	}
}

// Millis converts t to Unix milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts Unix milliseconds to a UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
