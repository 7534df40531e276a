// Package testutil provides deterministic helpers for engine tests:
// fixed time sources and in-memory gateway doubles.
package testutil

import (
	"sync"
	"time"
)

// FixedNow returns a timestamp source that always reports t.
func FixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// StepNow returns a timestamp source that starts at t and advances by
// step on every call. Thread-safe, so concurrent effect handlers get
// distinct, ordered timestamps.
func StepNow(t time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := t
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		out := next
		next = next.Add(step)
		return out
	}
}
