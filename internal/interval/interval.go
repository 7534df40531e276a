// Package interval provides the pure date/time math underneath shift
// scheduling: half-open shift intervals, overnight expansion, and the
// overlap check used by the conflict validator.
//
// Everything in this package is a pure function over values. No I/O,
// no clocks, no state.
package interval

import (
	"fmt"
	"time"
)

// MaxSpan is the longest span a single shift may cover. Shifts spanning
// 24 hours or more are rejected at construction, never truncated.
const MaxSpan = 24 * time.Hour

// ShiftInterval is a concrete half-open [Start, End) span occupied by a
// scheduled shift. It is derived from a calendar date plus a template's
// time-of-day span; overnight templates expand into the next day.
//
// INVARIANTS:
//   - End is strictly after Start
//   - End - Start is strictly less than MaxSpan
//
// Both are enforced by New and FromTemplate. Code that builds a
// ShiftInterval literal bypasses them, which is why Check re-validates
// the candidate span.
type ShiftInterval struct {
	ID    string
	Start time.Time
	End   time.Time
}

// New constructs a ShiftInterval, enforcing the span invariants.
func New(id string, start, end time.Time) (ShiftInterval, error) {
	if !end.After(start) {
		return ShiftInterval{}, fmt.Errorf("interval %s: end %s is not after start %s", id, end, start)
	}
	if end.Sub(start) >= MaxSpan {
		return ShiftInterval{}, fmt.Errorf("interval %s: span %s is not shorter than %s", id, end.Sub(start), MaxSpan)
	}
	return ShiftInterval{ID: id, Start: start, End: end}, nil
}

// Span returns the interval's duration.
func (s ShiftInterval) Span() time.Duration {
	return s.End.Sub(s.Start)
}

// Overlaps reports whether two half-open intervals intersect.
// Touching boundaries (a.End == b.Start) do NOT count as overlap.
// Symmetric: Overlaps(a, b) == Overlaps(b, a).
func Overlaps(a, b ShiftInterval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// FromTemplate expands a calendar date and a template time-of-day span
// into a concrete interval.
//
// date must be midnight in the schedule's location (see Midnight). When
// the end time-of-day is numerically at or before the start, the shift
// is overnight and End lands on the next calendar day:
//
//	start=23:00 end=07:00 on day D → [D 23:00, D+1 07:00)
//
// A template whose start and end are equal would describe a full 24h
// shift and is rejected.
func FromTemplate(id string, date time.Time, start, end TimeOfDay) (ShiftInterval, error) {
	if start == end {
		return ShiftInterval{}, fmt.Errorf("interval %s: start and end of day are both %s (24h shift)", id, start)
	}
	startAt := date.Add(start.Offset())
	endAt := date.Add(end.Offset())
	if !endAt.After(startAt) {
		// Overnight: roll the end into the next calendar day.
		endAt = date.AddDate(0, 0, 1).Add(end.Offset())
	}
	return New(id, startAt, endAt)
}

// Midnight returns midnight of the given civil date ("2006-01-02") in loc.
func Midnight(date string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return t, nil
}
