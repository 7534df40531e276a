// Package changelog implements the append-only change log behind
// history and undo/redo: immutable entries stamped with a monotonic
// sequence number, a query surface, and retention-based garbage
// collection.
package changelog

import "time"

// Kind classifies what a change-log entry records.
type Kind string

const (
	// KindCreated is a shift newly assigned to a free date.
	KindCreated Kind = "created"
	// KindSwitched is a template replacement on an assigned date.
	// Only switched entries are eligible for undo.
	KindSwitched Kind = "switched"
	// KindDeleted is a removed assignment.
	KindDeleted Kind = "deleted"
	// KindUndone records an applied undo.
	KindUndone Kind = "undone"
	// KindRedone records an applied redo.
	KindRedone Kind = "redone"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCreated, KindSwitched, KindDeleted, KindUndone, KindRedone:
		return true
	}
	return false
}

// Snapshot captures one date's assignment at a point in time. A nil
// *Snapshot on an entry means the slot was empty on that side of the
// change.
type Snapshot struct {
	Date            string `json:"date"`
	TemplateID      string `json:"template_id"`
	CalendarEventID string `json:"calendar_event_id,omitempty"`
}

// Entry is one immutable audit record of a state mutation.
//
// Seq is assigned by the log at append time: strictly increasing,
// globally unique, and preserved exactly across persistence round
// trips - undo/redo ordering depends on it. Entries are never edited
// after creation; the only deletion path is a retention sweep.
type Entry struct {
	ID     string    `json:"id"`
	Seq    int64     `json:"seq"`
	At     time.Time `json:"at"`
	Actor  string    `json:"actor"`
	Kind   Kind      `json:"kind"`
	Before *Snapshot `json:"before,omitempty"`
	After  *Snapshot `json:"after,omitempty"`
	Reason string    `json:"reason,omitempty"`
}

// Date returns the civil date the entry touched, preferring the after
// side (present on creates/switches/redos).
func (e Entry) Date() string {
	if e.After != nil {
		return e.After.Date
	}
	if e.Before != nil {
		return e.Before.Date
	}
	return ""
}

// RetentionPolicy bounds how long entries are kept. The zero value
// keeps everything forever.
type RetentionPolicy struct {
	Days int
}

// Forever is the keep-everything policy.
func Forever() RetentionPolicy { return RetentionPolicy{} }

// Days keeps entries for n days.
func Days(n int) RetentionPolicy { return RetentionPolicy{Days: n} }

// Cutoff returns the purge cutoff for a sweep running at now, and
// whether the policy purges at all.
func (p RetentionPolicy) Cutoff(now time.Time) (time.Time, bool) {
	if p.Days <= 0 {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -p.Days), true
}
