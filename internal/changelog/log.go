package changelog

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Log is the in-memory append-only change log.
//
// Appends follow a single-writer discipline - only the dispatch
// engine's history middleware appends - but purge sweeps may run from a
// maintenance path, so the log carries a mutex: seq assignment and the
// physical append are atomic with respect to concurrent purges, and a
// sweep can never observe (or delete) a half-appended entry.
//
// Entries are kept sorted by Seq; Seq values are assigned here and
// never reused, even after a purge.
type Log struct {
	mu      sync.Mutex
	clock   *Clock
	entries []Entry
}

// NewLog creates an empty log whose first entry will get seq 1.
func NewLog() *Log {
	return &Log{clock: NewClock()}
}

// Load rebuilds a log from persisted entries. The clock resumes from
// the highest persisted seq, keeping sequence numbers globally unique
// across process restarts.
func Load(entries []Entry) *Log {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	var max int64
	for _, e := range sorted {
		if e.Seq > max {
			max = e.Seq
		}
	}
	return &Log{clock: NewClockAt(max), entries: sorted}
}

// Append stamps the entry with the next seq and appends it. The input
// entry must carry its ID, timestamp, kind, and snapshots; Seq is
// always assigned here, overwriting whatever the caller set.
//
// Append is all-or-nothing: the returned entry is in the log exactly
// as returned, or an error occurred and nothing was written.
func (l *Log) Append(e Entry) (Entry, error) {
	if e.ID == "" {
		return Entry{}, fmt.Errorf("changelog: append: missing id")
	}
	if !e.Kind.Valid() {
		return Entry{}, fmt.Errorf("changelog: append: invalid kind %q", e.Kind)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e.Seq = l.clock.Next()
	l.entries = append(l.entries, e)
	return e, nil
}

// Get returns the entry with the given seq.
func (l *Log) Get(seq int64) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := sort.Search(len(l.entries), func(i int) bool { return l.entries[i].Seq >= seq })
	if i < len(l.entries) && l.entries[i].Seq == seq {
		return l.entries[i], true
	}
	return Entry{}, false
}

// Query returns entries matching pred within [from, to). Zero bounds
// are open on that side; a nil pred matches everything. Results come
// back in seq order.
func (l *Log) Query(pred func(Entry) bool, from, to time.Time) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := []Entry{}
	for _, e := range l.entries {
		if !from.IsZero() && e.At.Before(from) {
			continue
		}
		if !to.IsZero() && !e.At.Before(to) {
			continue
		}
		if pred != nil && !pred(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Entries returns a copy of the whole log in seq order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// LastSeq returns the most recently assigned sequence number.
func (l *Log) LastSeq() int64 {
	return l.clock.Current()
}

// PurgeOlderThan removes every entry with a timestamp strictly before
// cutoff and returns how many were removed. Entries at or after the
// cutoff are untouched. Idempotent: a second sweep with the same
// cutoff removes zero entries. Purging never rewinds the clock.
func (l *Log) PurgeOlderThan(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.entries[:0]
	removed := 0
	for _, e := range l.entries {
		if e.At.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	// Zero the tail so purged entries are collectable.
	for i := len(kept); i < len(l.entries); i++ {
		l.entries[i] = Entry{}
	}
	l.entries = kept
	return removed
}
