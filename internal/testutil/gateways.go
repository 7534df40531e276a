package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rota-app/rota/internal/changelog"
	"github.com/rota-app/rota/internal/state"
)

// MemoryGateway is an in-memory persistence gateway double. It
// implements engine.PersistenceGateway and the ChangeLogPurger
// upgrade, and supports error injection per operation.
//
// Thread-safe: effect goroutines from separate dispatch cycles may hit
// it concurrently.
type MemoryGateway struct {
	mu      sync.Mutex
	entries []changelog.Entry
	saved   state.State
	hasSave bool

	FailAppend error
	FailSave   error
	FailLoad   error
}

// NewMemoryGateway returns an empty gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{}
}

// AppendChangeLog stores the entry; duplicate IDs are ignored, like
// the SQLite gateway's ON CONFLICT DO NOTHING.
func (g *MemoryGateway) AppendChangeLog(_ context.Context, e changelog.Entry) error {
	if g.FailAppend != nil {
		return g.FailAppend
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, have := range g.entries {
		if have.ID == e.ID {
			return nil
		}
	}
	g.entries = append(g.entries, e)
	return nil
}

// LoadChangeLog returns appended entries in append order.
func (g *MemoryGateway) LoadChangeLog(context.Context) ([]changelog.Entry, error) {
	if g.FailLoad != nil {
		return nil, g.FailLoad
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]changelog.Entry, len(g.entries))
	copy(out, g.entries)
	return out, nil
}

// PurgeChangeLog drops entries older than cutoff.
func (g *MemoryGateway) PurgeChangeLog(_ context.Context, cutoff time.Time) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.entries[:0]
	var removed int64
	for _, e := range g.entries {
		if e.At.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	g.entries = kept
	return removed, nil
}

// SaveState replaces the stored snapshot.
func (g *MemoryGateway) SaveState(_ context.Context, s state.State) error {
	if g.FailSave != nil {
		return g.FailSave
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saved = s
	g.hasSave = true
	return nil
}

// LoadState returns the stored snapshot.
func (g *MemoryGateway) LoadState(context.Context) (state.State, bool, error) {
	if g.FailLoad != nil {
		return state.State{}, false, g.FailLoad
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saved, g.hasSave, nil
}

// Entries returns a copy of everything appended so far.
func (g *MemoryGateway) Entries() []changelog.Entry {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]changelog.Entry, len(g.entries))
	copy(out, g.entries)
	return out
}

// SavedState returns the last saved snapshot.
func (g *MemoryGateway) SavedState() (state.State, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saved, g.hasSave
}

// CalendarCall records one call into RecordingCalendar.
type CalendarCall struct {
	Op      string // "create" | "update" | "delete"
	EventID string
	Date    string
	Tmpl    string
}

// RecordingCalendar is an engine.CalendarGateway double that records
// calls and mints sequential event IDs.
type RecordingCalendar struct {
	mu    sync.Mutex
	calls []CalendarCall
	next  int

	FailCreate error
	FailUpdate error
	FailDelete error
}

// NewRecordingCalendar returns an empty recorder.
func NewRecordingCalendar() *RecordingCalendar {
	return &RecordingCalendar{}
}

// CreateEvent mints "evt-1", "evt-2", ... and records the call.
func (c *RecordingCalendar) CreateEvent(_ context.Context, date string, tmpl state.ShiftTemplate) (string, error) {
	if c.FailCreate != nil {
		return "", c.FailCreate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	id := fmt.Sprintf("evt-%d", c.next)
	c.calls = append(c.calls, CalendarCall{Op: "create", EventID: id, Date: date, Tmpl: tmpl.ID})
	return id, nil
}

// UpdateEvent records the call.
func (c *RecordingCalendar) UpdateEvent(_ context.Context, eventID, date string, tmpl state.ShiftTemplate) error {
	if c.FailUpdate != nil {
		return c.FailUpdate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, CalendarCall{Op: "update", EventID: eventID, Date: date, Tmpl: tmpl.ID})
	return nil
}

// DeleteEvent records the call.
func (c *RecordingCalendar) DeleteEvent(_ context.Context, eventID string) error {
	if c.FailDelete != nil {
		return c.FailDelete
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, CalendarCall{Op: "delete", EventID: eventID})
	return nil
}

// Calls returns a copy of the recorded calls in order.
func (c *RecordingCalendar) Calls() []CalendarCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CalendarCall, len(c.calls))
	copy(out, c.calls)
	return out
}
