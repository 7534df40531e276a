// Package undo implements the change-log-backed undo/redo controller:
// two bounded stacks of change-log entries and the derived operations
// that synthesize restore actions from them.
//
// Per mutable shift slot the history forms a simple state machine:
//
//	Unmodified -> Switched(1) -> Switched(2) -> ...
//
// Undo transitions Switched(n) -> Switched(n-1) (or back to Unmodified)
// and appends an entry of kind "undone"; redo is the inverse with kind
// "redone". Only entries of kind "switched" ever enter the undo stack -
// structural creates and deletes are recorded for audit but are not
// undoable in this design.
package undo

import (
	"sync"
	"time"

	"github.com/rota-app/rota/internal/changelog"
)

// Result is the outcome of an Undo or Redo call.
//
// An empty stack is not an error: Applied is false and the rest of the
// result is zero. When Applied is true, Restore describes the snapshot
// the caller should dispatch back into the schedule (nil Restore means
// the slot becomes empty), and Entry is the audit record appended for
// the operation itself.
type Result struct {
	Applied bool
	Date    string
	Restore *changelog.Snapshot
	Entry   changelog.Entry
}

// Controller owns the undo and redo stacks.
//
// Both stacks hold references to committed change-log entries and are
// bounded by depth: pushing onto a full undo stack evicts the oldest
// entry. Methods are safe for concurrent use; effect handlers from
// different dispatch cycles may touch the controller concurrently.
type Controller struct {
	mu    sync.Mutex
	depth int
	log   *changelog.Log
	ids   changelog.IDGenerator
	now   func() time.Time

	undo []changelog.Entry
	redo []changelog.Entry
}

// Option configures a Controller.
type Option func(*Controller)

// WithNow overrides the timestamp source, for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// DefaultDepth is the stack capacity used when settings leave the
// depth unset.
const DefaultDepth = 10

// NewController creates a controller appending to log with the given
// stack depth. A depth of zero or less falls back to DefaultDepth.
func NewController(log *changelog.Log, ids changelog.IDGenerator, depth int, opts ...Option) *Controller {
	if depth <= 0 {
		depth = DefaultDepth
	}
	c := &Controller{
		depth: depth,
		log:   log,
		ids:   ids,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record appends an audit entry for a committed user mutation and
// updates the stacks.
//
// Entries of kind "switched" are pushed onto the undo stack (evicting
// the oldest beyond depth) and clear the redo stack - a new fork
// invalidates redo history, classic editor semantics. Creates and
// deletes are appended to the log only.
func (c *Controller) Record(kind changelog.Kind, before, after *changelog.Snapshot, actor, reason string) (changelog.Entry, error) {
	entry, err := c.log.Append(changelog.Entry{
		ID:     c.ids.Generate(),
		At:     c.now(),
		Actor:  actor,
		Kind:   kind,
		Before: before,
		After:  after,
		Reason: reason,
	})
	if err != nil {
		return changelog.Entry{}, err
	}

	c.mu.Lock()
	c.apply(entry)
	c.mu.Unlock()
	return entry, nil
}

// apply folds one committed entry into the stacks. Caller holds mu.
//
// Any user mutation clears the redo stack (a new fork invalidates redo
// history); only switches are pushed onto the undo stack.
func (c *Controller) apply(entry changelog.Entry) {
	switch entry.Kind {
	case changelog.KindSwitched:
		c.undo = append(c.undo, entry)
		if len(c.undo) > c.depth {
			// Evict the oldest; history beyond depth is audit-only.
			copy(c.undo, c.undo[1:])
			c.undo = c.undo[:c.depth]
		}
		c.redo = c.redo[:0]

	case changelog.KindCreated, changelog.KindDeleted:
		c.redo = c.redo[:0]

	case changelog.KindUndone:
		if n := len(c.undo); n > 0 {
			top := c.undo[n-1]
			c.undo = c.undo[:n-1]
			c.redo = append(c.redo, top)
		}

	case changelog.KindRedone:
		if n := len(c.redo); n > 0 {
			top := c.redo[n-1]
			c.redo = c.redo[:n-1]
			c.undo = append(c.undo, top)
		}
	}
}

// Rebuild reconstructs both stacks by replaying persisted entries in
// seq order. Called once at startup so undo history survives process
// restarts. Entries purged by retention simply no longer contribute.
func (c *Controller) Rebuild(entries []changelog.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.undo = nil
	c.redo = nil
	for _, e := range entries {
		c.apply(e)
	}
}

// RecordSwitch is the post-commit hook for a template switch.
func (c *Controller) RecordSwitch(before, after *changelog.Snapshot, actor string) (changelog.Entry, error) {
	return c.Record(changelog.KindSwitched, before, after, actor, "")
}

// CanUndo reports whether an undo would apply.
func (c *Controller) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.undo) > 0
}

// CanRedo reports whether a redo would apply.
func (c *Controller) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.redo) > 0
}

// Depth returns the configured stack capacity.
func (c *Controller) Depth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.depth
}

// SetDepth resizes the stacks to a new capacity, evicting the oldest
// entries on shrink. A depth of zero or less falls back to
// DefaultDepth. Called when the user changes the undo-depth setting;
// the next switch then evicts under the new bound.
func (c *Controller) SetDepth(depth int) {
	if depth <= 0 {
		depth = DefaultDepth
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.depth = depth
	if n := len(c.undo); n > depth {
		c.undo = append(c.undo[:0], c.undo[n-depth:]...)
	}
	if n := len(c.redo); n > depth {
		c.redo = append(c.redo[:0], c.redo[n-depth:]...)
	}
}

// Undo pops the most recent switched entry, pushes it onto the redo
// stack, appends an "undone" audit entry, and returns the snapshot to
// restore (the switched entry's before side).
func (c *Controller) Undo(actor string) (Result, error) {
	c.mu.Lock()
	if len(c.undo) == 0 {
		c.mu.Unlock()
		return Result{}, nil
	}
	top := c.undo[len(c.undo)-1]
	c.undo = c.undo[:len(c.undo)-1]
	c.redo = append(c.redo, top)
	c.mu.Unlock()

	entry, err := c.log.Append(changelog.Entry{
		ID:     c.ids.Generate(),
		At:     c.now(),
		Actor:  actor,
		Kind:   changelog.KindUndone,
		Before: top.After,
		After:  top.Before,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Applied: true, Date: top.Date(), Restore: top.Before, Entry: entry}, nil
}

// Redo is the inverse of Undo: it re-applies the most recently undone
// switch and appends a "redone" audit entry.
func (c *Controller) Redo(actor string) (Result, error) {
	c.mu.Lock()
	if len(c.redo) == 0 {
		c.mu.Unlock()
		return Result{}, nil
	}
	top := c.redo[len(c.redo)-1]
	c.redo = c.redo[:len(c.redo)-1]
	c.undo = append(c.undo, top)
	c.mu.Unlock()

	entry, err := c.log.Append(changelog.Entry{
		ID:     c.ids.Generate(),
		At:     c.now(),
		Actor:  actor,
		Kind:   changelog.KindRedone,
		Before: top.Before,
		After:  top.After,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Applied: true, Date: top.Date(), Restore: top.After, Entry: entry}, nil
}

// UndoLen returns the current undo stack size. Used by tests and the
// history summary.
func (c *Controller) UndoLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.undo)
}

// RedoLen returns the current redo stack size.
func (c *Controller) RedoLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.redo)
}
