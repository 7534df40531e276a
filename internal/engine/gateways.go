package engine

import (
	"context"
	"time"

	"github.com/rota-app/rota/internal/changelog"
	"github.com/rota-app/rota/internal/state"
)

// PersistenceGateway is the narrow interface the engine consumes for
// durable storage. The core treats it as fallible I/O that is only
// reachable from the effect phase and from explicit maintenance
// operations, never from the reducer.
type PersistenceGateway interface {
	// LoadChangeLog returns all persisted entries in seq order.
	LoadChangeLog(ctx context.Context) ([]changelog.Entry, error)
	// AppendChangeLog durably appends one entry. Must be all-or-nothing
	// and idempotent on entry ID.
	AppendChangeLog(ctx context.Context, e changelog.Entry) error
	// LoadState returns the last saved snapshot, with found=false when
	// no snapshot has been saved yet.
	LoadState(ctx context.Context) (s state.State, found bool, err error)
	// SaveState replaces the saved snapshot.
	SaveState(ctx context.Context, s state.State) error
}

// ChangeLogPurger is the optional persistence upgrade for retention
// sweeps. Gateways that durably store the change log implement it so
// purges reach the disk copy too.
type ChangeLogPurger interface {
	PurgeChangeLog(ctx context.Context, cutoff time.Time) (int64, error)
}

// CalendarGateway mirrors shifts into an external device calendar.
// Events are keyed by the opaque ID stored on each assignment.
// Failures surface as SideEffectFailed actions, never as errors
// crossing into the reducer.
type CalendarGateway interface {
	CreateEvent(ctx context.Context, date string, tmpl state.ShiftTemplate) (eventID string, err error)
	UpdateEvent(ctx context.Context, eventID, date string, tmpl state.ShiftTemplate) error
	DeleteEvent(ctx context.Context, eventID string) error
}
