package engine

import (
	"context"

	"github.com/rota-app/rota/internal/changelog"
	"github.com/rota-app/rota/internal/state"
)

// historyMiddleware records committed user mutations into the change
// log and the undo stacks, then announces the new history shape.
//
// Only the three user mutations are recorded. RestoreShift is applied
// by undo/redo and must not re-enter the stacks, and bookkeeping
// actions have no audit value. A settings change is not recorded
// either, but it does retune the stack depth.
func (e *Engine) historyMiddleware() Middleware {
	return func(ctx context.Context, snap state.State, a state.Action, dispatch Dispatch) error {
		var entry changelog.Entry
		var err error

		switch a := a.(type) {
		case state.AssignShift:
			after := &changelog.Snapshot{Date: a.Date, TemplateID: a.TemplateID}
			entry, err = e.history.Record(changelog.KindCreated, nil, after, a.Actor, "")

		case state.SwitchShift:
			before := &changelog.Snapshot{Date: a.Date, TemplateID: a.FromTemplateID}
			after := &changelog.Snapshot{Date: a.Date, TemplateID: a.ToTemplateID}
			entry, err = e.history.RecordSwitch(before, after, a.Actor)

		case state.RemoveShift:
			before := &changelog.Snapshot{Date: a.Date, TemplateID: a.TemplateID, CalendarEventID: a.CalendarEventID}
			entry, err = e.history.Record(changelog.KindDeleted, before, nil, a.Actor, "")

		case state.SettingsChanged:
			// Depth changes apply immediately; a shrink trims the
			// stacks to the new bound.
			e.history.SetDepth(a.Settings.UndoDepth)
			return nil

		default:
			return nil
		}
		if err != nil {
			return &EffectError{Op: "record_history", Err: err}
		}

		dispatch(state.HistoryChanged{
			CanUndo: e.history.CanUndo(),
			CanRedo: e.history.CanRedo(),
			LastSeq: entry.Seq,
		})

		if e.persistence != nil {
			if err := e.persistence.AppendChangeLog(ctx, entry); err != nil {
				// The in-memory entry stands; see the reconciliation
				// note on SideEffectFailed.
				return &EffectError{Op: "persist_change_log", Seq: entry.Seq, Err: err}
			}
		}
		return nil
	}
}

// persistMiddleware saves a state snapshot after every cycle. Saves
// are idempotent, so persisting bookkeeping actions too costs little
// and keeps the logic total.
func (e *Engine) persistMiddleware() Middleware {
	return func(ctx context.Context, snap state.State, a state.Action, dispatch Dispatch) error {
		if err := e.persistence.SaveState(ctx, snap); err != nil {
			return &EffectError{Op: "save_state", Err: err}
		}
		return nil
	}
}

// calendarMiddleware mirrors schedule mutations into the device
// calendar. The external event ID comes back asynchronously as a
// SetCalendarEvent action.
//
// A calendar failure after the change log has committed leaves the
// schedule and the calendar out of sync; the failure is surfaced as a
// SideEffectFailed action and reconciliation is explicit, not
// automatic.
func (e *Engine) calendarMiddleware() Middleware {
	return func(ctx context.Context, snap state.State, a state.Action, dispatch Dispatch) error {
		if !snap.Settings.CalendarSync {
			return nil
		}

		switch a := a.(type) {
		case state.AssignShift:
			tmpl, ok := snap.Template(a.TemplateID)
			if !ok {
				return nil
			}
			eventID, err := e.calendar.CreateEvent(ctx, a.Date, tmpl)
			if err != nil {
				return &EffectError{Op: "calendar_create", Err: err}
			}
			dispatch(state.SetCalendarEvent{Date: a.Date, EventID: eventID})

		case state.SwitchShift:
			return e.mirrorSlot(ctx, snap, a.Date, a.ToTemplateID, dispatch)

		case state.RestoreShift:
			// An empty restore empties the slot; unmirror its event.
			if a.TemplateID == "" {
				if a.CalendarEventID == "" {
					return nil
				}
				if err := e.calendar.DeleteEvent(ctx, a.CalendarEventID); err != nil {
					return &EffectError{Op: "calendar_delete", Err: err}
				}
				return nil
			}
			return e.mirrorSlot(ctx, snap, a.Date, a.TemplateID, dispatch)

		case state.RemoveShift:
			if a.CalendarEventID == "" {
				return nil
			}
			if err := e.calendar.DeleteEvent(ctx, a.CalendarEventID); err != nil {
				return &EffectError{Op: "calendar_delete", Err: err}
			}
		}
		return nil
	}
}

// mirrorSlot brings the calendar event for an assigned date in line
// with the named template: update in place when the slot already has
// an event, create one otherwise.
func (e *Engine) mirrorSlot(ctx context.Context, snap state.State, date, templateID string, dispatch Dispatch) error {
	asg, ok := snap.Assignment(date)
	if !ok {
		return nil
	}
	tmpl, ok := snap.Template(templateID)
	if !ok {
		return nil
	}
	if asg.CalendarEventID == "" {
		eventID, err := e.calendar.CreateEvent(ctx, date, tmpl)
		if err != nil {
			return &EffectError{Op: "calendar_create", Err: err}
		}
		dispatch(state.SetCalendarEvent{Date: date, EventID: eventID})
		return nil
	}
	if err := e.calendar.UpdateEvent(ctx, asg.CalendarEventID, date, tmpl); err != nil {
		return &EffectError{Op: "calendar_update", Err: err}
	}
	return nil
}
