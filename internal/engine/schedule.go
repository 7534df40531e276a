package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rota-app/rota/internal/changelog"
	"github.com/rota-app/rota/internal/interval"
	"github.com/rota-app/rota/internal/state"
	"github.com/rota-app/rota/internal/undo"
)

var (
	// ErrUnknownTemplate means the named template is not in the catalog.
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrDateOccupied means the date already has an assignment.
	ErrDateOccupied = errors.New("date already assigned")
	// ErrDateEmpty means the date has no assignment to switch or remove.
	ErrDateEmpty = errors.New("no shift assigned on date")
	// ErrStopped means the engine no longer accepts mutations.
	ErrStopped = errors.New("engine stopped")
)

// AssignShift validates and schedules a template on a free date.
//
// Validation runs synchronously against the current state BEFORE any
// action is dispatched: a *ValidationError (overlap, illegal span)
// means nothing was mutated and nothing entered the change log. On
// success the pre-validated AssignShift action is dispatched and the
// call returns immediately; effects run asynchronously.
func (e *Engine) AssignShift(date, templateID, actor string) error {
	s := e.State()
	tmpl, ok := s.Template(templateID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, templateID)
	}
	if _, occupied := s.Assignment(date); occupied {
		return fmt.Errorf("%w: %s", ErrDateOccupied, date)
	}
	if err := e.checkConflicts(s, date, tmpl); err != nil {
		return err
	}

	if !e.Dispatch(state.AssignShift{Date: date, TemplateID: templateID, Actor: actor}) {
		return ErrStopped
	}
	return nil
}

// SwitchShift validates and replaces the template on an assigned date.
func (e *Engine) SwitchShift(date, toTemplateID, actor string) error {
	s := e.State()
	prev, ok := s.Assignment(date)
	if !ok {
		return fmt.Errorf("%w: %s", ErrDateEmpty, date)
	}
	tmpl, ok := s.Template(toTemplateID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, toTemplateID)
	}
	if err := e.checkConflicts(s, date, tmpl); err != nil {
		return err
	}

	ok = e.Dispatch(state.SwitchShift{
		Date:           date,
		FromTemplateID: prev.TemplateID,
		ToTemplateID:   toTemplateID,
		Actor:          actor,
	})
	if !ok {
		return ErrStopped
	}
	return nil
}

// RemoveShift clears an assigned date. No overlap validation applies;
// the dispatched action carries the removed slot so effect handlers
// can audit and unmirror it.
func (e *Engine) RemoveShift(date, actor string) error {
	s := e.State()
	prev, ok := s.Assignment(date)
	if !ok {
		return fmt.Errorf("%w: %s", ErrDateEmpty, date)
	}

	ok = e.Dispatch(state.RemoveShift{
		Date:            date,
		TemplateID:      prev.TemplateID,
		CalendarEventID: prev.CalendarEventID,
		Actor:           actor,
	})
	if !ok {
		return ErrStopped
	}
	return nil
}

// Undo pops the most recent switch and dispatches the restore. An
// empty undo stack is a no-op result, not an error. ErrStopped means
// the stacks and the log were left untouched.
func (e *Engine) Undo(ctx context.Context, actor string) (undo.Result, error) {
	// Checked before the controller mutates anything, so a stopped
	// engine cannot accumulate audit entries whose restores never ran.
	if e.queue.Closed() {
		return undo.Result{}, ErrStopped
	}
	res, err := e.history.Undo(actor)
	if err != nil || !res.Applied {
		return res, err
	}
	return res, e.applyHistory(ctx, res, actor)
}

// Redo re-applies the most recently undone switch.
func (e *Engine) Redo(ctx context.Context, actor string) (undo.Result, error) {
	if e.queue.Closed() {
		return undo.Result{}, ErrStopped
	}
	res, err := e.history.Redo(actor)
	if err != nil || !res.Applied {
		return res, err
	}
	return res, e.applyHistory(ctx, res, actor)
}

// applyHistory dispatches the restore synthesized by an undo or redo
// plus the history summary, and persists the audit entry off the
// caller's path. An ErrStopped return reports that the engine shut
// down between the controller pop and the enqueue; the audit entry is
// in the log but the restore never applied.
func (e *Engine) applyHistory(ctx context.Context, res undo.Result, actor string) error {
	restore := state.RestoreShift{Date: res.Date, Actor: actor}
	if res.Restore != nil {
		restore.TemplateID = res.Restore.TemplateID
	}
	if asg, ok := e.State().Assignment(res.Date); ok {
		restore.CalendarEventID = asg.CalendarEventID
	}
	if !e.Dispatch(restore) {
		return ErrStopped
	}
	e.Dispatch(state.HistoryChanged{
		CanUndo: e.history.CanUndo(),
		CanRedo: e.history.CanRedo(),
		LastSeq: res.Entry.Seq,
	})
	e.persistEntryAsync(ctx, res.Entry)
	return nil
}

// persistEntryAsync appends a change-log entry to persistence without
// blocking the caller; failures become SideEffectFailed actions.
func (e *Engine) persistEntryAsync(ctx context.Context, entry changelog.Entry) {
	if e.persistence == nil {
		return
	}
	e.pending.Add(1)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.done()
		if err := e.persistence.AppendChangeLog(ctx, entry); err != nil {
			e.Dispatch(state.SideEffectFailed{Op: "persist_change_log", Seq: entry.Seq, Message: err.Error()})
		}
	}()
}

// PurgeChangeLog runs one retention sweep using the retention policy
// from current settings. Safe to run on any cadence; a second sweep at
// the same cutoff removes nothing.
func (e *Engine) PurgeChangeLog(ctx context.Context) (int, error) {
	s := e.State()
	policy := changelog.RetentionPolicy{Days: s.Settings.RetentionDays}
	cutoff, ok := policy.Cutoff(e.now())
	if !ok {
		return 0, nil
	}

	removed := e.log.PurgeOlderThan(cutoff)
	if e.persistence != nil {
		if purger, ok := e.persistence.(ChangeLogPurger); ok {
			if _, err := purger.PurgeChangeLog(ctx, cutoff); err != nil {
				return removed, fmt.Errorf("purge persisted change log: %w", err)
			}
		}
	}
	e.Dispatch(state.RetentionSwept{Removed: removed})
	return removed, nil
}

// checkConflicts expands the candidate and every committed shift into
// concrete intervals and runs the overlap check. The date being
// (re)assigned is excluded from the existing set.
func (e *Engine) checkConflicts(s state.State, date string, tmpl state.ShiftTemplate) error {
	candidate, err := e.expand(date, tmpl)
	if err != nil {
		return err
	}

	existing := make([]interval.ShiftInterval, 0, len(s.Schedule.Assignments))
	for d, asg := range s.Schedule.Assignments {
		if d == date {
			continue
		}
		t, ok := s.Template(asg.TemplateID)
		if !ok {
			// Template was deleted from the catalog; the assignment
			// occupies no interval until it is restored or removed.
			continue
		}
		iv, err := e.expand(d, t)
		if err != nil {
			return fmt.Errorf("expand committed shift %s: %w", d, err)
		}
		existing = append(existing, iv)
	}

	res := interval.Check(candidate, existing)
	if !res.Valid {
		return &ValidationError{Reason: res.Reason, Conflicts: res.Conflicts}
	}
	return nil
}

// expand turns (civil date, template) into a concrete interval in the
// engine's location. The interval ID is the date so conflict reports
// read naturally.
func (e *Engine) expand(date string, tmpl state.ShiftTemplate) (interval.ShiftInterval, error) {
	midnight, err := interval.Midnight(date, e.loc)
	if err != nil {
		return interval.ShiftInterval{}, err
	}
	return interval.FromTemplate(date, midnight, tmpl.Start, tmpl.End)
}
