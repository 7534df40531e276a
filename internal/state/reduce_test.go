package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rota-app/rota/internal/interval"
)

func TestReduce_VersionAlwaysIncrements(t *testing.T) {
	s := New()

	// Even a no-op action bumps the version.
	next := Reduce(s, RetentionSwept{Removed: 0})
	assert.Equal(t, s.Version+1, next.Version)
	assert.Equal(t, s.Schedule, next.Schedule)

	next = Reduce(next, AssignShift{Date: "2026-03-10", TemplateID: "day"})
	assert.Equal(t, s.Version+2, next.Version)
}

func TestReduce_Deterministic(t *testing.T) {
	s := New()
	a := AssignShift{Date: "2026-03-10", TemplateID: "day", Actor: "test"}

	first := Reduce(s, a)
	second := Reduce(s, a)
	assert.Equal(t, first, second)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := New()
	s = Reduce(s, AssignShift{Date: "2026-03-10", TemplateID: "day"})
	before := len(s.Schedule.Assignments)

	_ = Reduce(s, AssignShift{Date: "2026-03-11", TemplateID: "night"})
	_ = Reduce(s, RemoveShift{Date: "2026-03-10", TemplateID: "day"})

	assert.Len(t, s.Schedule.Assignments, before)
	asg, ok := s.Assignment("2026-03-10")
	require.True(t, ok)
	assert.Equal(t, "day", asg.TemplateID)
}

func TestReduce_AssignSwitchRemove(t *testing.T) {
	s := New()

	s = Reduce(s, AssignShift{Date: "2026-03-10", TemplateID: "day"})
	asg, ok := s.Assignment("2026-03-10")
	require.True(t, ok)
	assert.Equal(t, "day", asg.TemplateID)

	s = Reduce(s, SwitchShift{Date: "2026-03-10", FromTemplateID: "day", ToTemplateID: "night"})
	asg, ok = s.Assignment("2026-03-10")
	require.True(t, ok)
	assert.Equal(t, "night", asg.TemplateID)

	s = Reduce(s, RemoveShift{Date: "2026-03-10", TemplateID: "night"})
	_, ok = s.Assignment("2026-03-10")
	assert.False(t, ok)
}

func TestReduce_SwitchKeepsCalendarEvent(t *testing.T) {
	s := New()
	s = Reduce(s, AssignShift{Date: "2026-03-10", TemplateID: "day"})
	s = Reduce(s, SetCalendarEvent{Date: "2026-03-10", EventID: "evt-1"})

	s = Reduce(s, SwitchShift{Date: "2026-03-10", FromTemplateID: "day", ToTemplateID: "night"})
	asg, ok := s.Assignment("2026-03-10")
	require.True(t, ok)
	assert.Equal(t, "evt-1", asg.CalendarEventID)
}

func TestReduce_SwitchMissingDateIsNoOp(t *testing.T) {
	s := New()
	next := Reduce(s, SwitchShift{Date: "2026-03-10", FromTemplateID: "day", ToTemplateID: "night"})
	assert.Empty(t, next.Schedule.Assignments)
	assert.Equal(t, s.Version+1, next.Version)
}

func TestReduce_SetCalendarEventAfterRemove(t *testing.T) {
	s := New()
	s = Reduce(s, AssignShift{Date: "2026-03-10", TemplateID: "day"})
	s = Reduce(s, RemoveShift{Date: "2026-03-10", TemplateID: "day"})

	// The calendar call resolved after the shift was removed; the event
	// ID has nowhere to land.
	s = Reduce(s, SetCalendarEvent{Date: "2026-03-10", EventID: "evt-1"})
	_, ok := s.Assignment("2026-03-10")
	assert.False(t, ok)
}

func TestReduce_RestoreShift(t *testing.T) {
	s := New()
	s = Reduce(s, AssignShift{Date: "2026-03-10", TemplateID: "day"})

	// Restoring to empty deletes the slot (undo of a create).
	s = Reduce(s, RestoreShift{Date: "2026-03-10", TemplateID: ""})
	_, ok := s.Assignment("2026-03-10")
	assert.False(t, ok)

	// Restoring to a template re-fills the slot (undo of a delete).
	s = Reduce(s, RestoreShift{Date: "2026-03-10", TemplateID: "night"})
	asg, ok := s.Assignment("2026-03-10")
	require.True(t, ok)
	assert.Equal(t, "night", asg.TemplateID)
}

func TestReduce_Catalog(t *testing.T) {
	s := New()
	day := ShiftTemplate{ID: "day", Name: "Day", Start: interval.TimeOfDay{Hour: 9}, End: interval.TimeOfDay{Hour: 17}}

	s = Reduce(s, AddTemplate{Template: day})
	got, ok := s.Template("day")
	require.True(t, ok)
	assert.Equal(t, "Day", got.Name)

	s = Reduce(s, RemoveTemplate{TemplateID: "day"})
	_, ok = s.Template("day")
	assert.False(t, ok)

	// Removing an unknown template leaves the catalog alone.
	next := Reduce(s, RemoveTemplate{TemplateID: "ghost"})
	assert.Equal(t, s.Catalog, next.Catalog)
}

func TestReduce_HistoryAndFailures(t *testing.T) {
	s := New()

	s = Reduce(s, SideEffectFailed{Op: "save_state", Seq: 4, Message: "disk full"})
	assert.Equal(t, "save_state", s.History.LastFailure.Op)
	assert.Equal(t, int64(4), s.History.LastFailure.Seq)

	// The next history event clears the failure banner.
	s = Reduce(s, HistoryChanged{CanUndo: true, LastSeq: 5})
	assert.True(t, s.History.CanUndo)
	assert.False(t, s.History.CanRedo)
	assert.Equal(t, int64(5), s.History.LastSeq)
	assert.Zero(t, s.History.LastFailure)
}

func TestReduce_Settings(t *testing.T) {
	s := New()
	assert.Equal(t, DefaultUndoDepth, s.Settings.UndoDepth)

	s = Reduce(s, SettingsChanged{Settings: SettingsState{RetentionDays: 30, UndoDepth: 5, CalendarSync: true}})
	assert.Equal(t, 30, s.Settings.RetentionDays)
	assert.Equal(t, 5, s.Settings.UndoDepth)
	assert.True(t, s.Settings.CalendarSync)
}

func TestActionNames(t *testing.T) {
	cases := []struct {
		action Action
		name   string
	}{
		{AssignShift{}, "assign_shift"},
		{SwitchShift{}, "switch_shift"},
		{RemoveShift{}, "remove_shift"},
		{RestoreShift{}, "restore_shift"},
		{SetCalendarEvent{}, "set_calendar_event"},
		{AddTemplate{}, "add_template"},
		{RemoveTemplate{}, "remove_template"},
		{HistoryChanged{}, "history_changed"},
		{SideEffectFailed{}, "side_effect_failed"},
		{SettingsChanged{}, "settings_changed"},
		{RetentionSwept{}, "retention_swept"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.name, tc.action.Name())
	}
}
