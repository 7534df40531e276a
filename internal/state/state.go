// Package state defines the immutable application state aggregate, the
// closed Action union, and the pure reducer that maps (State, Action)
// to the next State.
//
// The aggregate is versioned: every reducer application returns a new
// value with Version incremented. Nothing in this package mutates a
// State in place, and nothing here performs I/O.
package state

// DefaultUndoDepth is the undo/redo stack capacity when settings do not
// override it.
const DefaultUndoDepth = 10

// Assignment is one scheduled shift: a civil date bound to a template.
// CalendarEventID is the opaque identifier of the mirrored device
// calendar event; empty until the calendar middleware reports back.
type Assignment struct {
	Date            string `json:"date"`
	TemplateID      string `json:"template_id"`
	CalendarEventID string `json:"calendar_event_id,omitempty"`
}

// ScheduleState holds all committed shift assignments, keyed by civil
// date ("2006-01-02"). At most one shift per date.
type ScheduleState struct {
	Assignments map[string]Assignment `json:"assignments"`
}

// CatalogState holds the known shift templates, keyed by template ID.
type CatalogState struct {
	Templates map[string]ShiftTemplate `json:"templates"`
}

// Failure describes the most recent side-effect failure surfaced to the
// UI. The zero value means no outstanding failure.
type Failure struct {
	Op      string `json:"op"`
	Seq     int64  `json:"seq"`
	Message string `json:"message"`
}

// HistoryState is the observer-visible summary of the change history.
// The stacks themselves live in the undo controller; this sub-state
// only mirrors what the UI needs to enable or grey out buttons.
type HistoryState struct {
	CanUndo bool  `json:"can_undo"`
	CanRedo bool  `json:"can_redo"`
	LastSeq int64 `json:"last_seq"`

	// LastFailure is set when a side effect fails after commit. The
	// state change it belonged to is NOT rolled back; the schedule may
	// need explicit reconciliation against the device calendar.
	LastFailure Failure `json:"last_failure"`
}

// SettingsState holds user settings the engine consumes.
type SettingsState struct {
	// RetentionDays bounds change-log retention; 0 keeps entries forever.
	RetentionDays int `json:"retention_days"`
	// UndoDepth is the undo/redo stack capacity.
	UndoDepth int `json:"undo_depth"`
	// CalendarSync toggles mirroring shifts into the device calendar.
	CalendarSync bool `json:"calendar_sync"`
}

// State is the immutable aggregate of all feature sub-states.
//
// INVARIANT: State values are never mutated after construction. The
// reducer copies on write; observers and middleware receive snapshots
// they must treat as read-only.
type State struct {
	Version  int64         `json:"version"`
	Schedule ScheduleState `json:"schedule"`
	Catalog  CatalogState  `json:"catalog"`
	History  HistoryState  `json:"history"`
	Settings SettingsState `json:"settings"`
}

// New returns the initial empty state at version 0.
func New() State {
	return State{
		Schedule: ScheduleState{Assignments: map[string]Assignment{}},
		Catalog:  CatalogState{Templates: map[string]ShiftTemplate{}},
		Settings: SettingsState{UndoDepth: DefaultUndoDepth},
	}
}

// Assignment returns the shift assigned to a date, if any.
func (s State) Assignment(date string) (Assignment, bool) {
	a, ok := s.Schedule.Assignments[date]
	return a, ok
}

// Template returns a catalog template by ID, if present.
func (s State) Template(id string) (ShiftTemplate, bool) {
	t, ok := s.Catalog.Templates[id]
	return t, ok
}

// cloneAssignments copies the schedule map for copy-on-write updates.
func cloneAssignments(in map[string]Assignment) map[string]Assignment {
	out := make(map[string]Assignment, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneTemplates(in map[string]ShiftTemplate) map[string]ShiftTemplate {
	out := make(map[string]ShiftTemplate, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
