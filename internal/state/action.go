package state

// Action is the closed union of everything the dispatch engine can
// process: user intents, async-result deliveries, and system events.
//
// Each variant carries only the data the reducer needs. All variants
// are immutable comparable value types, so tests can assert equality
// on dispatched actions directly.
//
// The union is closed by the unexported marker method; new variants
// must live in this package and every sub-reducer must stay total over
// its subset.
type Action interface {
	// Name is a stable snake_case identifier used in logs, failure
	// actions, and golden traces.
	Name() string

	isAction()
}

// AssignShift schedules a template on a free date. The payload is
// trusted: overlap and span validation already happened synchronously
// before this action was dispatched.
type AssignShift struct {
	Date       string
	TemplateID string
	Actor      string
}

// SwitchShift replaces the template on an already-assigned date.
// Like AssignShift, the payload arrives pre-validated.
type SwitchShift struct {
	Date           string
	FromTemplateID string
	ToTemplateID   string
	Actor          string
}

// RemoveShift clears a date's assignment. TemplateID and
// CalendarEventID describe the assignment being removed; the front
// door fills them in so effect handlers do not need the pre-mutation
// state.
type RemoveShift struct {
	Date            string
	TemplateID      string
	CalendarEventID string
	Actor           string
}

// RestoreShift sets a date's assignment from a change-log snapshot.
// Dispatched only while applying an undo or redo; an empty TemplateID
// removes the assignment. Restores never re-enter the undo stacks.
// CalendarEventID is the event mirrored for the slot before the
// restore, filled in like RemoveShift's, so the calendar handler can
// delete it when the slot becomes empty.
type RestoreShift struct {
	Date            string
	TemplateID      string
	CalendarEventID string
	Actor           string
}

// SetCalendarEvent delivers the async result of a calendar create: the
// external event ID to remember on the assignment.
type SetCalendarEvent struct {
	Date    string
	EventID string
}

// AddTemplate puts a template into the catalog, replacing any template
// with the same ID.
type AddTemplate struct {
	Template ShiftTemplate
}

// RemoveTemplate deletes a template from the catalog. Existing
// assignments referencing it are left alone.
type RemoveTemplate struct {
	TemplateID string
}

// HistoryChanged mirrors the undo controller's stack availability into
// observable state after a record, undo, or redo.
type HistoryChanged struct {
	CanUndo bool
	CanRedo bool
	LastSeq int64
}

// SideEffectFailed reports a middleware failure. Seq points at the
// change-log entry the failed effect belonged to (0 when none). The
// committed state change is not rolled back.
type SideEffectFailed struct {
	Op      string
	Seq     int64
	Message string
}

// SettingsChanged replaces the user settings sub-state.
type SettingsChanged struct {
	Settings SettingsState
}

// RetentionSwept records that a purge pass removed Removed entries.
type RetentionSwept struct {
	Removed int
}

func (AssignShift) Name() string      { return "assign_shift" }
func (SwitchShift) Name() string      { return "switch_shift" }
func (RemoveShift) Name() string      { return "remove_shift" }
func (RestoreShift) Name() string     { return "restore_shift" }
func (SetCalendarEvent) Name() string { return "set_calendar_event" }
func (AddTemplate) Name() string      { return "add_template" }
func (RemoveTemplate) Name() string   { return "remove_template" }
func (HistoryChanged) Name() string   { return "history_changed" }
func (SideEffectFailed) Name() string { return "side_effect_failed" }
func (SettingsChanged) Name() string  { return "settings_changed" }
func (RetentionSwept) Name() string   { return "retention_swept" }

func (AssignShift) isAction()      {}
func (SwitchShift) isAction()      {}
func (RemoveShift) isAction()      {}
func (RestoreShift) isAction()     {}
func (SetCalendarEvent) isAction() {}
func (AddTemplate) isAction()      {}
func (RemoveTemplate) isAction()   {}
func (HistoryChanged) isAction()   {}
func (SideEffectFailed) isAction() {}
func (SettingsChanged) isAction()  {}
func (RetentionSwept) isAction()   {}
