package state

// Reduce computes the next state for an action. Pure, total, and
// synchronous: it never fails, never performs I/O, and repeated calls
// with the same inputs yield identical results.
//
// Every successful application increments Version, including actions
// that leave all sub-states untouched (e.g. RetentionSwept). Business
// validation does NOT happen here - mutating actions arrive with
// pre-validated payloads, which keeps the reducer trivially replayable.
func Reduce(s State, a Action) State {
	next := s
	next.Schedule = reduceSchedule(s.Schedule, a)
	next.Catalog = reduceCatalog(s.Catalog, a)
	next.History = reduceHistory(s.History, a)
	next.Settings = reduceSettings(s.Settings, a)
	next.Version = s.Version + 1
	return next
}

// reduceSchedule handles the assignment lifecycle. Total over the
// action union: anything it does not care about returns the sub-state
// unchanged, by the explicit default case.
func reduceSchedule(s ScheduleState, a Action) ScheduleState {
	switch a := a.(type) {
	case AssignShift:
		m := cloneAssignments(s.Assignments)
		m[a.Date] = Assignment{Date: a.Date, TemplateID: a.TemplateID}
		return ScheduleState{Assignments: m}

	case SwitchShift:
		prev, ok := s.Assignments[a.Date]
		if !ok {
			return s
		}
		m := cloneAssignments(s.Assignments)
		// The calendar event follows the slot across switches.
		m[a.Date] = Assignment{Date: a.Date, TemplateID: a.ToTemplateID, CalendarEventID: prev.CalendarEventID}
		return ScheduleState{Assignments: m}

	case RemoveShift:
		if _, ok := s.Assignments[a.Date]; !ok {
			return s
		}
		m := cloneAssignments(s.Assignments)
		delete(m, a.Date)
		return ScheduleState{Assignments: m}

	case RestoreShift:
		m := cloneAssignments(s.Assignments)
		if a.TemplateID == "" {
			delete(m, a.Date)
		} else {
			prev := m[a.Date]
			m[a.Date] = Assignment{Date: a.Date, TemplateID: a.TemplateID, CalendarEventID: prev.CalendarEventID}
		}
		return ScheduleState{Assignments: m}

	case SetCalendarEvent:
		prev, ok := s.Assignments[a.Date]
		if !ok {
			// The shift was removed while the calendar call was in
			// flight; the stale event ID is dropped.
			return s
		}
		m := cloneAssignments(s.Assignments)
		prev.CalendarEventID = a.EventID
		m[a.Date] = prev
		return ScheduleState{Assignments: m}

	default:
		return s
	}
}

func reduceCatalog(c CatalogState, a Action) CatalogState {
	switch a := a.(type) {
	case AddTemplate:
		m := cloneTemplates(c.Templates)
		m[a.Template.ID] = a.Template
		return CatalogState{Templates: m}

	case RemoveTemplate:
		if _, ok := c.Templates[a.TemplateID]; !ok {
			return c
		}
		m := cloneTemplates(c.Templates)
		delete(m, a.TemplateID)
		return CatalogState{Templates: m}

	default:
		return c
	}
}

func reduceHistory(h HistoryState, a Action) HistoryState {
	switch a := a.(type) {
	case HistoryChanged:
		// A fresh history event clears any stale failure banner.
		return HistoryState{CanUndo: a.CanUndo, CanRedo: a.CanRedo, LastSeq: a.LastSeq}

	case SideEffectFailed:
		h.LastFailure = Failure{Op: a.Op, Seq: a.Seq, Message: a.Message}
		return h

	default:
		return h
	}
}

func reduceSettings(st SettingsState, a Action) SettingsState {
	switch a := a.(type) {
	case SettingsChanged:
		return a.Settings
	default:
		return st
	}
}
