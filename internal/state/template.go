package state

import (
	"fmt"

	"github.com/rota-app/rota/internal/interval"
)

// ShiftTemplate describes a reusable shift shape: a name and a time-of-day
// span. A template whose End is numerically earlier than its Start is an
// overnight template; its concrete intervals cross midnight.
type ShiftTemplate struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Start interval.TimeOfDay `json:"start"`
	End   interval.TimeOfDay `json:"end"`
}

// Overnight reports whether the template spans into the next day.
func (t ShiftTemplate) Overnight() bool {
	return !t.Start.Before(t.End)
}

// Validate checks structural legality. Start == End would describe a
// 24h shift and is rejected here, matching interval.FromTemplate.
func (t ShiftTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("template: missing id")
	}
	if t.Name == "" {
		return fmt.Errorf("template %s: missing name", t.ID)
	}
	if t.Start == t.End {
		return fmt.Errorf("template %s: start and end are both %s", t.ID, t.Start)
	}
	return nil
}
