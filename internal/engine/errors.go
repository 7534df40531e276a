package engine

import (
	"fmt"
	"strings"

	"github.com/rota-app/rota/internal/interval"
)

// ValidationError reports that a candidate shift failed validation
// before any mutating action was dispatched. It never enters the
// change log.
type ValidationError struct {
	Reason interval.Reason

	// Conflicts is the complete set of committed shifts the candidate
	// intersects, so callers can report every conflicting date.
	Conflicts []interval.ShiftInterval
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch e.Reason {
	case interval.ReasonSpanTooLong:
		return "validation: shift spans 24h or more"
	case interval.ReasonSpanInverted:
		return "validation: shift ends before it starts"
	case interval.ReasonOverlap:
		dates := make([]string, len(e.Conflicts))
		for i, c := range e.Conflicts {
			dates[i] = c.ID
		}
		return fmt.Sprintf("validation: shift overlaps %d existing shift(s): %s", len(e.Conflicts), strings.Join(dates, ", "))
	default:
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
}

// EffectError wraps a middleware failure with the context the engine
// needs to build a SideEffectFailed action: the failed operation and,
// when the effect belonged to a committed change-log entry, its seq.
type EffectError struct {
	Op  string
	Seq int64
	Err error
}

// Error implements the error interface.
func (e *EffectError) Error() string {
	if e.Seq != 0 {
		return fmt.Sprintf("effect %s (seq %d): %v", e.Op, e.Seq, e.Err)
	}
	return fmt.Sprintf("effect %s: %v", e.Op, e.Err)
}

// Unwrap supports errors.Is/As on the underlying cause.
func (e *EffectError) Unwrap() error {
	return e.Err
}
