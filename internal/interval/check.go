package interval

// Reason categorizes why a candidate was rejected.
type Reason string

const (
	// ReasonSpanTooLong means the candidate's own span is 24h or longer.
	// The candidate is rejected before any comparison against existing shifts.
	ReasonSpanTooLong Reason = "span_too_long"

	// ReasonSpanInverted means the candidate ends at or before it starts.
	ReasonSpanInverted Reason = "span_inverted"

	// ReasonOverlap means the candidate intersects at least one existing shift.
	ReasonOverlap Reason = "overlap"
)

// Result is the outcome of checking a candidate against existing shifts.
//
// Conflicts holds the COMPLETE set of existing intervals the candidate
// intersects, in the order they were supplied, so callers can report
// every conflicting date rather than just the first.
type Result struct {
	Valid     bool
	Reason    Reason
	Conflicts []ShiftInterval
}

// Check validates a candidate shift against all committed shifts.
//
// The candidate's own span is validated first: spans of 24h or more, or
// inverted spans, are rejected without comparing to existing shifts.
// Otherwise the candidate conflicts with an existing interval E iff
// candidate.Start < E.End && E.Start < candidate.End (half-open
// intersection - touching boundaries are legal).
//
// Pure and total: there is no failure mode beyond an invalid Result.
func Check(candidate ShiftInterval, existing []ShiftInterval) Result {
	if !candidate.End.After(candidate.Start) {
		return Result{Reason: ReasonSpanInverted}
	}
	if candidate.Span() >= MaxSpan {
		return Result{Reason: ReasonSpanTooLong}
	}

	var conflicts []ShiftInterval
	for _, e := range existing {
		if Overlaps(candidate, e) {
			conflicts = append(conflicts, e)
		}
	}
	if len(conflicts) > 0 {
		return Result{Reason: ReasonOverlap, Conflicts: conflicts}
	}
	return Result{Valid: true}
}
