package portal

// SlotsKind distinguishes the three discovery outcomes. "No slots" is an
// explicit success-with-empty-result, never a failure.
type SlotsKind int

const (
	// SlotsFound means one or more bookable dates were discovered.
	SlotsFound SlotsKind = iota
	// SlotsNone means the portal reported (or implied) no availability.
	SlotsNone
	// SlotsFailed means discovery itself broke; Reason carries the cause.
	SlotsFailed
)

// SlotsResult is the tagged outcome of slot discovery.
type SlotsResult struct {
	Kind   SlotsKind
	Dates  []string
	Reason string
}

// FoundSlots builds a result carrying discovered date strings.
func FoundSlots(dates []string) SlotsResult {
	return SlotsResult{Kind: SlotsFound, Dates: dates}
}

// NoSlots builds the explicit empty-success result.
func NoSlots() SlotsResult {
	return SlotsResult{Kind: SlotsNone}
}

// FailedSlots builds a failure result with a human-readable reason.
func FailedSlots(reason string) SlotsResult {
	return SlotsResult{Kind: SlotsFailed, Reason: reason}
}

// Found reports whether bookable dates were discovered.
func (r SlotsResult) Found() bool { return r.Kind == SlotsFound }

// None reports the explicit no-availability outcome.
func (r SlotsResult) None() bool { return r.Kind == SlotsNone }

// Failed reports a genuine discovery failure.
func (r SlotsResult) Failed() bool { return r.Kind == SlotsFailed }
