package booking

import "time"

// Status is a booking's lifecycle state.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusEnded     Status = "ended"
	StatusCancelled Status = "cancelled"
)

// ParseStatus reports whether s is one of the four known lifecycle states.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusUpcoming, StatusActive, StatusEnded, StatusCancelled:
		return Status(s), true
	default:
		return "", false
	}
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusUpcoming: {StatusActive: true, StatusCancelled: true},
	StatusActive:   {StatusEnded: true, StatusCancelled: true},
	// ended and cancelled are terminal
	StatusEnded:     {},
	StatusCancelled: {},
}

// CanTransition reports whether a booking may move from one state to
// another, either by time passing or by an explicit user action.
func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

// Resolve derives a booking's display status. An explicit status matching a
// known state wins verbatim; otherwise the status is derived from comparing
// now against the stored interval. The time fallback never yields cancelled,
// since cancellation is not derivable from timestamps. Zero (unparseable)
// timestamps fail both interval checks and resolve to ended.
func Resolve(explicit string, start, end, now time.Time) Status {
	if s, ok := ParseStatus(explicit); ok {
		return s
	}
	if now.Before(start) {
		return StatusUpcoming
	}
	if !now.Before(start) && !now.After(end) {
		return StatusActive
	}
	return StatusEnded
}

// DashboardLabel is the status as shown on the dashboard summary, where an
// ended booking reads "completed".
func (s Status) DashboardLabel() string {
	if s == StatusEnded {
		return "completed"
	}
	return string(s)
}
