package autocomplete

import "flightcast/models"

// State is where a controller is in its suggestion cycle.
type State int

const (
	Idle State = iota
	PendingFetch
	ShowingSuggestions
	Resolving
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingFetch:
		return "pending-fetch"
	case ShowingSuggestions:
		return "showing-suggestions"
	case Resolving:
		return "resolving"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only copy of a controller's state.
type Snapshot struct {
	State       State
	Value       string
	Focused     bool
	Inside      bool
	Visible     bool
	Suggestions []models.LocationCandidate
	Location    models.SelectedLocation
	Bound       bool
	// StaleDropped counts suggestion results discarded because the field changed.
	StaleDropped int
}
