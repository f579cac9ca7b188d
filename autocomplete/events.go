package autocomplete

import "flightcast/models"

// event is one entry of the controller's queue. Public methods, timers and
// finished fetches all post events; the loop applies them one at a time.
type event any

type inputEvent struct{ value string }

type focusEvent struct{}

type blurEvent struct{}

type debounceFired struct{ gen uint64 }

type graceExpired struct{ gen uint64 }

type suggestionsLoaded struct {
	query      string
	candidates []models.LocationCandidate
}

type selectEvent struct {
	index int
	loc   models.SelectedLocation
	err   error
}

// resolveBegin decides whether the field can be bound from what is already known.
// When it cannot, query is set and the caller fetches before posting resolveEnd.
type resolveBegin struct {
	loc   models.SelectedLocation
	query string
	done  bool
}

type resolveEnd struct {
	query      string
	candidates []models.LocationCandidate
	aborted    bool
	loc        models.SelectedLocation
}

type resetEvent struct{}

type snapshotEvent struct{ snap Snapshot }

type envelope struct {
	ev      event
	handled chan struct{}
}
