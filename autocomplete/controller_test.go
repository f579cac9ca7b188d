package autocomplete

import (
	"context"
	"sync"
	"testing"
	"time"

	"flightcast/logger"
	"flightcast/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	paris = models.LocationCandidate{Name: "PARIS", IATACode: "PAR", Latitude: 48.85341, Longitude: 2.3488}
	cdg   = models.LocationCandidate{Name: "CHARLES DE GAULLE", IATACode: "CDG", Latitude: 49.01278, Longitude: 2.55}
	lhr   = models.LocationCandidate{Name: "HEATHROW", IATACode: "LHR", Latitude: 51.47, Longitude: -0.4543}
	lcy   = models.LocationCandidate{Name: "LONDON CITY", IATACode: "LCY", Latitude: 51.5048, Longitude: 0.0495}
)

type fakeSuggester struct {
	mu      sync.Mutex
	queries []string
	results map[string][]models.LocationCandidate
	gates   map[string]chan struct{}
}

func newFakeSuggester(results map[string][]models.LocationCandidate) *fakeSuggester {
	return &fakeSuggester{results: results, gates: map[string]chan struct{}{}}
}

// hold makes lookups for query block until release is called.
func (f *fakeSuggester) hold(query string) (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[query] = ch
	return func() { close(ch) }
}

func (f *fakeSuggester) Suggest(ctx context.Context, query string) []models.LocationCandidate {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	gate := f.gates[query]
	res := f.results[query]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return []models.LocationCandidate{}
		}
	}
	if res == nil {
		return []models.LocationCandidate{}
	}
	return res
}

func (f *fakeSuggester) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

type fakeView struct {
	mu    sync.Mutex
	shown [][]models.LocationCandidate
	hides int
	bound []models.SelectedLocation
}

func (v *fakeView) ShowSuggestions(c []models.LocationCandidate) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.shown = append(v.shown, c)
}

func (v *fakeView) HideSuggestions() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hides++
}

func (v *fakeView) BindLocation(loc models.SelectedLocation) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bound = append(v.bound, loc)
}

func (v *fakeView) lastShown() []models.LocationCandidate {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.shown) == 0 {
		return nil
	}
	return v.shown[len(v.shown)-1]
}

func (v *fakeView) showCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.shown)
}

type harness struct {
	ctrl  *Controller
	clock *fakeClock
	view  *fakeView
	sugg  *fakeSuggester
}

func newHarness(t *testing.T, sugg *fakeSuggester) *harness {
	t.Helper()
	h := &harness{clock: &fakeClock{}, view: &fakeView{}, sugg: sugg}
	h.ctrl = NewController("origin", sugg, h.view, Options{Clock: h.clock, Logger: logger.Discard()})

	ctx, cancel := context.WithCancel(context.Background())
	go h.ctrl.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.ctrl.Done()
	})
	return h
}

func (h *harness) snap(t *testing.T) Snapshot {
	t.Helper()
	s, err := h.ctrl.Snapshot()
	require.NoError(t, err)
	return s
}

func (h *harness) waitState(t *testing.T, want State) Snapshot {
	t.Helper()
	var last Snapshot
	require.Eventually(t, func() bool {
		last = h.snap(t)
		return last.State == want
	}, time.Second, 5*time.Millisecond, "state never became %s", want)
	return last
}

// loadSuggestions types query, lets the debounce fire and waits for the list.
func (h *harness) loadSuggestions(t *testing.T, query string) Snapshot {
	t.Helper()
	require.NoError(t, h.ctrl.Input(query))
	h.clock.Advance(DefaultDebounce)
	return h.waitState(t, ShowingSuggestions)
}

func TestController_OnlyLastInputIsDispatched(t *testing.T) {
	h := newHarness(t, newFakeSuggester(map[string][]models.LocationCandidate{"Paris": {paris, cdg}}))
	require.NoError(t, h.ctrl.Focus())

	require.NoError(t, h.ctrl.Input("Par"))
	h.clock.Advance(100 * time.Millisecond)
	require.NoError(t, h.ctrl.Input("Pari"))
	h.clock.Advance(200 * time.Millisecond)
	require.NoError(t, h.ctrl.Input("Paris"))
	assert.Equal(t, PendingFetch, h.snap(t).State)

	// 999ms after the first key, 699ms after the last
	h.clock.Advance(699 * time.Millisecond)
	assert.Empty(t, h.sugg.Queries())

	h.clock.Advance(time.Millisecond)
	s := h.waitState(t, ShowingSuggestions)
	assert.Equal(t, []string{"Paris"}, h.sugg.Queries())
	assert.Equal(t, []models.LocationCandidate{paris, cdg}, s.Suggestions)
	assert.True(t, s.Visible)
	assert.Equal(t, []models.LocationCandidate{paris, cdg}, h.view.lastShown())

	h.clock.Advance(5 * time.Second)
	assert.Equal(t, []string{"Paris"}, h.sugg.Queries())
	assert.Zero(t, h.clock.Pending())
}

func TestController_QueryIsTrimmedFieldValueAtFireTime(t *testing.T) {
	h := newHarness(t, newFakeSuggester(map[string][]models.LocationCandidate{"Lon": {lhr, lcy}}))
	require.NoError(t, h.ctrl.Focus())

	require.NoError(t, h.ctrl.Input("  Lon  "))
	h.clock.Advance(DefaultDebounce)
	s := h.waitState(t, ShowingSuggestions)

	assert.Equal(t, []string{"Lon"}, h.sugg.Queries())
	assert.Equal(t, "  Lon  ", s.Value)
}

func TestController_LateResponseForOlderQueryIsDropped(t *testing.T) {
	sugg := newFakeSuggester(map[string][]models.LocationCandidate{
		"Lon":  {lhr, lcy},
		"Lond": {lcy},
	})
	releaseLon := sugg.hold("Lon")
	releaseLond := sugg.hold("Lond")
	h := newHarness(t, sugg)
	require.NoError(t, h.ctrl.Focus())

	require.NoError(t, h.ctrl.Input("Lon"))
	h.clock.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(sugg.Queries()) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.ctrl.Input("Lond"))
	h.clock.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(sugg.Queries()) == 2 }, time.Second, 5*time.Millisecond)

	releaseLond()
	s := h.waitState(t, ShowingSuggestions)
	assert.Equal(t, []models.LocationCandidate{lcy}, s.Suggestions)

	releaseLon()
	require.Eventually(t, func() bool { return h.snap(t).StaleDropped == 1 }, time.Second, 5*time.Millisecond)

	s = h.snap(t)
	assert.Equal(t, []models.LocationCandidate{lcy}, s.Suggestions)
	assert.Equal(t, 1, h.view.showCount())
	assert.Equal(t, []models.LocationCandidate{lcy}, h.view.lastShown())
	assert.False(t, s.Bound)
}

func TestController_ResponseArrivingAfterEditIsDropped(t *testing.T) {
	sugg := newFakeSuggester(map[string][]models.LocationCandidate{"Ber": {{Name: "BERLIN", IATACode: "BER"}}})
	release := sugg.hold("Ber")
	h := newHarness(t, sugg)
	require.NoError(t, h.ctrl.Focus())

	require.NoError(t, h.ctrl.Input("Ber"))
	h.clock.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(sugg.Queries()) == 1 }, time.Second, 5*time.Millisecond)

	// typing again before the reply; the next debounce has not fired yet
	require.NoError(t, h.ctrl.Input("Bern"))
	release()
	require.Eventually(t, func() bool { return h.snap(t).StaleDropped == 1 }, time.Second, 5*time.Millisecond)

	s := h.snap(t)
	assert.Empty(t, s.Suggestions)
	assert.False(t, s.Visible)
	assert.Equal(t, PendingFetch, s.State)
	assert.Zero(t, h.view.showCount())
}

func TestController_EmptyResultGoesIdle(t *testing.T) {
	h := newHarness(t, newFakeSuggester(nil))
	require.NoError(t, h.ctrl.Focus())

	require.NoError(t, h.ctrl.Input("Xyzzy"))
	h.clock.Advance(DefaultDebounce)
	require.Eventually(t, func() bool { return len(h.sugg.Queries()) == 1 }, time.Second, 5*time.Millisecond)
	s := h.waitState(t, Idle)
	assert.False(t, s.Visible)
}

func TestController_BlurHidesAfterGrace(t *testing.T) {
	h := newHarness(t, newFakeSuggester(map[string][]models.LocationCandidate{"Par": {paris, cdg}}))
	require.NoError(t, h.ctrl.Focus())
	h.loadSuggestions(t, "Par")

	require.NoError(t, h.ctrl.Blur())
	h.clock.Advance(DefaultBlurGrace - time.Millisecond)
	s := h.snap(t)
	assert.True(t, s.Visible)
	assert.True(t, s.Inside)
	assert.False(t, s.Focused)

	h.clock.Advance(time.Millisecond)
	s = h.snap(t)
	assert.False(t, s.Visible)
	assert.False(t, s.Inside)

	require.NoError(t, h.ctrl.Focus())
	s = h.snap(t)
	assert.True(t, s.Visible)
	assert.Equal(t, 2, h.view.showCount())
}

func TestController_RefocusWithinGraceKeepsList(t *testing.T) {
	h := newHarness(t, newFakeSuggester(map[string][]models.LocationCandidate{"Par": {paris, cdg}}))
	require.NoError(t, h.ctrl.Focus())
	h.loadSuggestions(t, "Par")

	require.NoError(t, h.ctrl.Blur())
	h.clock.Advance(100 * time.Millisecond)
	require.NoError(t, h.ctrl.Focus())
	h.clock.Advance(time.Second)

	s := h.snap(t)
	assert.True(t, s.Visible)
	assert.True(t, s.Inside)
}

func TestController_ResultsWhileOutsideAreNotShown(t *testing.T) {
	h := newHarness(t, newFakeSuggester(map[string][]models.LocationCandidate{"Par": {paris}}))

	s := h.loadSuggestions(t, "Par")
	assert.False(t, s.Visible)
	assert.Zero(t, h.view.showCount())

	require.NoError(t, h.ctrl.Focus())
	assert.True(t, h.snap(t).Visible)
}

func TestController_SelectBindsCandidate(t *testing.T) {
	h := newHarness(t, newFakeSuggester(map[string][]models.LocationCandidate{"Par": {paris, cdg}}))
	require.NoError(t, h.ctrl.Focus())
	h.loadSuggestions(t, "Par")

	// clicking an item blurs the input first
	require.NoError(t, h.ctrl.Blur())
	loc, err := h.ctrl.Select(1)
	require.NoError(t, err)

	want := models.SelectedLocation{Name: "CHARLES DE GAULLE", IATACode: "CDG", Latitude: 49.01278, Longitude: 2.55, Confirmed: true}
	assert.Equal(t, want, loc)

	s := h.snap(t)
	assert.Equal(t, "CHARLES DE GAULLE", s.Value)
	assert.Equal(t, want, s.Location)
	assert.True(t, s.Bound)
	assert.False(t, s.Visible)
	assert.Equal(t, Idle, s.State)
	assert.Equal(t, []models.SelectedLocation{want}, h.view.bound)

	_, err = h.ctrl.Select(7)
	assert.ErrorIs(t, err, ErrNoSuchSuggestion)
}

func TestController_SelectCancelsPendingDebounce(t *testing.T) {
	h := newHarness(t, newFakeSuggester(map[string][]models.LocationCandidate{"Par": {paris, cdg}}))
	require.NoError(t, h.ctrl.Focus())
	h.loadSuggestions(t, "Par")

	require.NoError(t, h.ctrl.Input("Pari"))
	_, err := h.ctrl.Select(0)
	require.NoError(t, err)
	assert.Zero(t, h.clock.Pending())

	h.clock.Advance(time.Second)
	assert.Equal(t, []string{"Par"}, h.sugg.Queries())
	assert.Equal(t, "PARIS", h.snap(t).Value)
}

func TestController_NewInputClearsBinding(t *testing.T) {
	h := newHarness(t, newFakeSuggester(map[string][]models.LocationCandidate{"Par": {paris}}))
	require.NoError(t, h.ctrl.Focus())
	h.loadSuggestions(t, "Par")
	_, err := h.ctrl.Select(0)
	require.NoError(t, err)

	require.NoError(t, h.ctrl.Input("PARIS X"))
	s := h.snap(t)
	assert.False(t, s.Bound)
	assert.Equal(t, models.SelectedLocation{}, s.Location)
}

func TestController_Resolve(t *testing.T) {
	results := map[string][]models.LocationCandidate{
		"CDG":    {cdg},
		"London": {lhr, {Name: "London", IATACode: "LON", Latitude: 51.50853, Longitude: -0.12574}},
		"Paris":  {paris},
	}

	tests := []struct {
		name        string
		prepare     func(t *testing.T, h *harness)
		input       string
		want        models.SelectedLocation
		wantQueries []string
	}{
		{
			name: "matches rendered suggestion by code",
			prepare: func(t *testing.T, h *harness) {
				h.loadSuggestions(t, "CDG")
			},
			want:        models.Select(cdg),
			wantQueries: []string{"CDG"},
		},
		{
			name: "matches rendered suggestion by name",
			prepare: func(t *testing.T, h *harness) {
				h.loadSuggestions(t, "Paris")
				require.NoError(t, h.ctrl.Input("PARIS"))
			},
			want:        models.Select(paris),
			wantQueries: []string{"Paris"},
		},
		{
			name:        "short text is accepted as a code",
			input:       "NY",
			want:        models.SelectedLocation{Name: "NY", IATACode: "NY", Confirmed: true},
			wantQueries: nil,
		},
		{
			name:        "empty text is accepted",
			input:       "   ",
			want:        models.SelectedLocation{Confirmed: true},
			wantQueries: nil,
		},
		{
			name:        "fresh lookup finds a match",
			input:       "London",
			want:        models.SelectedLocation{Name: "London", IATACode: "LON", Latitude: 51.50853, Longitude: -0.12574, Confirmed: true},
			wantQueries: []string{"London"},
		},
		{
			name:        "no match binds raw text unconfirmed",
			input:       "Atlantis",
			want:        models.SelectedLocation{Name: "Atlantis", IATACode: "Atlantis"},
			wantQueries: []string{"Atlantis"},
		},
		{
			name:        "lookup results must match exactly",
			input:       "paris",
			want:        models.SelectedLocation{Name: "paris", IATACode: "paris"},
			wantQueries: []string{"paris"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, newFakeSuggester(results))
			require.NoError(t, h.ctrl.Focus())
			if tt.prepare != nil {
				tt.prepare(t, h)
			}
			if tt.input != "" {
				require.NoError(t, h.ctrl.Input(tt.input))
			}

			got, err := h.ctrl.Resolve(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantQueries, h.sugg.Queries())

			s := h.snap(t)
			assert.True(t, s.Bound)
			assert.Equal(t, tt.want, s.Location)
		})
	}
}

func TestController_ResolveCancelsPendingDebounce(t *testing.T) {
	h := newHarness(t, newFakeSuggester(map[string][]models.LocationCandidate{"Madrid": {{Name: "Madrid", IATACode: "MAD"}}}))
	require.NoError(t, h.ctrl.Input("Madrid"))

	_, err := h.ctrl.Resolve(context.Background())
	require.NoError(t, err)
	assert.Zero(t, h.clock.Pending())

	h.clock.Advance(time.Second)
	assert.Equal(t, []string{"Madrid"}, h.sugg.Queries())
	assert.Equal(t, Idle, h.snap(t).State)
}

func TestController_Reset(t *testing.T) {
	h := newHarness(t, newFakeSuggester(map[string][]models.LocationCandidate{"Par": {paris}}))
	require.NoError(t, h.ctrl.Focus())
	h.loadSuggestions(t, "Par")
	_, err := h.ctrl.Select(0)
	require.NoError(t, err)
	require.NoError(t, h.ctrl.Input("Rome"))

	require.NoError(t, h.ctrl.Reset())
	s := h.snap(t)
	assert.Equal(t, Idle, s.State)
	assert.Empty(t, s.Value)
	assert.Empty(t, s.Suggestions)
	assert.False(t, s.Bound)
	assert.False(t, s.Visible)
	assert.Zero(t, h.clock.Pending())
}

func TestController_ClosedLoopRejectsEvents(t *testing.T) {
	ctrl := NewController("destination", newFakeSuggester(nil), nil, Options{Clock: &fakeClock{}, Logger: logger.Discard()})
	ctx, cancel := context.WithCancel(context.Background())
	go ctrl.Run(ctx)
	cancel()
	<-ctrl.Done()

	assert.ErrorIs(t, ctrl.Input("x"), ErrClosed)
	_, err := ctrl.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "pending-fetch", PendingFetch.String())
	assert.Equal(t, "showing-suggestions", ShowingSuggestions.String())
	assert.Equal(t, "resolving", Resolving.String())
}

func TestController_CancelledResolveLeavesFieldUnbound(t *testing.T) {
	sugg := newFakeSuggester(map[string][]models.LocationCandidate{"Oslo": {{Name: "Oslo", IATACode: "OSL"}}})
	sugg.hold("Oslo")
	h := newHarness(t, sugg)
	require.NoError(t, h.ctrl.Input("Oslo"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		assert.Eventually(t, func() bool { return len(sugg.Queries()) == 1 }, time.Second, 5*time.Millisecond)
		cancel()
	}()

	_, err := h.ctrl.Resolve(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	s := h.snap(t)
	assert.Equal(t, Idle, s.State)
	assert.False(t, s.Bound)
}
