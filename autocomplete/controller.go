// Package autocomplete drives one location input: it debounces keystrokes, asks
// a Suggester for candidates, shows them through a View and resolves the text to
// a SelectedLocation when the form is submitted.
package autocomplete

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"flightcast/models"

	"github.com/charmbracelet/log"
)

const (
	DefaultDebounce  = 700 * time.Millisecond
	DefaultBlurGrace = 200 * time.Millisecond

	minQueryLength = 3
)

var (
	// ErrClosed is returned once the controller's loop has stopped.
	ErrClosed = errors.New("autocomplete: controller closed")
	// ErrNoSuchSuggestion is returned by Select for an index outside the rendered list.
	ErrNoSuchSuggestion = errors.New("autocomplete: no such suggestion")
)

// Suggester returns candidates for a query. It never fails; an empty slice means
// nothing was found.
type Suggester interface {
	Suggest(ctx context.Context, query string) []models.LocationCandidate
}

// View renders a controller's output. Its methods are called from the
// controller's loop goroutine only.
type View interface {
	ShowSuggestions(candidates []models.LocationCandidate)
	HideSuggestions()
	BindLocation(loc models.SelectedLocation)
}

type Options struct {
	Debounce  time.Duration
	BlurGrace time.Duration
	Clock     Clock
	Logger    *log.Logger
}

// Controller owns the state of one input field. All state lives on the loop
// goroutine started by Run; every exported method is a message to that loop.
type Controller struct {
	field     string
	suggester Suggester
	view      View
	clock     Clock
	debounce  time.Duration
	grace     time.Duration
	logger    *log.Logger

	events chan envelope
	done   chan struct{}

	// owned by the loop
	ctx          context.Context
	state        State
	value        string
	focused      bool
	inside       bool
	visible      bool
	rendered     []models.LocationCandidate
	binding      models.SelectedLocation
	bound        bool
	stale        int
	debounceGen  uint64
	debounceStop Timer
	graceGen     uint64
	graceStop    Timer
}

func NewController(field string, suggester Suggester, view View, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.BlurGrace <= 0 {
		opts.BlurGrace = DefaultBlurGrace
	}
	if opts.Clock == nil {
		opts.Clock = RealClock
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if view == nil {
		view = nopView{}
	}
	return &Controller{
		field:     field,
		suggester: suggester,
		view:      view,
		clock:     opts.Clock,
		debounce:  opts.Debounce,
		grace:     opts.BlurGrace,
		logger:    opts.Logger.With("field", field),
		events:    make(chan envelope),
		done:      make(chan struct{}),
		state:     Idle,
	}
}

// Field is the name the controller was created with.
func (c *Controller) Field() string { return c.field }

// Run processes events until ctx is cancelled. Suggestion fetches started by the
// loop use ctx as well.
func (c *Controller) Run(ctx context.Context) {
	c.ctx = ctx
	defer close(c.done)
	defer c.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return
		case env := <-c.events:
			c.handle(env.ev)
			if env.handled != nil {
				close(env.handled)
			}
		}
	}
}

// Done is closed after Run returns.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Input records new field text and restarts the debounce window.
func (c *Controller) Input(value string) error { return c.dispatch(context.Background(), &inputEvent{value: value}) }

// Focus marks the field as focused; a rendered list becomes visible again.
func (c *Controller) Focus() error { return c.dispatch(context.Background(), &focusEvent{}) }

// Blur starts the grace period after which the list is hidden.
func (c *Controller) Blur() error { return c.dispatch(context.Background(), &blurEvent{}) }

// Reset clears text, binding, list and timers.
func (c *Controller) Reset() error { return c.dispatch(context.Background(), &resetEvent{}) }

// Select binds the i-th rendered suggestion, as a click on it would.
func (c *Controller) Select(i int) (models.SelectedLocation, error) {
	ev := &selectEvent{index: i}
	if err := c.dispatch(context.Background(), ev); err != nil {
		return models.SelectedLocation{}, err
	}
	return ev.loc, ev.err
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() (Snapshot, error) {
	ev := &snapshotEvent{}
	if err := c.dispatch(context.Background(), ev); err != nil {
		return Snapshot{}, err
	}
	return ev.snap, nil
}

// Resolve binds the field for submission. Text that matches a rendered
// suggestion, or is too short to search for, binds at once. Anything else waits
// for a fresh lookup: a match binds confirmed, otherwise the raw text binds
// unconfirmed.
func (c *Controller) Resolve(ctx context.Context) (models.SelectedLocation, error) {
	begin := &resolveBegin{}
	if err := c.dispatch(ctx, begin); err != nil {
		return models.SelectedLocation{}, err
	}
	if begin.done {
		return begin.loc, nil
	}

	candidates := c.suggester.Suggest(ctx, begin.query)
	if err := ctx.Err(); err != nil {
		_ = c.dispatch(context.Background(), &resolveEnd{query: begin.query, aborted: true})
		return models.SelectedLocation{}, err
	}

	end := &resolveEnd{query: begin.query, candidates: candidates}
	if err := c.dispatch(ctx, end); err != nil {
		return models.SelectedLocation{}, err
	}
	return end.loc, nil
}

// dispatch posts ev and waits until the loop has handled it.
func (c *Controller) dispatch(ctx context.Context, ev event) error {
	handled := make(chan struct{})
	select {
	case c.events <- envelope{ev: ev, handled: handled}:
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-handled:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// post queues ev from a timer or fetch goroutine without waiting for it.
func (c *Controller) post(ev event) {
	select {
	case c.events <- envelope{ev: ev}:
	case <-c.done:
	}
}

func (c *Controller) handle(ev event) {
	switch ev := ev.(type) {
	case *inputEvent:
		c.onInput(ev.value)
	case *focusEvent:
		c.onFocus()
	case *blurEvent:
		c.onBlur()
	case debounceFired:
		c.onDebounceFired(ev.gen)
	case graceExpired:
		c.onGraceExpired(ev.gen)
	case suggestionsLoaded:
		c.onSuggestionsLoaded(ev.query, ev.candidates)
	case *selectEvent:
		ev.loc, ev.err = c.onSelect(ev.index)
	case *resolveBegin:
		c.onResolveBegin(ev)
	case *resolveEnd:
		if ev.aborted {
			c.onResolveAborted()
			break
		}
		ev.loc = c.onResolveEnd(ev.query, ev.candidates)
	case *resetEvent:
		c.onReset()
	case *snapshotEvent:
		ev.snap = c.snapshot()
	default:
		c.logger.Warn("unknown event", "type", ev)
	}
}

func (c *Controller) onInput(value string) {
	c.value = value
	c.bound = false
	c.binding = models.SelectedLocation{}
	c.state = PendingFetch
	c.armDebounce()
}

func (c *Controller) armDebounce() {
	c.cancelDebounce()
	gen := c.debounceGen
	c.debounceStop = c.clock.AfterFunc(c.debounce, func() {
		c.post(debounceFired{gen: gen})
	})
}

// cancelDebounce stops the pending timer. Bumping the generation also voids a
// timer that already fired but whose event is still queued.
func (c *Controller) cancelDebounce() {
	c.debounceGen++
	if c.debounceStop != nil {
		c.debounceStop.Stop()
		c.debounceStop = nil
	}
}

func (c *Controller) onDebounceFired(gen uint64) {
	if gen != c.debounceGen {
		return
	}
	c.debounceStop = nil

	// read the field now, not when the key was pressed
	query := strings.TrimSpace(c.value)
	c.logger.Debug("fetching suggestions", "query", query)

	ctx := c.ctx
	go func() {
		candidates := c.suggester.Suggest(ctx, query)
		c.post(suggestionsLoaded{query: query, candidates: candidates})
	}()
}

func (c *Controller) onSuggestionsLoaded(query string, candidates []models.LocationCandidate) {
	if query != strings.TrimSpace(c.value) {
		c.stale++
		c.logger.Debug("dropping stale suggestions", "query", query, "value", c.value)
		return
	}
	if c.state == Resolving {
		return
	}

	c.rendered = candidates
	if len(candidates) == 0 {
		c.state = Idle
		c.hide()
		return
	}
	c.state = ShowingSuggestions
	if c.inside {
		c.show()
	}
}

func (c *Controller) onFocus() {
	c.focused = true
	c.inside = true
	c.cancelGrace()
	if c.state == ShowingSuggestions && len(c.rendered) > 0 {
		c.show()
	}
}

func (c *Controller) onBlur() {
	c.focused = false
	c.cancelGrace()
	gen := c.graceGen
	c.graceStop = c.clock.AfterFunc(c.grace, func() {
		c.post(graceExpired{gen: gen})
	})
}

func (c *Controller) cancelGrace() {
	c.graceGen++
	if c.graceStop != nil {
		c.graceStop.Stop()
		c.graceStop = nil
	}
}

func (c *Controller) onGraceExpired(gen uint64) {
	if gen != c.graceGen {
		return
	}
	c.graceStop = nil
	if c.focused {
		return
	}
	c.inside = false
	c.hide()
}

func (c *Controller) onSelect(i int) (models.SelectedLocation, error) {
	if i < 0 || i >= len(c.rendered) {
		return models.SelectedLocation{}, ErrNoSuchSuggestion
	}
	candidate := c.rendered[i]
	c.cancelDebounce()
	c.value = candidate.Name
	c.bind(models.Select(candidate))
	c.hide()
	c.state = Idle
	return c.binding, nil
}

func (c *Controller) onResolveBegin(ev *resolveBegin) {
	text := strings.TrimSpace(c.value)

	if candidate, ok := models.MatchCandidate(c.rendered, text); ok {
		c.bind(models.Select(candidate))
		ev.loc, ev.done = c.binding, true
		return
	}
	if utf8.RuneCountInString(text) < minQueryLength {
		c.bind(models.Raw(text, true))
		ev.loc, ev.done = c.binding, true
		return
	}

	c.cancelDebounce()
	c.state = Resolving
	ev.query = text
}

func (c *Controller) onResolveEnd(query string, candidates []models.LocationCandidate) models.SelectedLocation {
	loc := models.Raw(query, false)
	if candidate, ok := models.MatchCandidate(candidates, query); ok {
		loc = models.Select(candidate)
	}

	// the field may have been edited while the lookup ran; that edit owns the binding
	if strings.TrimSpace(c.value) == query {
		c.bind(loc)
		c.hide()
		c.state = Idle
	}
	return loc
}

func (c *Controller) onResolveAborted() {
	if c.state == Resolving {
		c.state = Idle
	}
}

func (c *Controller) onReset() {
	c.cancelDebounce()
	c.cancelGrace()
	c.value = ""
	c.rendered = nil
	c.binding = models.SelectedLocation{}
	c.bound = false
	c.hide()
	c.state = Idle
}

func (c *Controller) bind(loc models.SelectedLocation) {
	c.binding = loc
	c.bound = true
	c.view.BindLocation(loc)
}

func (c *Controller) show() {
	c.visible = true
	c.view.ShowSuggestions(c.rendered)
}

func (c *Controller) hide() {
	if !c.visible {
		return
	}
	c.visible = false
	c.view.HideSuggestions()
}

func (c *Controller) stopTimers() {
	c.cancelDebounce()
	c.cancelGrace()
}

func (c *Controller) snapshot() Snapshot {
	return Snapshot{
		State:        c.state,
		Value:        c.value,
		Focused:      c.focused,
		Inside:       c.inside,
		Visible:      c.visible,
		Suggestions:  append([]models.LocationCandidate(nil), c.rendered...),
		Location:     c.binding,
		Bound:        c.bound,
		StaleDropped: c.stale,
	}
}

type nopView struct{}

func (nopView) ShowSuggestions([]models.LocationCandidate) {}
func (nopView) HideSuggestions()                           {}
func (nopView) BindLocation(models.SelectedLocation)       {}
