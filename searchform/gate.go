// Package searchform checks a flight search before it is sent and hands it to the
// flight search once every rule passes.
package searchform

import (
	"context"
	"strings"
	"sync"
	"time"

	"flightcast/apperr"
	"flightcast/autocomplete"
	"flightcast/models"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// LocationField is one autocompleted location input.
type LocationField interface {
	Field() string
	Resolve(ctx context.Context) (models.SelectedLocation, error)
	Snapshot() (autocomplete.Snapshot, error)
	Reset() error
}

// Notifier shows transient feedback next to the form.
type Notifier interface {
	Flash(message string)
	Loading(message string)
}

// Submitter runs the flight search for a validated form.
type Submitter interface {
	SearchFlights(ctx context.Context, search models.FlightSearch) ([]models.Flight, error)
}

// WeatherFetcher fetches and durably caches the destination forecast.
type WeatherFetcher interface {
	Forecast(ctx context.Context, lat, long float64, start, end string) (*models.Forecast, error)
}

// Form holds the plain inputs next to the two location fields.
type Form struct {
	DepartDate string
	ReturnDate string
	Passengers string
}

// Result is a submitted search and what it found.
type Result struct {
	Search  models.FlightSearch
	Flights []models.Flight
}

type Options struct {
	Locale string
	Now    func() time.Time
	Logger *log.Logger
	// StashTimeout bounds the background weather fetch after a submit.
	StashTimeout time.Duration
}

// Gate validates and submits the search form.
type Gate struct {
	origin      LocationField
	destination LocationField
	submitter   Submitter
	weather     WeatherFetcher
	notifier    Notifier
	messages    Messages
	now         func() time.Time
	logger      *log.Logger
	stashWait   time.Duration
	wg          sync.WaitGroup
}

func NewGate(origin, destination LocationField, submitter Submitter, weather WeatherFetcher, notifier Notifier, opts Options) *Gate {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.StashTimeout <= 0 {
		opts.StashTimeout = 30 * time.Second
	}
	return &Gate{
		origin:      origin,
		destination: destination,
		submitter:   submitter,
		weather:     weather,
		notifier:    notifier,
		messages:    NewMessages(opts.Locale),
		now:         opts.Now,
		logger:      opts.Logger.WithPrefix("searchform"),
		stashWait:   opts.StashTimeout,
	}
}

// Submit resolves both locations, checks the form and runs the search. A rule
// failure is shown through the Notifier and returned as a validation error; the
// fields keep their values. On success both fields are reset and the
// destination forecast is fetched in the background.
func (g *Gate) Submit(ctx context.Context, form Form) (*Result, error) {
	var origin, destination models.SelectedLocation
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		origin, err = g.origin.Resolve(egCtx)
		return err
	})
	eg.Go(func() error {
		var err error
		destination, err = g.destination.Resolve(egCtx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	originText, err := fieldText(g.origin)
	if err != nil {
		return nil, err
	}
	destinationText, err := fieldText(g.destination)
	if err != nil {
		return nil, err
	}

	search, verr := g.check(origin, destination, originText, destinationText, form)
	if verr != nil {
		g.notifier.Flash(verr.Message)
		g.logger.Debug("search rejected", "field", verr.Field, "reason", verr.Message)
		return nil, verr
	}

	g.notifier.Loading(g.messages.Loading())
	flights, err := g.submitter.SearchFlights(ctx, search)
	if err != nil {
		return nil, err
	}

	for _, f := range []LocationField{g.origin, g.destination} {
		if err := f.Reset(); err != nil {
			g.logger.Warn("failed to reset field", "field", f.Field(), "err", err)
		}
	}

	g.stashWeather(ctx, search)
	return &Result{Search: search, Flights: flights}, nil
}

// check applies the form rules in order and stops at the first failure.
func (g *Gate) check(origin, destination models.SelectedLocation, originText, destinationText string, form Form) (models.FlightSearch, *apperr.Error) {
	m := g.messages
	switch {
	case !origin.Confirmed:
		return models.FlightSearch{}, apperr.Validation(g.origin.Field(), m.NotFound(true))
	case !destination.Confirmed:
		return models.FlightSearch{}, apperr.Validation(g.destination.Field(), m.NotFound(false))
	case origin.IATACode == destination.IATACode:
		return models.FlightSearch{}, apperr.Validation(g.destination.Field(), m.SameLocation())
	case !validPlaceText(originText):
		return models.FlightSearch{}, apperr.Validation(g.origin.Field(), m.InvalidText(true))
	case !validPlaceText(destinationText):
		return models.FlightSearch{}, apperr.Validation(g.destination.Field(), m.InvalidText(false))
	case !validDate(form.DepartDate):
		return models.FlightSearch{}, apperr.Validation("depart_date", m.InvalidDate())
	case !validDate(form.ReturnDate):
		return models.FlightSearch{}, apperr.Validation("return_date", m.InvalidDate())
	case !afterToday(form.DepartDate, g.now()):
		return models.FlightSearch{}, apperr.Validation("depart_date", m.PastDate())
	case !dateAfter(form.ReturnDate, form.DepartDate):
		return models.FlightSearch{}, apperr.Validation("return_date", m.ReturnNotAfter())
	}

	passengers, ok := parsePassengers(form.Passengers)
	if !ok {
		return models.FlightSearch{}, apperr.Validation("passengers", m.Passengers())
	}

	return models.FlightSearch{
		Origin:      origin,
		Destination: destination,
		DepartDate:  form.DepartDate,
		ReturnDate:  form.ReturnDate,
		Passengers:  passengers,
	}, nil
}

// stashWeather caches the destination forecast for the results page. It
// outlives ctx's cancellation but not the stash timeout.
func (g *Gate) stashWeather(ctx context.Context, search models.FlightSearch) {
	if g.weather == nil {
		return
	}
	dest := search.Destination

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		stashCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.stashWait)
		defer cancel()

		if _, err := g.weather.Forecast(stashCtx, dest.Latitude, dest.Longitude, search.DepartDate, search.ReturnDate); err != nil {
			g.logger.Error("failed to stash weather", "coordinates", dest.Coordinates(), "err", err)
			return
		}
		g.logger.Debug("weather stashed", "coordinates", dest.Coordinates())
	}()
}

// Wait blocks until background weather fetches have finished.
func (g *Gate) Wait() {
	g.wg.Wait()
}

func fieldText(f LocationField) (string, error) {
	snap, err := f.Snapshot()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(snap.Value), nil
}
