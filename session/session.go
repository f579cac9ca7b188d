// Package session owns the state that lives as long as one search page: the
// session id, the auth token, the suggestion cache and the autocomplete
// controllers bound to its inputs.
package session

import (
	"context"
	"sync"

	"flightcast/autocomplete"
	"flightcast/config"
	"flightcast/services"
	"flightcast/suggest"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

type Options struct {
	Autocomplete autocomplete.Options
	Logger       *log.Logger
}

// Session is created when a search page opens and closed when it is left.
type Session struct {
	ID        string
	Tokens    services.TokenSource
	Suggester *suggest.Suggester
	Amadeus   *services.AmadeusClient

	acOpts autocomplete.Options
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	controllers []*autocomplete.Controller
	closed      bool
}

// New wires a session from configuration. Tokens come from the backend's /token
// endpoint when a backend URL is set and straight from Amadeus otherwise.
func New(cfg *config.Config, logger *log.Logger) *Session {
	var tokens services.TokenSource
	if cfg.UsesBackendTokens() {
		tokens = NewTokenProvider(services.NewBackendTokenSource(cfg.Backend.URL, cfg.Backend.Timeout))
	} else {
		tokens = services.NewAmadeusTokenSource(cfg.Amadeus.BaseURL, cfg.Amadeus.ClientID, cfg.Amadeus.ClientSecret, cfg.Weather.APIKey, cfg.Amadeus.Timeout)
	}
	amadeus := services.NewAmadeusClient(cfg.Amadeus.BaseURL, tokens, cfg.Amadeus.RPS, cfg.Amadeus.Timeout)

	s := NewWithSource(amadeus, tokens, Options{
		Autocomplete: autocomplete.Options{
			Debounce:  cfg.Autocomplete.Debounce,
			BlurGrace: cfg.Autocomplete.BlurGrace,
		},
		Logger: logger,
	})
	s.Amadeus = amadeus
	return s
}

// NewWithSource builds a session around any location source.
func NewWithSource(source suggest.LocationSource, tokens services.TokenSource, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	id := uuid.NewString()
	logger := opts.Logger.With("session", id[:8])
	if opts.Autocomplete.Logger == nil {
		opts.Autocomplete.Logger = logger
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:        id,
		Tokens:    tokens,
		Suggester: suggest.NewSuggester(source, suggest.NewCache(), logger),
		acOpts:    opts.Autocomplete,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
	logger.Debug("session opened")
	return s
}

// NewController binds a new autocomplete controller to the session and starts
// its loop. The loop stops when the session is closed.
func (s *Session) NewController(field string, view autocomplete.View) (*autocomplete.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, autocomplete.ErrClosed
	}

	c := autocomplete.NewController(field, s.Suggester, view, s.acOpts)
	s.controllers = append(s.controllers, c)
	go c.Run(s.ctx)
	return c, nil
}

// Close stops every controller and drops the session's cache. It is safe to
// call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	controllers := s.controllers
	s.mu.Unlock()

	s.cancel()
	for _, c := range controllers {
		<-c.Done()
	}
	s.logger.Debug("session closed", "cached_queries", s.Suggester.Cache().Len())
}
