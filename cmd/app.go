package cmd

import (
	"context"
	"io"

	"flightcast/database"
	"flightcast/services"
	"flightcast/session"

	"github.com/charmbracelet/log"
)

// app is everything one command invocation needs, built from cfg.
type app struct {
	session *session.Session
	store   io.Closer
	weather *services.WeatherService
	rates   *services.RateService
	backend *services.BackendClient
	log     *log.Logger
}

func newApp(ctx context.Context) (*app, error) {
	store, closer, err := database.Open(ctx, cfg, appLog.WithPrefix("store"))
	if err != nil {
		return nil, err
	}
	cache := database.NewCache(store, appLog.WithPrefix("cache"))

	sess := session.New(cfg, appLog)
	return &app{
		session: sess,
		store:   closer,
		weather: services.NewWeatherService(
			services.NewWeatherClient(cfg.Weather.BaseURL, cfg.Backend.Timeout),
			sess.Tokens, cache, appLog,
		),
		rates:   services.NewRateService(services.NewExchangeClient(cfg.Exchange.URL, cfg.Backend.Timeout), cache, appLog),
		backend: services.NewBackendClient(cfg.Backend.URL, cfg.Backend.Timeout),
		log:     appLog,
	}, nil
}

func (a *app) Close() {
	a.session.Close()
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close store", "err", err)
	}
}

// usdRate returns the EUR to USD rate, or 0 when it cannot be fetched. Prices
// then print in their own currency.
func (a *app) usdRate(ctx context.Context) float64 {
	rate, err := a.rates.USDRate(ctx)
	if err != nil {
		a.log.Warn("exchange rate unavailable", "err", err)
		return 0
	}
	return rate
}
