// Package database holds the durable key-value cache behind weather and exchange
// rate lookups. It plays the role browser local storage has for the web page:
// string keys, string values, a bounded amount of space, and clear-all as the only
// way to make room.
package database

import (
	"context"
	"errors"
	"fmt"
	"io"

	"flightcast/config"

	"github.com/charmbracelet/log"
)

// ErrQuotaExceeded is returned (wrapped in an apperr quota error) when a write does not fit.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Store is a durable string key-value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes key. A write that does not fit fails with ErrQuotaExceeded.
	Set(ctx context.Context, key, value string) error
	// Clear removes every entry the store owns.
	Clear(ctx context.Context) error
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the store selected by cfg.Store.Driver. The returned closer releases
// connections held by the store.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (Store, io.Closer, error) {
	switch cfg.Store.Driver {
	case "memory":
		return NewMemoryStore(cfg.Store.QuotaBytes), nopCloser{}, nil
	case "redis":
		s, err := NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "postgres":
		s, err := OpenPostgresStore(ctx, cfg.Postgres.DSN, cfg.Store.QuotaBytes, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
