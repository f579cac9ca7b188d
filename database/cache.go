package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// Cache stores JSON documents in a Store.
type Cache struct {
	store  Store
	logger *log.Logger
}

func NewCache(store Store, logger *log.Logger) *Cache {
	return &Cache{store: store, logger: logger}
}

// GetJSON decodes the entry for key into dst. A missing entry reports false.
// An entry that no longer decodes is treated as missing.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		c.logger.Warn("dropping undecodable cache entry", "key", key, "err", err)
		return false, nil
	}
	return true, nil
}

// PutJSON encodes v and writes it under key with PutWithRetry.
func (c *Cache) PutJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.PutWithRetry(ctx, key, string(data))
}

// PutWithRetry writes key. When the store is full it clears every entry and
// tries exactly once more; a second failure is logged and returned.
func (c *Cache) PutWithRetry(ctx context.Context, key, value string) error {
	err := c.store.Set(ctx, key, value)
	if err == nil || !errors.Is(err, ErrQuotaExceeded) {
		return err
	}

	c.logger.Warn("cache quota exceeded, clearing", "key", key)
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("failed to clear cache", "err", err)
		return err
	}

	if err := c.store.Set(ctx, key, value); err != nil {
		c.logger.Error("cache write failed after clearing", "key", key, "err", err)
		return err
	}
	return nil
}
