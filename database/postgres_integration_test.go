//go:build integration

package database

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"flightcast/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_Integration(t *testing.T) {
	dsn := os.Getenv("FLIGHTCAST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FLIGHTCAST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	s, err := OpenPostgresStore(ctx, dsn, 64, logger.Discard())
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Clear(ctx))

	require.NoError(t, s.Set(ctx, "exchangeRate", "1.08"))
	v, ok, err := s.Get(ctx, "exchangeRate")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.08", v)

	err = s.Set(ctx, "weather-big", strings.Repeat("x", 100))
	assert.True(t, errors.Is(err, ErrQuotaExceeded))

	require.NoError(t, s.Clear(ctx))
	_, ok, err = s.Get(ctx, "exchangeRate")
	require.NoError(t, err)
	assert.False(t, ok)
}
