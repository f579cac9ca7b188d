package services

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"flightcast/apperr"
	"flightcast/database"
	"flightcast/logger"
	"flightcast/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weatherJSON = `{"latitude":48.85,"days":[
 {"datetime":"2030-06-01","temp":71.2,"tempmax":78.1,"tempmin":60.4,"conditions":"Partially cloudy","icon":"partly-cloudy-day"},
 {"datetime":"2030-06-02","temp":68.0,"tempmax":72.0,"tempmin":61.0,"conditions":"Rain","icon":"rain"}
]}`

func newWeatherUpstream(t *testing.T, hits *atomic.Int32, status int) string {
	return newUpstream(t, func(r *gin.Engine) {
		r.GET("/:coords/:start/:end", func(c *gin.Context) {
			hits.Add(1)
			if c.Query("key") != "wx" || c.Query("include") != "days" || c.Param("coords") != "48.85,2.35" {
				c.Status(http.StatusBadRequest)
				return
			}
			c.Data(status, "application/json", []byte(weatherJSON))
		})
	}).URL
}

func TestWeatherService_ReadThrough(t *testing.T) {
	var hits atomic.Int32
	base := newWeatherUpstream(t, &hits, http.StatusOK)

	store := database.NewMemoryStore(1 << 20)
	svc := NewWeatherService(
		NewWeatherClient(base, time.Second),
		&staticTokens{creds: Credentials{Token: "t", WeatherToken: "wx"}},
		database.NewCache(store, logger.Discard()),
		logger.Discard(),
	)
	ctx := context.Background()

	first, err := svc.Forecast(ctx, 48.85, 2.35, "2030-06-01", "2030-06-02")
	require.NoError(t, err)
	require.Len(t, first.Days, 2)
	assert.Equal(t, "Rain", first.Days[1].Conditions)
	assert.Equal(t, 78.1, first.Days[0].TempMax)

	second, err := svc.Forecast(ctx, 48.85, 2.35, "2030-06-01", "2030-06-02")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, hits.Load())

	_, ok, err := store.Get(ctx, "weather-48.85,2.35-2030-06-01-2030-06-02")
	require.NoError(t, err)
	assert.True(t, ok)

	cached, ok := svc.Cached(ctx, 48.85, 2.35, "2030-06-01", "2030-06-02")
	require.True(t, ok)
	assert.Equal(t, first.Days, cached.Days)
}

func TestWeatherService_FetchErrorPropagates(t *testing.T) {
	var hits atomic.Int32
	base := newWeatherUpstream(t, &hits, http.StatusTooManyRequests)

	store := database.NewMemoryStore(1 << 20)
	svc := NewWeatherService(
		NewWeatherClient(base, time.Second),
		&staticTokens{creds: Credentials{WeatherToken: "wx"}},
		database.NewCache(store, logger.Discard()),
		logger.Discard(),
	)

	_, err := svc.Forecast(context.Background(), 48.85, 2.35, "2030-06-01", "2030-06-02")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNetwork))
	assert.Zero(t, store.Used())
}

func TestWeatherService_TinyQuotaStillReturnsForecast(t *testing.T) {
	var hits atomic.Int32
	base := newWeatherUpstream(t, &hits, http.StatusOK)

	svc := NewWeatherService(
		NewWeatherClient(base, time.Second),
		&staticTokens{creds: Credentials{WeatherToken: "wx"}},
		database.NewCache(database.NewMemoryStore(16), logger.Discard()),
		logger.Discard(),
	)

	forecast, err := svc.Forecast(context.Background(), 48.85, 2.35, "2030-06-01", "2030-06-02")
	require.NoError(t, err)
	assert.Len(t, forecast.Days, 2)
}

func TestWeatherCacheKey(t *testing.T) {
	coords := models.FormatCoordinates(-33.8688, 151.2093)
	assert.Equal(t, "weather--33.8688,151.2093-2030-01-01-2030-01-05", WeatherCacheKey(coords, "2030-01-01", "2030-01-05"))
}
