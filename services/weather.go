package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flightcast/apperr"
	"flightcast/database"
	"flightcast/models"

	"github.com/charmbracelet/log"
)

// API Docs: https://www.visualcrossing.com/resources/documentation/weather-api/timeline-weather-api/
// Sample request: {base}/47.44,-122.3/2025-06-01/2025-06-05?unitGroup=us&include=days&contentType=json&key=KEY
type WeatherClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewWeatherClient(baseURL string, timeout time.Duration) *WeatherClient {
	return &WeatherClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type weatherAPIResponse struct {
	Days []models.WeatherDay `json:"days"`
}

// GetDays fetches daily weather for coords ("lat,long") from start to end inclusive.
func (c *WeatherClient) GetDays(ctx context.Context, coords, start, end, key string) ([]models.WeatherDay, error) {
	q := url.Values{}
	q.Set("unitGroup", "us")
	q.Set("include", "days")
	q.Set("contentType", "json")
	q.Set("key", key)
	u := fmt.Sprintf("%s/%s/%s/%s?%s", c.baseURL, coords, start, end, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Network("failed to fetch weather", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, apperr.Network(fmt.Sprintf("weather returned status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var apiResp weatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, apperr.Parse("failed to decode weather response", err)
	}
	return apiResp.Days, nil
}

// ─── Weather Service ──────────────────────────────────────────────────────────

// WeatherCacheKey is the durable cache key for a forecast.
func WeatherCacheKey(coords, start, end string) string {
	return fmt.Sprintf("weather-%s-%s-%s", coords, start, end)
}

// WeatherService is a read-through cache over WeatherClient. Fetch failures
// propagate to the caller; cache write failures are only logged.
type WeatherService struct {
	client *WeatherClient
	tokens TokenSource
	cache  *database.Cache
	logger *log.Logger
}

func NewWeatherService(client *WeatherClient, tokens TokenSource, cache *database.Cache, logger *log.Logger) *WeatherService {
	return &WeatherService{
		client: client,
		tokens: tokens,
		cache:  cache,
		logger: logger.WithPrefix("weather"),
	}
}

// Forecast returns the forecast for lat/long over [start, end], from the cache when possible.
func (s *WeatherService) Forecast(ctx context.Context, lat, long float64, start, end string) (*models.Forecast, error) {
	coords := models.FormatCoordinates(lat, long)
	key := WeatherCacheKey(coords, start, end)

	var cached models.Forecast
	ok, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("cache read failed", "key", key, "err", err)
	}
	if ok {
		s.logger.Debug("cache hit", "key", key)
		return &cached, nil
	}

	creds, err := s.tokens.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("weather auth failed: %w", err)
	}

	days, err := s.client.GetDays(ctx, coords, start, end, creds.WeatherToken)
	if err != nil {
		return nil, err
	}

	forecast := &models.Forecast{Coordinates: coords, Start: start, End: end, Days: days}
	if err := s.cache.PutJSON(ctx, key, forecast); err != nil {
		s.logger.Error("failed to cache forecast", "key", key, "err", err)
	}
	return forecast, nil
}

// Cached returns a previously stashed forecast without touching the network.
func (s *WeatherService) Cached(ctx context.Context, lat, long float64, start, end string) (*models.Forecast, bool) {
	key := WeatherCacheKey(models.FormatCoordinates(lat, long), start, end)
	var cached models.Forecast
	ok, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil || !ok {
		return nil, false
	}
	return &cached, true
}
