package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"flightcast/apperr"
	"flightcast/database"

	"github.com/charmbracelet/log"
)

// ExchangeRateKey is the durable cache key of the EUR→USD rate.
const ExchangeRateKey = "exchangeRate"

type ExchangeClient struct {
	url        string
	httpClient *http.Client
}

func NewExchangeClient(url string, timeout time.Duration) *ExchangeClient {
	return &ExchangeClient{url: url, httpClient: &http.Client{Timeout: timeout}}
}

type exchangeResponse struct {
	Rates struct {
		USD float64 `json:"USD"`
	} `json:"rates"`
}

// USDRate fetches how many US dollars one unit of the base currency buys.
func (c *ExchangeClient) USDRate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperr.Network("failed to fetch exchange rate", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return 0, apperr.Network(fmt.Sprintf("exchange rate returned status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var result exchangeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, apperr.Parse("failed to parse exchange rate", err)
	}
	if result.Rates.USD <= 0 {
		return 0, apperr.Parse("exchange rate has no USD rate", nil)
	}
	return result.Rates.USD, nil
}

// RateService caches the USD rate durably under ExchangeRateKey.
type RateService struct {
	client *ExchangeClient
	cache  *database.Cache
	logger *log.Logger
}

func NewRateService(client *ExchangeClient, cache *database.Cache, logger *log.Logger) *RateService {
	return &RateService{client: client, cache: cache, logger: logger.WithPrefix("exchange")}
}

// USDRate returns the cached rate, fetching it on first use.
func (s *RateService) USDRate(ctx context.Context) (float64, error) {
	var rate float64
	ok, err := s.cache.GetJSON(ctx, ExchangeRateKey, &rate)
	if err != nil {
		s.logger.Warn("cache read failed", "err", err)
	}
	if ok && rate > 0 {
		return rate, nil
	}

	rate, err = s.client.USDRate(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.cache.PutJSON(ctx, ExchangeRateKey, rate); err != nil {
		s.logger.Error("failed to cache exchange rate", "err", err)
	}
	return rate, nil
}

// ToUSD converts amount with the current rate.
func (s *RateService) ToUSD(ctx context.Context, amount float64) (float64, error) {
	rate, err := s.USDRate(ctx)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}
