package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"flightcast/apperr"
)

// Credentials authenticate the location search (Token) and the weather API (WeatherToken).
type Credentials struct {
	Token        string `json:"token"`
	WeatherToken string `json:"weather_token"`
}

// TokenSource hands out credentials for upstream calls.
type TokenSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// ─── Backend /token ───────────────────────────────────────────────────────────

// BackendTokenSource asks the web backend for tokens: GET /token.
type BackendTokenSource struct {
	baseURL    string
	httpClient *http.Client
}

func NewBackendTokenSource(baseURL string, timeout time.Duration) *BackendTokenSource {
	return &BackendTokenSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *BackendTokenSource) Credentials(ctx context.Context) (Credentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/token", nil)
	if err != nil {
		return Credentials{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Credentials{}, apperr.Network("token request failed", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return Credentials{}, apperr.Network(fmt.Sprintf("token request failed (%d): %s", resp.StatusCode, string(body)), nil)
	}

	var creds Credentials
	if err := json.Unmarshal(body, &creds); err != nil {
		return Credentials{}, apperr.Parse("failed to parse token response", err)
	}
	if creds.Token == "" {
		return Credentials{}, apperr.Parse("token response has no token", nil)
	}
	return creds, nil
}

// ─── Amadeus OAuth2 ───────────────────────────────────────────────────────────

// AmadeusTokenSource runs the client-credentials grant itself and refreshes the
// access token shortly before it expires. The weather key comes from config.
type AmadeusTokenSource struct {
	clientID     string
	clientSecret string
	baseURL      string
	weatherKey   string
	accessToken  string
	tokenExpiry  time.Time
	mu           sync.Mutex
	httpClient   *http.Client
	now          func() time.Time
}

func NewAmadeusTokenSource(baseURL, clientID, clientSecret, weatherKey string, timeout time.Duration) *AmadeusTokenSource {
	return &AmadeusTokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		weatherKey:   weatherKey,
		httpClient:   &http.Client{Timeout: timeout},
		now:          time.Now,
	}
}

func (s *AmadeusTokenSource) Credentials(ctx context.Context) (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken == "" || s.now().After(s.tokenExpiry) {
		if err := s.refreshToken(ctx); err != nil {
			return Credentials{}, err
		}
	}
	return Credentials{Token: s.accessToken, WeatherToken: s.weatherKey}, nil
}

// refreshToken must be called with s.mu held.
func (s *AmadeusTokenSource) refreshToken(ctx context.Context) error {
	if s.clientID == "" || s.clientSecret == "" {
		return apperr.New(apperr.KindNetwork, "amadeus client credentials not configured")
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperr.Network("token request failed", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return apperr.Network(fmt.Sprintf("token request failed (%d): %s", resp.StatusCode, string(body)), nil)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return apperr.Parse("failed to parse token response", err)
	}

	s.accessToken = result.AccessToken
	s.tokenExpiry = s.now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	return nil
}
