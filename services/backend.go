package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"flightcast/apperr"
	"flightcast/models"
)

// BackendClient calls the web backend's save and delete endpoints.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	return &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SaveFlightRequest is the body of POST /save_flight.
type SaveFlightRequest struct {
	FlightID      string `json:"flight_id"`
	NumStopsValue int    `json:"numStopsValue"`
	DurationValue string `json:"durationValue"`
	PriceValue    string `json:"priceValue"`
}

// SaveRequestFor builds the save payload for a flight the way the results page does.
func SaveRequestFor(f models.Flight) SaveFlightRequest {
	return SaveFlightRequest{
		FlightID:      f.ID,
		NumStopsValue: f.Stops,
		DurationValue: f.RawDuration,
		PriceValue:    strconv.FormatFloat(f.Price, 'f', 2, 64),
	}
}

type backendResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *BackendClient) SaveFlight(ctx context.Context, req SaveFlightRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	return c.do(ctx, http.MethodPost, "/save_flight", body)
}

func (c *BackendClient) DeleteFlight(ctx context.Context, id string) (string, error) {
	return c.do(ctx, http.MethodDelete, "/flight/"+url.PathEscape(id), nil)
}

func (c *BackendClient) do(ctx context.Context, method, path string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Network(method+" "+path+" failed", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperr.Network(fmt.Sprintf("backend error (%d): %s", resp.StatusCode, string(respBody)), nil)
	}

	var result backendResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", apperr.Parse("failed to parse backend response", err)
	}
	if result.Status != "success" {
		return "", fmt.Errorf("backend refused %s %s: %s", method, path, result.Message)
	}
	return result.Message, nil
}
