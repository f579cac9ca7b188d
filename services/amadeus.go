package services

import (
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

	"golang.org/x/time/rate"
)

// ─── Amadeus Client ───────────────────────────────────────────────────────────

// AmadeusClient talks to the Amadeus self-service APIs with a bearer token from
// its TokenSource. Outbound calls share one rate limiter; the test environment
// allows 10 requests per second.
type AmadeusClient struct {
	baseURL    string
	tokens     TokenSource
	limiter    *rate.Limiter
	httpClient *http.Client
}

func NewAmadeusClient(baseURL string, tokens TokenSource, rps float64, timeout time.Duration) *AmadeusClient {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &AmadeusClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		limiter:    rate.NewLimiter(limit, 1),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *AmadeusClient) doRequest(ctx context.Context, path string) ([]byte, error) {
	creds, err := c.tokens.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth failed: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperr.Network("rate limiter", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Network("amadeus request failed", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.Network(fmt.Sprintf("amadeus error (%d): %s", resp.StatusCode, string(respBody)), nil)
	}
	return respBody, nil
}

// ─── Location Search ──────────────────────────────────────────────────────────

type amadeusLocationsResponse struct {
	Data []struct {
		Name     string `json:"name"`
		IATACode string `json:"iataCode"`
		GeoCode  struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"geoCode"`
	} `json:"data"`
}

// SearchLocations looks up cities and airports whose name or code matches keyword.
func (c *AmadeusClient) SearchLocations(ctx context.Context, keyword string) ([]models.LocationCandidate, error) {
	q := url.Values{}
	q.Set("subType", "CITY,AIRPORT")
	q.Set("keyword", keyword)

	body, err := c.doRequest(ctx, "/v1/reference-data/locations?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("location search failed: %w", err)
	}
	return parseLocations(body)
}

func parseLocations(data []byte) ([]models.LocationCandidate, error) {
	var resp amadeusLocationsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, apperr.Parse("failed to parse locations", err)
	}

	candidates := make([]models.LocationCandidate, 0, len(resp.Data))
	for _, d := range resp.Data {
		candidates = append(candidates, models.LocationCandidate{
			Name:      d.Name,
			IATACode:  d.IATACode,
			Latitude:  d.GeoCode.Latitude,
			Longitude: d.GeoCode.Longitude,
		})
	}
	return candidates, nil
}

// ─── Flight Search ────────────────────────────────────────────────────────────

// SearchFlights searches round trip offers for a validated search form.
func (c *AmadeusClient) SearchFlights(ctx context.Context, search models.FlightSearch) ([]models.Flight, error) {
	q := url.Values{}
	q.Set("originLocationCode", search.Origin.IATACode)
	q.Set("destinationLocationCode", search.Destination.IATACode)
	q.Set("departureDate", search.DepartDate)
	q.Set("returnDate", search.ReturnDate)
	q.Set("adults", strconv.Itoa(search.Passengers))
	q.Set("max", "25")

	body, err := c.doRequest(ctx, "/v2/shopping/flight-offers?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}

	flights, err := parseFlightOffers(body)
	if err != nil {
		return nil, err
	}
	return uniqueFlights(flights), nil
}

type amadeusSegment struct {
	Departure struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"departure"`
	Arrival struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"arrival"`
	CarrierCode string `json:"carrierCode"`
	Number      string `json:"number"`
}

type amadeusItinerary struct {
	Duration string           `json:"duration"`
	Segments []amadeusSegment `json:"segments"`
}

type amadeusFlightOffer struct {
	ID    string `json:"id"`
	Price struct {
		GrandTotal string `json:"grandTotal"`
		Currency   string `json:"currency"`
	} `json:"price"`
	Itineraries            []amadeusItinerary `json:"itineraries"`
	ValidatingAirlineCodes []string           `json:"validatingAirlineCodes"`
	TravelerPricings       []json.RawMessage  `json:"travelerPricings"`
}

type amadeusFlightOffersResponse struct {
	Data []amadeusFlightOffer `json:"data"`
}

func parseFlightOffers(data []byte) ([]models.Flight, error) {
	var resp amadeusFlightOffersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, apperr.Parse("failed to parse flight offers", err)
	}

	flights := make([]models.Flight, 0, len(resp.Data))

	for _, offer := range resp.Data {
		if len(offer.Itineraries) < 1 || len(offer.Itineraries[0].Segments) < 1 {
			continue
		}

		price := parsePrice(offer.Price.GrandTotal)
		if price <= 0 {
			continue
		}

		outbound := offer.Itineraries[0]
		first := outbound.Segments[0]
		last := outbound.Segments[len(outbound.Segments)-1]

		airlineCode := first.CarrierCode
		if airlineCode == "" && len(offer.ValidatingAirlineCodes) > 0 {
			airlineCode = offer.ValidatingAirlineCodes[0]
		}

		f := models.Flight{
			ID:            offer.ID,
			Price:         price,
			Currency:      offer.Price.Currency,
			Airline:       airlineName(airlineCode),
			AirlineCode:   airlineCode,
			FlightNumber:  airlineCode + first.Number,
			DepartureCode: first.Departure.IataCode,
			ArrivalCode:   last.Arrival.IataCode,
			DepartureTime: first.Departure.At,
			ArrivalTime:   last.Arrival.At,
			Duration:      parseDuration(outbound.Duration),
			RawDuration:   outbound.Duration,
			Stops:         len(outbound.Segments) - 1,
			Passengers:    len(offer.TravelerPricings),
		}

		if len(offer.Itineraries) >= 2 && len(offer.Itineraries[1].Segments) > 0 {
			back := offer.Itineraries[1]
			f.ReturnStops = len(back.Segments) - 1
			f.ReturnDuration = parseDuration(back.Duration)
			f.ReturnDepartureTime = back.Segments[0].Departure.At
			f.ReturnArrivalTime = back.Segments[len(back.Segments)-1].Arrival.At
		}

		flights = append(flights, f)
	}

	return flights, nil
}

// uniqueFlights drops offers that repeat an outbound flight number already seen.
func uniqueFlights(flights []models.Flight) []models.Flight {
	seen := make(map[string]struct{}, len(flights))
	unique := make([]models.Flight, 0, len(flights))
	for _, f := range flights {
		if _, ok := seen[f.FlightNumber]; ok {
			continue
		}
		seen[f.FlightNumber] = struct{}{}
		unique = append(unique, f)
	}
	return unique
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// parseDuration converts ISO 8601 duration (PT5H30M) to human readable (5h 30m)
func parseDuration(iso string) string {
	if iso == "" {
		return ""
	}
	iso = strings.TrimPrefix(iso, "PT")
	result := ""
	if hIdx := strings.Index(iso, "H"); hIdx >= 0 {
		result += trimZeros(iso[:hIdx]) + "h"
		iso = iso[hIdx+1:]
	}
	if mIdx := strings.Index(iso, "M"); mIdx >= 0 {
		if result != "" {
			result += " "
		}
		result += trimZeros(iso[:mIdx]) + "m"
	}
	return result
}

func trimZeros(s string) string {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return s
}

func parsePrice(s string) float64 {
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return price
}

// airlineName returns full airline name from IATA code
func airlineName(code string) string {
	names := map[string]string{
		"AA": "American Airlines",
		"AF": "Air France",
		"AS": "Alaska Airlines",
		"AZ": "ITA Airways",
		"B6": "JetBlue",
		"BA": "British Airways",
		"DL": "Delta Air Lines",
		"EK": "Emirates",
		"F9": "Frontier Airlines",
		"IB": "Iberia",
		"JL": "Japan Airlines",
		"KL": "KLM",
		"LH": "Lufthansa",
		"NH": "ANA",
		"NK": "Spirit Airlines",
		"QR": "Qatar Airways",
		"SQ": "Singapore Airlines",
		"TK": "Turkish Airlines",
		"UA": "United Airlines",
		"WN": "Southwest Airlines",
	}
	if name, ok := names[code]; ok {
		return name
	}
	if code != "" {
		return code + " Airlines"
	}
	return "Unknown Airline"
}
