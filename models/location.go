package models

import (
	"strconv"
	"strings"
)

// LocationCandidate is one airport or city returned by the location search.
// Candidates are never modified after they are decoded.
type LocationCandidate struct {
	Name      string  `json:"name"`
	IATACode  string  `json:"iata_code"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SelectedLocation is what a location field resolved to: the values that end up
// in the form's hidden name/iatacode/lat/long fields.
type SelectedLocation struct {
	Name      string  `json:"name"`
	IATACode  string  `json:"iata_code"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Confirmed bool    `json:"confirmed"`
}

// Select binds a candidate as a confirmed location.
func Select(c LocationCandidate) SelectedLocation {
	return SelectedLocation{
		Name:      c.Name,
		IATACode:  c.IATACode,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Confirmed: true,
	}
}

// Raw binds free text that did not match any candidate. The text doubles as the code.
func Raw(text string, confirmed bool) SelectedLocation {
	return SelectedLocation{
		Name:      text,
		IATACode:  text,
		Confirmed: confirmed,
	}
}

// MatchCandidate returns the first candidate whose name or IATA code equals text exactly.
func MatchCandidate(candidates []LocationCandidate, text string) (LocationCandidate, bool) {
	for _, c := range candidates {
		if c.Name == text || c.IATACode == text {
			return c, true
		}
	}
	return LocationCandidate{}, false
}

// Coordinates formats a "lat,long" pair the way the weather endpoint and the
// weather cache key expect it.
func (s SelectedLocation) Coordinates() string {
	return FormatCoordinates(s.Latitude, s.Longitude)
}

func FormatCoordinates(lat, long float64) string {
	var b strings.Builder
	b.WriteString(strconv.FormatFloat(lat, 'f', -1, 64))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(long, 'f', -1, 64))
	return b.String()
}
