package models

// Flight is one bookable round trip offer, flattened for display and saving.
type Flight struct {
	ID                  string  `json:"id"`
	Price               float64 `json:"price"`
	Currency            string  `json:"currency,omitempty"`
	Airline             string  `json:"airline"`
	AirlineCode         string  `json:"airline_code,omitempty"`
	FlightNumber        string  `json:"flight_number,omitempty"`
	DepartureCode       string  `json:"departure_code,omitempty"`
	ArrivalCode         string  `json:"arrival_code,omitempty"`
	DepartureTime       string  `json:"departure_time"`
	ArrivalTime         string  `json:"arrival_time"`
	Duration            string  `json:"duration"`
	RawDuration         string  `json:"raw_duration,omitempty"`
	Stops               int     `json:"stops"`
	Passengers          int     `json:"passengers,omitempty"`
	ReturnDepartureTime string  `json:"return_departure_time,omitempty"`
	ReturnArrivalTime   string  `json:"return_arrival_time,omitempty"`
	ReturnDuration      string  `json:"return_duration,omitempty"`
	ReturnStops         int     `json:"return_stops,omitempty"`
}

// FlightSearch is a validated search form ready to be sent upstream.
type FlightSearch struct {
	Origin      SelectedLocation `json:"origin"`
	Destination SelectedLocation `json:"destination"`
	DepartDate  string           `json:"depart_date"`
	ReturnDate  string           `json:"return_date"`
	Passengers  int              `json:"passengers"`
}

// WeatherDay is one day of a weather forecast.
type WeatherDay struct {
	Date       string  `json:"datetime"`
	Temp       float64 `json:"temp"`
	TempMax    float64 `json:"tempmax"`
	TempMin    float64 `json:"tempmin"`
	Conditions string  `json:"conditions"`
	Icon       string  `json:"icon"`
}

// Forecast is the weather for a destination over the travel dates.
type Forecast struct {
	Coordinates string       `json:"coordinates"`
	Start       string       `json:"start"`
	End         string       `json:"end"`
	Days        []WeatherDay `json:"days"`
}
