package service

import (
	"context"
	"time"
)

// Weather is the payload returned by fetchWeatherInfo.
type Weather struct {
	EventID      string   `json:"eventId"`
	Location     string   `json:"location"`
	Date         string   `json:"date"`
	Summary      string   `json:"summary"`
	TemperatureC *float64 `json:"temperatureC"`
	Source       string   `json:"source"`
}

// WeatherProvider looks up a forecast for a place and day.
type WeatherProvider interface {
	Lookup(ctx context.Context, location string, date time.Time) (Weather, error)
}

// PlaceholderWeather answers every lookup with a fixed "unavailable"
// forecast. It stands in until a real provider is configured.
type PlaceholderWeather struct{}

func (PlaceholderWeather) Lookup(_ context.Context, location string, date time.Time) (Weather, error) {
	return Weather{
		Location: location,
		Date:     date.UTC().Format("2006-01-02"),
		Summary:  "weather data unavailable",
		Source:   "placeholder",
	}, nil
}
