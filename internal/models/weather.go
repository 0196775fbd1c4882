package models

import (
	"fmt"
	"strings"
	"time"
)

// Unit is the temperature unit preference. The upstream API bakes it into the
// request, so changing it requires a new fetch.
type Unit string

const (
	UnitMetric   Unit = "metric"
	UnitImperial Unit = "imperial"
)

// WindSpeedUnit is requested for every forecast regardless of Unit.
const WindSpeedUnit = "mph"

// ParseUnit accepts metric/imperial as well as the celsius/fahrenheit
// spellings the page checkbox may post. Empty input means metric.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "metric", "celsius", "c":
		return UnitMetric, nil
	case "imperial", "fahrenheit", "f":
		return UnitImperial, nil
	}
	return "", fmt.Errorf("unknown unit %q", s)
}

// TemperatureParam is the value of the forecast API's temperature_unit parameter.
func (u Unit) TemperatureParam() string {
	if u == UnitImperial {
		return "fahrenheit"
	}
	return "celsius"
}

// Suffix is appended to rendered temperatures.
func (u Unit) Suffix() string {
	if u == UnitImperial {
		return "°F"
	}
	return "°C"
}

// WeatherSnapshot is one forecast response. It lives for a single render.
type WeatherSnapshot struct {
	Current CurrentConditions `json:"current"`
	Daily   DailyForecast     `json:"daily"`
}

// CurrentConditions is the current_weather block of the forecast response.
type CurrentConditions struct {
	Temperature float64   `json:"temperature"`
	WindSpeed   float64   `json:"windSpeed"`
	WeatherCode int       `json:"weatherCode"`
	IsDay       bool      `json:"isDay"`
	ObservedAt  time.Time `json:"observedAt"`
}

// DailyForecast holds parallel per-day sequences; index i across all of them
// describes day i. PrecipitationProbability entries are nil when upstream
// sent null, and the slice itself may be shorter than the others or absent.
type DailyForecast struct {
	Dates                    []string   `json:"dates"`
	MaxTemps                 []float64  `json:"maxTemps"`
	MinTemps                 []float64  `json:"minTemps"`
	WeatherCodes             []int      `json:"weatherCodes"`
	PrecipitationProbability []*float64 `json:"precipitationProbability"`
}

// Days returns how many days can be read without indexing past the shortest
// of the required sequences.
func (d DailyForecast) Days() int {
	n := len(d.Dates)
	for _, l := range []int{len(d.MaxTemps), len(d.MinTemps), len(d.WeatherCodes)} {
		if l < n {
			n = l
		}
	}
	return n
}

// Precipitation returns the probability for day i, or false when absent.
func (d DailyForecast) Precipitation(i int) (float64, bool) {
	if i < 0 || i >= len(d.PrecipitationProbability) || d.PrecipitationProbability[i] == nil {
		return 0, false
	}
	return *d.PrecipitationProbability[i], true
}

// LocateOptions are the preferences handed to the platform geolocation API.
type LocateOptions struct {
	HighAccuracy bool          `json:"highAccuracy"`
	Timeout      time.Duration `json:"timeout"`
}

// DefaultLocateOptions asks for best accuracy with a 10 second timeout.
var DefaultLocateOptions = LocateOptions{
	HighAccuracy: true,
	Timeout:      10 * time.Second,
}
