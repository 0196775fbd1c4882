package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kjstillabower/weather-lookup/internal/models"
)

// DefaultForecastURL is the Open-Meteo forecast endpoint.
const DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"

const (
	dailyMaxTemp       = "temperature_2m_max"
	dailyMinTemp       = "temperature_2m_min"
	dailyWeatherCode   = "weathercode"
	dailyPrecipitation = "precipitation_probability_max"

	currentTimeLayout = "2006-01-02T15:04"
)

var dailyFields = []string{dailyMaxTemp, dailyMinTemp, dailyWeatherCode, dailyPrecipitation}

// Forecaster fetches current conditions and the daily forecast for a point.
type Forecaster interface {
	FetchWeather(ctx context.Context, lat, lon float64, unit models.Unit) (models.WeatherSnapshot, error)
}

// OpenMeteoForecaster implements Forecaster against the Open-Meteo forecast API.
type OpenMeteoForecaster struct {
	api *api
}

// NewOpenMeteoForecaster returns a forecaster for baseURL.
func NewOpenMeteoForecaster(baseURL string, timeout time.Duration, opts ...Option) (*OpenMeteoForecaster, error) {
	a, err := newAPI("forecast", baseURL, timeout, opts)
	if err != nil {
		return nil, err
	}
	return &OpenMeteoForecaster{api: a}, nil
}

type forecastResponse struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	CurrentWeather   struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
		IsDay       int     `json:"is_day"`
		Time        string  `json:"time"`
	} `json:"current_weather"`
	// Daily is decoded after the fact, field by field, so a malformed daily
	// block or field never fails the whole response.
	Daily json.RawMessage `json:"daily"`
}

// FetchWeather requests current conditions plus daily max/min temperature,
// weather code and max precipitation probability. The temperature unit follows
// unit; wind speed is always requested in mph.
func (f *OpenMeteoForecaster) FetchWeather(ctx context.Context, lat, lon float64, unit models.Unit) (models.WeatherSnapshot, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("current_weather", "true")
	params.Set("daily", strings.Join(dailyFields, ","))
	params.Set("timezone", "auto")
	params.Set("temperature_unit", unit.TemperatureParam())
	params.Set("windspeed_unit", models.WindSpeedUnit)

	var resp forecastResponse
	if err := f.api.getJSON(ctx, params, &resp); err != nil {
		return models.WeatherSnapshot{}, err
	}
	return mapForecast(resp), nil
}

func mapForecast(resp forecastResponse) models.WeatherSnapshot {
	cw := resp.CurrentWeather
	current := models.CurrentConditions{
		Temperature: cw.Temperature,
		WindSpeed:   cw.WindSpeed,
		WeatherCode: cw.WeatherCode,
		IsDay:       cw.IsDay == 1,
	}
	zone := time.FixedZone("", resp.UTCOffsetSeconds)
	if t, err := time.ParseInLocation(currentTimeLayout, cw.Time, zone); err == nil {
		current.ObservedAt = t
	}

	// A daily value that is not an object means no daily data.
	var fields map[string]json.RawMessage
	_ = json.Unmarshal(resp.Daily, &fields)

	var daily models.DailyForecast
	decodeStrings(fields["time"], &daily.Dates)
	daily.MaxTemps = leadingFloats(fields[dailyMaxTemp])
	daily.MinTemps = leadingFloats(fields[dailyMinTemp])
	daily.WeatherCodes = leadingInts(fields[dailyWeatherCode])
	var precip []*float64
	if json.Unmarshal(fields[dailyPrecipitation], &precip) == nil {
		daily.PrecipitationProbability = precip
	}

	return models.WeatherSnapshot{Current: current, Daily: daily}
}

func decodeStrings(raw json.RawMessage, dst *[]string) {
	var v []string
	if json.Unmarshal(raw, &v) == nil {
		*dst = v
	}
}

// leadingFloats decodes a numeric array, stopping at the first null so that
// only days with a value are ever rendered.
func leadingFloats(raw json.RawMessage) []float64 {
	var v []*float64
	if json.Unmarshal(raw, &v) != nil {
		return nil
	}
	out := make([]float64, 0, len(v))
	for _, p := range v {
		if p == nil {
			break
		}
		out = append(out, *p)
	}
	return out
}

func leadingInts(raw json.RawMessage) []int {
	var v []*int
	if json.Unmarshal(raw, &v) != nil {
		return nil
	}
	out := make([]int, 0, len(v))
	for _, p := range v {
		if p == nil {
			break
		}
		out = append(out, *p)
	}
	return out
}
