package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjstillabower/weather-lookup/internal/models"
	"github.com/kjstillabower/weather-lookup/internal/weathercode"
)

func ptr(v float64) *float64 { return &v }

var parisLoc = models.Location{Name: "Paris", Country: "France", Latitude: 48.85, Longitude: 2.35}

func TestCurrentPanelFor_Paris(t *testing.T) {
	observed := time.Date(2024, 5, 1, 14, 0, 0, 0, time.FixedZone("", 7200))
	p := CurrentPanelFor(parisLoc, models.CurrentConditions{
		Temperature: 18.2,
		WindSpeed:   12.4,
		WeatherCode: 2,
		IsDay:       true,
		ObservedAt:  observed,
	}, models.UnitMetric)

	assert.Equal(t, "Paris, France", p.Place)
	assert.Equal(t, "18°C — Partly cloudy", p.Summary)
	assert.Equal(t, "18°C", p.Temperature)
	assert.Equal(t, "Partly cloudy", p.Description)
	assert.Equal(t, "12 mph", p.Wind)
	assert.Equal(t, weathercode.IconFor(2, true), p.Icon)
	assert.Equal(t, "Wed 14:00", p.Observed)
}

func TestCurrentPanelFor_Variants(t *testing.T) {
	t.Run("empty country", func(t *testing.T) {
		p := CurrentPanelFor(models.YourLocation(models.Coordinates{Latitude: 1, Longitude: 2}),
			models.CurrentConditions{Temperature: 0}, models.UnitMetric)
		assert.Equal(t, "Your location", p.Place)
		assert.Empty(t, p.Observed)
	})

	t.Run("imperial keeps wind in mph", func(t *testing.T) {
		p := CurrentPanelFor(parisLoc, models.CurrentConditions{Temperature: 64.6, WindSpeed: 7.5, WeatherCode: 0, IsDay: false}, models.UnitImperial)
		assert.Equal(t, "65°F — Clear sky", p.Summary)
		assert.Equal(t, "8 mph", p.Wind)
		assert.Equal(t, weathercode.IconFor(0, false), p.Icon)
	})

	t.Run("unknown code", func(t *testing.T) {
		p := CurrentPanelFor(parisLoc, models.CurrentConditions{Temperature: -3.4, WeatherCode: 42}, models.UnitMetric)
		assert.Equal(t, "-3°C — —", p.Summary)
	})
}

func TestTemperatureAndWind_RoundHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{18.5, "19°C"},
		{18.49, "18°C"},
		{-0.4, "0°C"},
		{-2.5, "-2°C"},
		{-2.51, "-3°C"},
		{-3.5, "-3°C"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Temperature(tt.in, models.UnitMetric), "Temperature(%v)", tt.in)
	}
	assert.Equal(t, "-7°F", Temperature(-7.5, models.UnitImperial))
	assert.Equal(t, "13 mph", Wind(12.5))
}

func TestForecastCards_LimitsToFiveInOrder(t *testing.T) {
	daily := models.DailyForecast{
		Dates:        []string{"2024-05-01", "2024-05-02", "2024-05-03", "2024-05-04", "2024-05-05", "2024-05-06", "2024-05-07"},
		MaxTemps:     []float64{20, 21, 22, 23, 24, 25, 26},
		MinTemps:     []float64{10, 11, 12, 13, 14, 15, 16},
		WeatherCodes: []int{0, 1, 2, 3, 45, 61, 95},
		PrecipitationProbability: []*float64{
			ptr(0), nil, ptr(35.4), ptr(100), ptr(50), ptr(60), ptr(70),
		},
	}

	cards := ForecastCards(daily, models.UnitMetric)
	require.Len(t, cards, MaxForecastDays)

	wantLabels := []string{"Wed", "Thu", "Fri", "Sat", "Sun"}
	for i, c := range cards {
		assert.Equal(t, wantLabels[i], c.Label, "card %d label", i)
		assert.Equal(t, weathercode.Describe(daily.WeatherCodes[i]), c.Description, "card %d description", i)
	}
	assert.Equal(t, "May 1", cards[0].Date)
	assert.Equal(t, "20°C", cards[0].High)
	assert.Equal(t, "10°C", cards[0].Low)
	assert.Equal(t, "0%", cards[0].Precipitation)
	assert.Empty(t, cards[1].Precipitation, "null precipitation is not displayed")
	assert.Equal(t, "35%", cards[2].Precipitation)
}

func TestForecastCards_ShortAndMismatched(t *testing.T) {
	daily := models.DailyForecast{
		Dates:        []string{"2024-05-01", "2024-05-02", "2024-05-03"},
		MaxTemps:     []float64{68.2, 70.9},
		MinTemps:     []float64{50, 51, 52},
		WeatherCodes: []int{3, 3, 3},
	}
	cards := ForecastCards(daily, models.UnitImperial)
	require.Len(t, cards, 2)
	assert.Equal(t, "68°F", cards[0].High)
	assert.Equal(t, "71°F", cards[1].High)
	assert.Empty(t, cards[1].Precipitation)

	assert.Empty(t, ForecastCards(models.DailyForecast{}, models.UnitMetric))
}

func TestForecastCards_UnparseableDate(t *testing.T) {
	cards := ForecastCards(models.DailyForecast{
		Dates:        []string{"someday"},
		MaxTemps:     []float64{1},
		MinTemps:     []float64{0},
		WeatherCodes: []int{0},
	}, models.UnitMetric)
	require.Len(t, cards, 1)
	assert.Equal(t, "someday", cards[0].Label)
	assert.Equal(t, weathercode.IconFor(0, true), cards[0].Icon)
}

func TestWeather(t *testing.T) {
	vm := Weather(parisLoc, models.WeatherSnapshot{
		Current: models.CurrentConditions{Temperature: 18, WindSpeed: 12, WeatherCode: 2, IsDay: true},
	}, models.UnitMetric)

	assert.Equal(t, models.UnitMetric, vm.Unit)
	require.NotNil(t, vm.Current)
	assert.Equal(t, "18°C — Partly cloudy", vm.Current.Summary)
	assert.Empty(t, vm.Error)
	assert.Empty(t, vm.Status)
	assert.Equal(t, IdleLocateButton(), vm.Locate)
}

func TestFrames(t *testing.T) {
	var f Frames
	_, ok := f.Last()
	assert.False(t, ok)

	f.Render(ViewModel{Status: "Loading…"})
	f.Render(ViewModel{Error: "boom"})

	last, ok := f.Last()
	require.True(t, ok)
	assert.Equal(t, "boom", last.Error)

	all := f.All()
	require.Len(t, all, 2)
	all[0].Status = "mutated"
	assert.Equal(t, "Loading…", f.All()[0].Status)
}
