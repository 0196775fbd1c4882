package render

import (
	"fmt"
	"math"
	"time"

	"github.com/kjstillabower/weather-lookup/internal/models"
	"github.com/kjstillabower/weather-lookup/internal/weathercode"
)

const (
	dailyDateLayout = "2006-01-02"
	observedLayout  = "Mon 15:04"
)

// Temperature formats a rounded temperature with the unit suffix, e.g. "18°C".
func Temperature(v float64, unit models.Unit) string {
	return fmt.Sprintf("%d%s", round(v), unit.Suffix())
}

// Wind formats a rounded wind speed, always in mph.
func Wind(v float64) string {
	return fmt.Sprintf("%d %s", round(v), models.WindSpeedUnit)
}

// Place is "Name, Country", or just the name when the country is empty.
func Place(loc models.Location) string {
	if loc.Country == "" {
		return loc.Name
	}
	return loc.Name + ", " + loc.Country
}

// round rounds half up, so -2.5 becomes -2 as it does in a browser.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// CurrentPanelFor builds the current-conditions area for loc.
func CurrentPanelFor(loc models.Location, current models.CurrentConditions, unit models.Unit) *CurrentPanel {
	temp := Temperature(current.Temperature, unit)
	desc := weathercode.Describe(current.WeatherCode)
	p := &CurrentPanel{
		Place:       Place(loc),
		Icon:        weathercode.IconFor(current.WeatherCode, current.IsDay),
		Summary:     temp + " — " + desc,
		Temperature: temp,
		Description: desc,
		Wind:        Wind(current.WindSpeed),
	}
	if !current.ObservedAt.IsZero() {
		p.Observed = current.ObservedAt.Format(observedLayout)
	}
	return p
}

// ForecastCards builds at most MaxForecastDays cards in day order, stopping at
// the shortest daily sequence.
func ForecastCards(daily models.DailyForecast, unit models.Unit) []DayCard {
	n := daily.Days()
	if n > MaxForecastDays {
		n = MaxForecastDays
	}
	cards := make([]DayCard, 0, n)
	for i := 0; i < n; i++ {
		code := daily.WeatherCodes[i]
		card := DayCard{
			Label:       daily.Dates[i],
			Date:        daily.Dates[i],
			Icon:        weathercode.IconFor(code, true),
			Description: weathercode.Describe(code),
			High:        Temperature(daily.MaxTemps[i], unit),
			Low:         Temperature(daily.MinTemps[i], unit),
		}
		if d, err := time.Parse(dailyDateLayout, daily.Dates[i]); err == nil {
			card.Label = d.Format("Mon")
			card.Date = d.Format("Jan 2")
		}
		if p, ok := daily.Precipitation(i); ok {
			card.Precipitation = fmt.Sprintf("%d%%", round(p))
		}
		cards = append(cards, card)
	}
	return cards
}

// Weather is the Rendered view for loc.
func Weather(loc models.Location, snap models.WeatherSnapshot, unit models.Unit) ViewModel {
	return ViewModel{
		Unit:     unit,
		Current:  CurrentPanelFor(loc, snap.Current, unit),
		Forecast: ForecastCards(snap.Daily, unit),
		Locate:   IdleLocateButton(),
	}
}
