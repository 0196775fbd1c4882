// Package render turns fetched weather into display models and HTML.
package render

import (
	"github.com/kjstillabower/weather-lookup/internal/models"
)

// Labels shown on the geolocation trigger.
const (
	LocateLabel   = "Use my location"
	LocatingLabel = "Locating…"
)

// MaxForecastDays is how many forecast cards are ever rendered.
const MaxForecastDays = 5

// ViewModel is everything the page displays. A nil Current or empty Forecast
// means that area is cleared.
type ViewModel struct {
	Unit     models.Unit   `json:"unit"`
	Status   string        `json:"status,omitempty"`
	Current  *CurrentPanel `json:"current,omitempty"`
	Forecast []DayCard     `json:"forecast"`
	Error    string        `json:"error,omitempty"`
	Locate   LocateButton  `json:"locate"`
}

// CurrentPanel is the current-conditions area.
type CurrentPanel struct {
	Place       string `json:"place"`
	Icon        string `json:"icon"`
	Summary     string `json:"summary"`
	Temperature string `json:"temperature"`
	Description string `json:"description"`
	Wind        string `json:"wind"`
	Observed    string `json:"observed,omitempty"`
}

// DayCard is one entry of the forecast grid.
type DayCard struct {
	Label         string `json:"label"`
	Date          string `json:"date"`
	Icon          string `json:"icon"`
	Description   string `json:"description"`
	High          string `json:"high"`
	Low           string `json:"low"`
	Precipitation string `json:"precipitation,omitempty"`
}

// LocateButton is the state of the geolocation trigger.
type LocateButton struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// IdleLocateButton is the enabled trigger with its original label.
func IdleLocateButton() LocateButton {
	return LocateButton{Label: LocateLabel}
}

// BusyLocateButton is the disabled trigger shown while awaiting a position.
func BusyLocateButton() LocateButton {
	return LocateButton{Label: LocatingLabel, Disabled: true}
}

// Initial is the view of a freshly loaded page.
func Initial(unit models.Unit) ViewModel {
	return ViewModel{Unit: unit, Locate: IdleLocateButton()}
}
