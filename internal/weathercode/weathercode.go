// Package weathercode maps WMO weather interpretation codes, as returned by
// Open-Meteo, to display text and an icon glyph. Both lookups are total: codes
// outside the documented set never fail.
package weathercode

import "sort"

// Placeholder is returned by Describe for codes outside the documented set.
const Placeholder = "—"

var descriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Family groups codes that share an icon.
type Family string

const (
	FamilyClear        Family = "clear"
	FamilyPartlyCloudy Family = "partly_cloudy"
	FamilyOvercast     Family = "overcast"
	FamilyFog          Family = "fog"
	FamilyDrizzle      Family = "drizzle"
	FamilyRain         Family = "rain"
	FamilyFreezingRain Family = "freezing_rain"
	FamilySnow         Family = "snow"
	FamilyShowers      Family = "showers"
	FamilyThunderstorm Family = "thunderstorm"
	FamilyUnknown      Family = "unknown"
)

const (
	iconClearDay   = "☀️"
	iconClearNight = "🌙"
	iconUnknown    = "🌡️"
)

var icons = map[Family]string{
	FamilyPartlyCloudy: "⛅",
	FamilyOvercast:     "☁️",
	FamilyFog:          "🌫️",
	FamilyDrizzle:      "🌦️",
	FamilyRain:         "🌧️",
	FamilyFreezingRain: "🧊",
	FamilySnow:         "❄️",
	FamilyShowers:      "☔",
	FamilyThunderstorm: "⛈️",
}

// Describe returns a short human description for code, or Placeholder.
func Describe(code int) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return Placeholder
}

// Known reports whether code is in the documented set.
func Known(code int) bool {
	_, ok := descriptions[code]
	return ok
}

// Codes returns the documented codes in ascending order.
func Codes() []int {
	out := make([]int, 0, len(descriptions))
	for c := range descriptions {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// FamilyOf returns the icon family for code.
func FamilyOf(code int) Family {
	switch code {
	case 0:
		return FamilyClear
	case 1, 2:
		return FamilyPartlyCloudy
	case 3:
		return FamilyOvercast
	case 45, 48:
		return FamilyFog
	case 51, 53, 55:
		return FamilyDrizzle
	case 61, 63, 65:
		return FamilyRain
	case 56, 57, 66, 67:
		return FamilyFreezingRain
	case 71, 73, 75, 77, 85, 86:
		return FamilySnow
	case 80, 81, 82:
		return FamilyShowers
	case 95, 96, 99:
		return FamilyThunderstorm
	}
	return FamilyUnknown
}

// IconFor returns the glyph for code. Only the clear family has a night variant.
func IconFor(code int, isDay bool) string {
	f := FamilyOf(code)
	if f == FamilyClear {
		if isDay {
			return iconClearDay
		}
		return iconClearNight
	}
	if icon, ok := icons[f]; ok {
		return icon
	}
	return iconUnknown
}
