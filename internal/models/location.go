package models

// YourLocationName is the display name given to coordinates that came from
// the browser instead of the geocoder.
const YourLocationName = "Your location"

// Location is a resolved place. Country may be empty.
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Coordinates is a bare latitude/longitude pair as reported by the platform.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// YourLocation wraps platform coordinates into a synthetic Location.
func YourLocation(c Coordinates) Location {
	return Location{
		Name:      YourLocationName,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
	}
}

// Session is the per-page state kept between actions: the most recently
// resolved location, if any, and the unit last selected on the page.
type Session struct {
	ID       string    `json:"id"`
	Location *Location `json:"location,omitempty"`
	Unit     Unit      `json:"unit,omitempty"`
}
