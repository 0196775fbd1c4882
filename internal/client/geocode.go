package client

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/kjstillabower/weather-lookup/internal/models"
)

// DefaultGeocodeURL is the Open-Meteo geocoding search endpoint.
const DefaultGeocodeURL = "https://geocoding-api.open-meteo.com/v1/search"

const geocodeLanguage = "en"

// Geocoder resolves a free-text place name to its best-matching location.
type Geocoder interface {
	Resolve(ctx context.Context, placeName string) (models.Location, bool, error)
}

// OpenMeteoGeocoder implements Geocoder against the Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	api *api
}

// NewOpenMeteoGeocoder returns a geocoder for baseURL. timeout bounds each
// request unless WithHTTPClient supplies a client.
func NewOpenMeteoGeocoder(baseURL string, timeout time.Duration, opts ...Option) (*OpenMeteoGeocoder, error) {
	a, err := newAPI("geocode", baseURL, timeout, opts)
	if err != nil {
		return nil, err
	}
	return &OpenMeteoGeocoder{api: a}, nil
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// Resolve asks for the single best match. An empty result list is reported as
// found=false with a nil error; only transport and status failures are errors.
func (g *OpenMeteoGeocoder) Resolve(ctx context.Context, placeName string) (models.Location, bool, error) {
	name := strings.TrimSpace(placeName)
	if name == "" {
		return models.Location{}, false, ErrEmptyPlaceName
	}

	params := url.Values{}
	params.Set("name", name)
	params.Set("count", "1")
	params.Set("language", geocodeLanguage)
	params.Set("format", "json")

	var resp geocodeResponse
	if err := g.api.getJSON(ctx, params, &resp); err != nil {
		return models.Location{}, false, err
	}
	if len(resp.Results) == 0 {
		return models.Location{}, false, nil
	}

	r := resp.Results[0]
	return models.Location{
		Name:      r.Name,
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}, true, nil
}
