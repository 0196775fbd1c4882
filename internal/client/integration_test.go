//go:build integration
// +build integration

package client

import (
	"context"
	"testing"
	"time"

	"github.com/kjstillabower/weather-lookup/internal/models"
)

// TestOpenMeteo_Integration resolves Paris and fetches its forecast from the
// live Open-Meteo endpoints.
func TestOpenMeteo_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	geo, err := NewOpenMeteoGeocoder(DefaultGeocodeURL, 10*time.Second)
	if err != nil {
		t.Fatalf("NewOpenMeteoGeocoder() error = %v", err)
	}
	loc, found, err := geo.Resolve(ctx, "Paris")
	if err != nil {
		t.Skipf("geocode failed (network may be unavailable): %v", err)
	}
	if !found || loc.Country != "France" {
		t.Fatalf("Resolve(Paris) = %+v, %v; want a match in France", loc, found)
	}

	fc, err := NewOpenMeteoForecaster(DefaultForecastURL, 10*time.Second)
	if err != nil {
		t.Fatalf("NewOpenMeteoForecaster() error = %v", err)
	}
	snap, err := fc.FetchWeather(ctx, loc.Latitude, loc.Longitude, models.UnitImperial)
	if err != nil {
		t.Fatalf("FetchWeather() error = %v", err)
	}
	if snap.Daily.Days() < 5 {
		t.Errorf("Days() = %d, want at least 5", snap.Daily.Days())
	}
	if snap.Current.ObservedAt.IsZero() {
		t.Error("ObservedAt is zero")
	}
}
