package validation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultCityMaxLength bounds a city query in runes.
const DefaultCityMaxLength = 100

// ErrCityEmpty is returned when the city is empty or whitespace-only after trim.
var ErrCityEmpty = errors.New("city is required")

// ErrCityTooLong is returned when the city exceeds the maximum length.
var ErrCityTooLong = errors.New("city name too long")

// ErrInvalidCoordinates is returned for unparseable or out-of-range coordinates.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// ErrInvalidSessionID is returned when a session id is not a UUID.
var ErrInvalidSessionID = errors.New("invalid session id")

// ValidateCity trims the input and enforces maxLen (in runes, ignored if <= 0).
// Any other content is passed through; the geocoder decides what matches.
func ValidateCity(input string, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrCityEmpty
	}
	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		return "", ErrCityTooLong
	}
	return s, nil
}

// ParseCoordinates parses decimal degrees. Latitude must be within [-90, 90]
// and longitude within [-180, 180].
func ParseCoordinates(lat, lon string) (float64, float64, error) {
	la, err := parseDegrees(lat, 90)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: latitude: %v", ErrInvalidCoordinates, err)
	}
	lo, err := parseDegrees(lon, 180)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: longitude: %v", ErrInvalidCoordinates, err)
	}
	return la, lo, nil
}

func parseDegrees(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.Abs(v) > limit {
		return 0, fmt.Errorf("%v out of range", v)
	}
	return v, nil
}

// ValidateSessionID returns the canonical form of a UUID session id.
func ValidateSessionID(id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", ErrInvalidSessionID
	}
	return u.String(), nil
}
