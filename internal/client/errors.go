package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork wraps every transport failure and non-success status from
	// either upstream API.
	ErrNetwork = errors.New("network error")
	// ErrMalformedResponse is returned when a success response cannot be decoded.
	ErrMalformedResponse = errors.New("malformed upstream response")
	// ErrCircuitOpen is returned while the breaker for an API is open. It is
	// always wrapped together with ErrNetwork.
	ErrCircuitOpen = errors.New("circuit breaker open")
	// ErrEmptyPlaceName is returned by Resolve for blank input.
	ErrEmptyPlaceName = errors.New("place name is required")
)

// StatusError reports a non-success HTTP status from an upstream API.
type StatusError struct {
	API        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: upstream returned HTTP %d", e.API, e.StatusCode)
}

// Unwrap makes every StatusError match ErrNetwork.
func (e *StatusError) Unwrap() error {
	return ErrNetwork
}
