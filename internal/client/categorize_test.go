package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ""},
		{"deadline exceeded", fmt.Errorf("%w: forecast: %w", ErrNetwork, context.DeadlineExceeded), ErrorCategoryTimeout},
		{"canceled", context.Canceled, ErrorCategoryTimeout},
		{"circuit open", fmt.Errorf("%w: geocode: %w", ErrNetwork, ErrCircuitOpen), ErrorCategoryCircuitOpen},
		{"429", &StatusError{API: "forecast", StatusCode: 429}, ErrorCategoryRateLimited},
		{"503", &StatusError{API: "forecast", StatusCode: 503}, ErrorCategoryUpstream5xx},
		{"400", fmt.Errorf("wrapped: %w", &StatusError{API: "geocode", StatusCode: 400}), ErrorCategoryUpstream4xx},
		{"parse", fmt.Errorf("%w: forecast: bad json", ErrMalformedResponse), ErrorCategoryParsing},
		{"transport", fmt.Errorf("%w: geocode: connection refused", ErrNetwork), ErrorCategoryNetwork},
		{"unknown", errors.New("something else"), ErrorCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeError(tt.err); got != tt.want {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestStatusError_IsNetworkError(t *testing.T) {
	err := fmt.Errorf("fetch: %w", &StatusError{API: "forecast", StatusCode: 502})
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("errors.Is(%v, ErrNetwork) = false, want true", err)
	}
	if got := err.Error(); got != "fetch: forecast: upstream returned HTTP 502" {
		t.Errorf("Error() = %q", got)
	}
}
