package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-lookup/internal/observability"
)

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 1 << 20

// BreakerSettings configures the optional per-API circuit breaker. The breaker
// only short-circuits calls while open; it never retries.
type BreakerSettings struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Option configures an upstream client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	breaker    *BreakerSettings
	logger     *zap.Logger
}

// WithHTTPClient replaces the default http.Client (whose Timeout is the
// constructor's timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithBreaker enables a circuit breaker in front of the API.
func WithBreaker(s BreakerSettings) Option {
	return func(o *options) { o.breaker = &s }
}

// WithLogger sets the logger used for breaker transitions.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// api performs GET requests against one upstream endpoint and decodes JSON.
type api struct {
	name       string
	baseURL    *url.URL
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
}

func newAPI(name, baseURL string, timeout time.Duration, opts []Option) (*api, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid %s URL: %w", name, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s URL %q: scheme and host required", name, baseURL)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	a := &api{name: name, baseURL: u, httpClient: hc}
	if o.breaker != nil {
		a.breaker = newBreaker(name, *o.breaker, o.logger)
		observability.SetCircuitBreakerState(name, float64(gobreaker.StateClosed))
	}
	return a, nil
}

func newBreaker(name string, s BreakerSettings, logger *zap.Logger) *gobreaker.CircuitBreaker[*http.Response] {
	threshold := s.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.SetCircuitBreakerState(name, float64(to))
			logger.Warn("circuit breaker state change",
				zap.String("api", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// getJSON issues GET baseURL?params and decodes a 2xx body into out.
func (a *api) getJSON(ctx context.Context, params url.Values, out interface{}) error {
	err := a.call(ctx, params, out)
	if err != nil {
		observability.RecordUpstreamError(a.name, string(CategorizeError(err)))
	}
	return err
}

func (a *api) call(ctx context.Context, params url.Values, out interface{}) error {
	u := *a.baseURL
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %s: build request: %w", ErrNetwork, a.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if corrID := observability.CorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	start := time.Now()
	resp, err := a.roundTrip(req)
	if err != nil {
		observability.RecordUpstreamCall(a.name, "error", time.Since(start))
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %s: %w", ErrNetwork, a.name, ErrCircuitOpen)
		}
		return fmt.Errorf("%w: %s: %w", ErrNetwork, a.name, err)
	}
	defer resp.Body.Close()
	observability.RecordUpstreamCall(a.name, statusLabel(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{API: a.name, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: %s: read response body: %w", ErrNetwork, a.name, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, a.name, err)
	}
	return nil
}

// roundTrip sends req, through the breaker when one is configured. 5xx and
// 429 count as breaker failures but the response is still handed back so the
// caller reports the status.
func (a *api) roundTrip(req *http.Request) (*http.Response, error) {
	if a.breaker == nil {
		return a.httpClient.Do(req)
	}
	resp, err := a.breaker.Execute(func() (*http.Response, error) {
		r, err := a.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
			return r, &StatusError{API: a.name, StatusCode: r.StatusCode}
		}
		return r, nil
	})
	if resp != nil {
		return resp, nil
	}
	return nil, err
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == http.StatusTooManyRequests {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
