package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestMetrics_Usable verifies label dimensions match usage in client, controller and http.
func TestMetrics_Usable(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("POST", "/actions/search", "2xx").Inc()
	HTTPRequestDuration.WithLabelValues("POST", "/actions/search").Observe(0.01)
	RecordUpstreamCall("geocode", "success", 50*time.Millisecond)
	RecordUpstreamCall("forecast", "server_error", 80*time.Millisecond)
	RecordUpstreamError("forecast", "upstream_5xx")
	SetCircuitBreakerState("forecast", 2)
	RecordAction("search", "rendered", 120*time.Millisecond)
	RecordAction("units", "ignored", 0)
	SessionStoreErrorsTotal.WithLabelValues("get").Inc()
	RateLimitDeniedTotal.Inc()
}

func TestMetricsHandler_ServesPrometheusFormat(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("GET", "/", "2xx").Inc()
	RecordAction("search", "rendered", time.Millisecond)

	handler := MetricsHandler()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("MetricsHandler status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, name := range []string{"httpRequestsTotal", "actionsTotal"} {
		if !strings.Contains(body, name) {
			t.Errorf("MetricsHandler response missing %s", name)
		}
	}
}
