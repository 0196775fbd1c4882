package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weather-lookup/internal/observability"
)

// RouterConfig holds the per-route middleware settings.
type RouterConfig struct {
	RequestTimeout time.Duration
	// Limiter throttles /actions; nil disables rate limiting.
	Limiter *rate.Limiter
}

// NewRouter mounts the page, actions, health and metrics routes.
func NewRouter(h *Handler, logger *zap.Logger, cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)

	router.HandleFunc("/", h.GetPage).Methods(http.MethodGet)
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	actions := router.PathPrefix("/actions").Subrouter()
	actions.Use(RecoverMiddleware(logger))
	actions.Use(RateLimitMiddleware(cfg.Limiter))
	actions.Use(TimeoutMiddleware(cfg.RequestTimeout))
	actions.HandleFunc("/search", h.PostSearch).Methods(http.MethodPost)
	actions.HandleFunc("/locate", h.PostLocate).Methods(http.MethodPost)
	actions.HandleFunc("/units", h.PostUnits).Methods(http.MethodPost)

	return router
}
