package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-lookup/internal/controller"
	"github.com/kjstillabower/weather-lookup/internal/models"
	"github.com/kjstillabower/weather-lookup/internal/observability"
	"github.com/kjstillabower/weather-lookup/internal/render"
	"github.com/kjstillabower/weather-lookup/internal/session"
	"github.com/kjstillabower/weather-lookup/internal/validation"
)

const serviceName = "weather-ui"

// Handler serves the page and the three user actions.
type Handler struct {
	ctrl          *controller.Controller
	store         session.Store
	page          *render.Page
	logger        *zap.Logger
	cityMaxLength int

	shuttingDown     atomic.Bool
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(ctrl *controller.Controller, store session.Store, page *render.Page, logger *zap.Logger, cityMaxLength int) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		ctrl:          ctrl,
		store:         store,
		page:          page,
		logger:        logger,
		cityMaxLength: cityMaxLength,
	}
}

// SetShuttingDown makes /health report shutting-down.
func (h *Handler) SetShuttingDown(v bool) {
	h.shuttingDown.Store(v)
}

// GetPage handles GET /. Every load starts a new session.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	unit, err := models.ParseUnit(r.URL.Query().Get("unit"))
	if err != nil {
		unit = models.UnitMetric
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	err = h.page.Render(w, render.PageData{
		SessionID:      uuid.NewString(),
		CityMaxLength:  h.cityMaxLength,
		Locate:         h.ctrl.LocateOptions(),
		LoadingMessage: controller.MsgLoading,
		FailureMessage: controller.MsgFetchFailed,
		View:           render.Initial(unit),
	})
	if err != nil {
		observability.LoggerFrom(r.Context(), h.logger).Error("render page", zap.Error(err))
	}
}

// PostSearch handles POST /actions/search.
func (h *Handler) PostSearch(w http.ResponseWriter, r *http.Request) {
	sess, unit, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	frames := &render.Frames{}
	next, outcome := h.ctrl.Search(r.Context(), sess, r.PostFormValue("city"), unit, frames)
	h.respond(w, r, next, outcome, frames)
}

// PostLocate handles POST /actions/locate. The browser has already asked the
// platform; this adapts its answer to a controller.Locator.
func (h *Handler) PostLocate(w http.ResponseWriter, r *http.Request) {
	sess, unit, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	locator, err := browserLocator(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATES", err.Error())
		return
	}
	frames := &render.Frames{}
	next, outcome := h.ctrl.Locate(r.Context(), sess, unit, locator, frames)
	h.respond(w, r, next, outcome, frames)
}

// PostUnits handles POST /actions/units.
func (h *Handler) PostUnits(w http.ResponseWriter, r *http.Request) {
	sess, unit, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	frames := &render.Frames{}
	next, outcome := h.ctrl.ToggleUnit(r.Context(), sess, unit, frames)
	h.respond(w, r, next, outcome, frames)
}

// browserLocator turns the posted geolocation result into a Locator. A nil
// Locator means the browser has no geolocation.
func browserLocator(r *http.Request) (controller.Locator, error) {
	if strings.EqualFold(r.PostFormValue("supported"), "false") {
		return nil, nil
	}
	if _, failed := r.PostForm["error"]; failed {
		msg := r.PostFormValue("error")
		return controller.LocatorFunc(func(ctx context.Context, _ models.LocateOptions) (models.Coordinates, error) {
			return models.Coordinates{}, &controller.GeolocationError{Message: msg}
		}), nil
	}
	lat, lon, err := validation.ParseCoordinates(r.PostFormValue("lat"), r.PostFormValue("lon"))
	if err != nil {
		return nil, err
	}
	coords := models.Coordinates{Latitude: lat, Longitude: lon}
	return controller.LocatorFunc(func(ctx context.Context, _ models.LocateOptions) (models.Coordinates, error) {
		return coords, nil
	}), nil
}

// loadSession validates the posted session id and unit, fetches the stored
// state and records the unit on it. A store failure degrades to a fresh session.
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (models.Session, models.Unit, bool) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_FORM", "malformed form body")
		return models.Session{}, "", false
	}
	id, err := validation.ValidateSessionID(r.PostFormValue("session"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_SESSION", "session id is missing or invalid")
		return models.Session{}, "", false
	}
	unit, err := models.ParseUnit(r.PostFormValue("unit"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_UNIT", err.Error())
		return models.Session{}, "", false
	}

	sess, found, err := h.store.Get(r.Context(), id)
	if err != nil {
		observability.LoggerFrom(r.Context(), h.logger).Warn("session load failed", zap.Error(err))
	}
	if !found || err != nil {
		sess = models.Session{ID: id}
	}
	// The posted unit is the page's current selection. Saving it now lets an
	// action still in flight for this session fetch in it.
	if sess.Unit != unit {
		sess.Unit = unit
		if err := h.store.Set(r.Context(), sess); err != nil {
			observability.LoggerFrom(r.Context(), h.logger).Warn("session save failed", zap.Error(err))
		}
	}
	return sess, unit, true
}

// respond saves the session and writes the final frame. Ignored and superseded
// actions produce 204 so the page keeps what it shows.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, next models.Session, outcome controller.Outcome, frames *render.Frames) {
	if outcome == controller.OutcomeIgnored || outcome == controller.OutcomeSuperseded {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.store.Set(r.Context(), next); err != nil {
		observability.LoggerFrom(r.Context(), h.logger).Warn("session save failed", zap.Error(err))
	}

	vm, ok := frames.Last()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, vm)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.RenderPanels(w, vm); err != nil {
		observability.LoggerFrom(r.Context(), h.logger).Error("render panels", zap.Error(err))
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status, statusCode, reason := "healthy", http.StatusOK, ""
	checks := map[string]string{"sessionStore": "healthy"}

	if err := h.store.Ping(r.Context()); err != nil {
		checks["sessionStore"] = "unhealthy"
		status, statusCode, reason = "degraded", http.StatusServiceUnavailable, "session_store_unreachable"
	}
	if h.shuttingDown.Load() {
		status, statusCode, reason = "shutting-down", http.StatusServiceUnavailable, "signal"
	}

	h.healthStatusMu.Lock()
	if prev := h.healthStatusPrev; prev != "" && prev != status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", status),
			zap.String("reason", reason))
	}
	h.healthStatusPrev = status
	h.healthStatusMu.Unlock()

	writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   serviceName,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeJSON writes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the standard error envelope with the request's
// correlation id as requestId.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": observability.CorrelationID(r.Context()),
		},
	})
}
