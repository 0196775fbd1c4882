// Package controller runs the three user actions (city search, geolocation
// lookup and unit toggle) and turns every outcome into a rendered view.
package controller

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-lookup/internal/client"
	"github.com/kjstillabower/weather-lookup/internal/models"
	"github.com/kjstillabower/weather-lookup/internal/observability"
	"github.com/kjstillabower/weather-lookup/internal/render"
	"github.com/kjstillabower/weather-lookup/internal/validation"
)

// User-facing messages.
const (
	MsgLoading        = "Loading…"
	MsgCityNotFound   = "City not found. Try again."
	MsgCityTooLong    = "City name is too long."
	MsgFetchFailed    = "Could not fetch weather data. Please try again."
	MsgLocateNotAvail = "Geolocation is not supported by your browser."
	MsgLocateFailed   = "Unable to retrieve your location."
)

// Action names used in logs and metrics.
const (
	ActionSearch = "search"
	ActionLocate = "locate"
	ActionUnits  = "units"
)

// Outcome is how an action ended.
type Outcome string

const (
	// OutcomeIgnored means nothing happened: no network, no render.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeRendered means weather was displayed.
	OutcomeRendered Outcome = "rendered"
	// OutcomeNotFound means the geocoder had no match.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeFailed means an error line was displayed.
	OutcomeFailed Outcome = "failed"
	// OutcomeSuperseded means a newer action was issued for the same session
	// before this one completed; its result must not be shown.
	OutcomeSuperseded Outcome = "superseded"
)

// View receives every display state an action passes through.
type View interface {
	Render(vm render.ViewModel)
}

// Sequencer issues per-session tokens. The action holding the latest token is
// the only one allowed to finish rendering.
type Sequencer interface {
	NextToken(ctx context.Context, id string) (uint64, error)
	LatestToken(ctx context.Context, id string) (uint64, error)
}

// SessionState is the session storage consulted while an action runs. Get
// supplies the unit selected on the page at the moment of each fetch.
type SessionState interface {
	Sequencer
	Get(ctx context.Context, id string) (models.Session, bool, error)
}

// Controller wires the clients to the view.
type Controller struct {
	geocoder      client.Geocoder
	forecaster    client.Forecaster
	state         SessionState
	logger        *zap.Logger
	cityMaxLength int
	locateOptions models.LocateOptions
}

// New creates a Controller. state may be nil, in which case every action is
// treated as current and fetches use the unit passed to the action.
// cityMaxLength <= 0 uses validation.DefaultCityMaxLength.
func New(geocoder client.Geocoder, forecaster client.Forecaster, state SessionState, logger *zap.Logger, cityMaxLength int) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cityMaxLength <= 0 {
		cityMaxLength = validation.DefaultCityMaxLength
	}
	return &Controller{
		geocoder:      geocoder,
		forecaster:    forecaster,
		state:         state,
		logger:        logger,
		cityMaxLength: cityMaxLength,
		locateOptions: models.DefaultLocateOptions,
	}
}

// LocateOptions returns the preferences handed to the platform geolocation API.
func (c *Controller) LocateOptions() models.LocateOptions {
	return c.locateOptions
}

// Search resolves query and renders its weather. Blank input is ignored.
// On a geocoder match the location is stored in the returned session even if
// the weather fetch then fails.
func (c *Controller) Search(ctx context.Context, sess models.Session, query string, unit models.Unit, view View) (models.Session, Outcome) {
	start := time.Now()
	next, outcome := c.search(ctx, sess, query, unit, view)
	c.finish(ctx, ActionSearch, outcome, start)
	return next, outcome
}

func (c *Controller) search(ctx context.Context, sess models.Session, query string, unit models.Unit, view View) (models.Session, Outcome) {
	if strings.TrimSpace(query) == "" {
		return sess, OutcomeIgnored
	}
	t := c.begin(ctx, sess.ID)

	city, err := validation.ValidateCity(query, c.cityMaxLength)
	if err != nil {
		view.Render(errored(unit, MsgCityTooLong))
		return sess, OutcomeFailed
	}

	view.Render(loading(unit))

	loc, found, err := c.geocoder.Resolve(ctx, city)
	if c.superseded(ctx, t) {
		return sess, OutcomeSuperseded
	}
	if err != nil {
		c.fail(ctx, ActionSearch, err, unit, view)
		return sess, OutcomeFailed
	}
	if !found {
		observability.LoggerFrom(ctx, c.logger).Debug("city not found", zap.String("city", city))
		view.Render(errored(unit, MsgCityNotFound))
		return sess, OutcomeNotFound
	}

	next := sess
	next.Location = &loc
	outcome, used := c.fetch(ctx, t, ActionSearch, sess.ID, loc, unit, view)
	if outcome == OutcomeSuperseded {
		return sess, outcome
	}
	next.Unit = used
	return next, outcome
}

// ToggleUnit re-fetches the stored location in the new unit. Without a stored
// location it does nothing.
func (c *Controller) ToggleUnit(ctx context.Context, sess models.Session, unit models.Unit, view View) (models.Session, Outcome) {
	start := time.Now()
	next, outcome := c.toggleUnit(ctx, sess, unit, view)
	c.finish(ctx, ActionUnits, outcome, start)
	return next, outcome
}

func (c *Controller) toggleUnit(ctx context.Context, sess models.Session, unit models.Unit, view View) (models.Session, Outcome) {
	next := sess
	next.Unit = unit
	if sess.Location == nil {
		return next, OutcomeIgnored
	}
	t := c.begin(ctx, sess.ID)
	view.Render(loading(unit))
	outcome, used := c.fetch(ctx, t, ActionUnits, sess.ID, *sess.Location, unit, view)
	if outcome == OutcomeSuperseded {
		return sess, outcome
	}
	next.Unit = used
	return next, outcome
}

// fetch loads weather for loc and renders it or the failure message. The unit
// is read from the session just before the request so a toggle made while the
// action was geocoding applies; unit is the fallback. It returns the unit used.
func (c *Controller) fetch(ctx context.Context, t token, action, sessionID string, loc models.Location, unit models.Unit, view View) (Outcome, models.Unit) {
	unit = c.currentUnit(ctx, sessionID, unit)
	snap, err := c.forecaster.FetchWeather(ctx, loc.Latitude, loc.Longitude, unit)
	if c.superseded(ctx, t) {
		return OutcomeSuperseded, unit
	}
	if err != nil {
		c.fail(ctx, action, err, unit, view)
		return OutcomeFailed, unit
	}
	view.Render(render.Weather(loc, snap, unit))
	return OutcomeRendered, unit
}

// currentUnit returns the unit stored for the session, or fallback when there
// is none or the store cannot be read.
func (c *Controller) currentUnit(ctx context.Context, sessionID string, fallback models.Unit) models.Unit {
	if c.state == nil || sessionID == "" {
		return fallback
	}
	sess, found, err := c.state.Get(ctx, sessionID)
	if err != nil {
		observability.LoggerFrom(ctx, c.logger).Warn("session unit unavailable", zap.Error(err))
		return fallback
	}
	if !found || sess.Unit == "" {
		return fallback
	}
	return sess.Unit
}

// fail logs an upstream error with its category and shows the generic message.
func (c *Controller) fail(ctx context.Context, action string, err error, unit models.Unit, view View) {
	observability.LoggerFrom(ctx, c.logger).Warn("weather lookup failed",
		zap.String("action", action),
		zap.String("category", string(client.CategorizeError(err))),
		zap.Error(err))
	view.Render(errored(unit, MsgFetchFailed))
}

func (c *Controller) finish(ctx context.Context, action string, outcome Outcome, start time.Time) {
	observability.RecordAction(action, string(outcome), time.Since(start))
	if outcome == OutcomeSuperseded {
		observability.LoggerFrom(ctx, c.logger).Debug("action superseded by a newer one", zap.String("action", action))
	}
}

func loading(unit models.Unit) render.ViewModel {
	vm := render.Initial(unit)
	vm.Status = MsgLoading
	return vm
}

// errored clears both display areas and shows msg.
func errored(unit models.Unit, msg string) render.ViewModel {
	vm := render.Initial(unit)
	vm.Error = msg
	return vm
}
