package controller

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kjstillabower/weather-lookup/internal/models"
	"github.com/kjstillabower/weather-lookup/internal/render"
)

// ErrGeolocationUnsupported is returned by a Locator when the platform has no
// geolocation capability.
var ErrGeolocationUnsupported = errors.New("geolocation unsupported")

// GeolocationError is a denial or failure reported by the platform. Message is
// shown to the user when non-empty.
type GeolocationError struct {
	Message string
}

func (e *GeolocationError) Error() string {
	if e.Message == "" {
		return "geolocation failed"
	}
	return "geolocation failed: " + e.Message
}

// Locator asks the platform for the current position.
type Locator interface {
	Locate(ctx context.Context, opts models.LocateOptions) (models.Coordinates, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context, opts models.LocateOptions) (models.Coordinates, error)

// Locate calls f.
func (f LocatorFunc) Locate(ctx context.Context, opts models.LocateOptions) (models.Coordinates, error) {
	return f(ctx, opts)
}

// Locate looks up the platform position and renders its weather. A nil
// locator means geolocation is unsupported. While the platform is being asked,
// the trigger is disabled; it is re-enabled with its original label on every
// exit except supersession, where nothing more is rendered.
func (c *Controller) Locate(ctx context.Context, sess models.Session, unit models.Unit, locator Locator, view View) (models.Session, Outcome) {
	start := time.Now()
	next, outcome := c.locate(ctx, sess, unit, locator, view)
	c.finish(ctx, ActionLocate, outcome, start)
	return next, outcome
}

func (c *Controller) locate(ctx context.Context, sess models.Session, unit models.Unit, locator Locator, view View) (next models.Session, outcome Outcome) {
	t := c.begin(ctx, sess.ID)
	if locator == nil {
		view.Render(errored(unit, MsgLocateNotAvail))
		return sess, OutcomeFailed
	}

	bv := &buttonView{view: view, busy: true}
	defer func() {
		if outcome != OutcomeSuperseded {
			bv.restore()
		}
	}()
	bv.Render(render.Initial(unit))

	coords, err := locator.Locate(ctx, c.locateOptions)
	if c.superseded(ctx, t) {
		return sess, OutcomeSuperseded
	}
	if err != nil {
		bv.Render(errored(unit, geolocationMessage(err)))
		return sess, OutcomeFailed
	}

	loc := models.YourLocation(coords)
	next = sess
	next.Location = &loc
	bv.Render(loading(unit))
	outcome, next.Unit = c.fetch(ctx, t, ActionLocate, sess.ID, loc, unit, bv)
	if outcome == OutcomeSuperseded {
		return sess, outcome
	}
	return next, outcome
}

func geolocationMessage(err error) string {
	if errors.Is(err, ErrGeolocationUnsupported) {
		return MsgLocateNotAvail
	}
	var ge *GeolocationError
	if errors.As(err, &ge) && strings.TrimSpace(ge.Message) != "" {
		return ge.Message
	}
	return MsgLocateFailed
}

// buttonView holds the geolocation trigger busy on every frame until restore.
type buttonView struct {
	view View
	busy bool
	last *render.ViewModel
}

func (b *buttonView) Render(vm render.ViewModel) {
	if b.busy {
		vm.Locate = render.BusyLocateButton()
	}
	b.last = &vm
	b.view.Render(vm)
}

// restore re-renders the last frame with the trigger enabled.
func (b *buttonView) restore() {
	b.busy = false
	vm := render.Initial("")
	if b.last != nil {
		vm = *b.last
	}
	vm.Locate = render.IdleLocateButton()
	b.view.Render(vm)
}
