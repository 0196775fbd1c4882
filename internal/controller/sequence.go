package controller

import (
	"context"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-lookup/internal/observability"
)

// token identifies one action within a session. A zero value is never stale.
type token struct {
	session string
	n       uint64
}

// begin takes a new token. Sequencing failures are logged and the action
// proceeds unsequenced.
func (c *Controller) begin(ctx context.Context, sessionID string) token {
	if c.state == nil || sessionID == "" {
		return token{}
	}
	n, err := c.state.NextToken(ctx, sessionID)
	if err != nil {
		observability.LoggerFrom(ctx, c.logger).Warn("request sequencing unavailable", zap.Error(err))
		return token{}
	}
	return token{session: sessionID, n: n}
}

// superseded reports whether a newer token than t has been issued.
func (c *Controller) superseded(ctx context.Context, t token) bool {
	if t.n == 0 {
		return false
	}
	latest, err := c.state.LatestToken(ctx, t.session)
	if err != nil {
		observability.LoggerFrom(ctx, c.logger).Warn("request sequencing unavailable", zap.Error(err))
		return false
	}
	return latest > t.n
}
