package session

import (
	"context"
	"errors"
	"time"

	"github.com/kjstillabower/weather-lookup/internal/models"
)

// DefaultTTL is used when a backend is constructed with a non-positive TTL.
const DefaultTTL = 30 * time.Minute

// ErrMissingID is returned when a session or token operation has no id.
var ErrMissingID = errors.New("session id is required")

// Store keeps per-page UI state and the request sequence for each session.
// Get returns (session, true, nil) when present, (zero, false, nil) on miss
// or expiry. NextToken issues a strictly increasing token per id; LatestToken
// reports the most recently issued one (0 if none).
type Store interface {
	Get(ctx context.Context, id string) (models.Session, bool, error)
	Set(ctx context.Context, sess models.Session) error
	NextToken(ctx context.Context, id string) (uint64, error)
	LatestToken(ctx context.Context, id string) (uint64, error)
	Ping(ctx context.Context) error
	Close() error
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
