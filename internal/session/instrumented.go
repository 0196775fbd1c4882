package session

import (
	"context"

	"github.com/kjstillabower/weather-lookup/internal/models"
	"github.com/kjstillabower/weather-lookup/internal/observability"
)

// Instrumented counts backend errors per operation.
type Instrumented struct {
	Store
}

// Instrument wraps store so every failing call increments
// session_store_errors_total{op}.
func Instrument(store Store) *Instrumented {
	return &Instrumented{Store: store}
}

func record(op string, err error) {
	if err != nil {
		observability.SessionStoreErrorsTotal.WithLabelValues(op).Inc()
	}
}

func (i *Instrumented) Get(ctx context.Context, id string) (models.Session, bool, error) {
	sess, ok, err := i.Store.Get(ctx, id)
	record("get", err)
	return sess, ok, err
}

func (i *Instrumented) Set(ctx context.Context, sess models.Session) error {
	err := i.Store.Set(ctx, sess)
	record("set", err)
	return err
}

func (i *Instrumented) NextToken(ctx context.Context, id string) (uint64, error) {
	n, err := i.Store.NextToken(ctx, id)
	record("next_token", err)
	return n, err
}

func (i *Instrumented) LatestToken(ctx context.Context, id string) (uint64, error) {
	n, err := i.Store.LatestToken(ctx, id)
	record("latest_token", err)
	return n, err
}

func (i *Instrumented) Ping(ctx context.Context) error {
	err := i.Store.Ping(ctx)
	record("ping", err)
	return err
}
