package session

import (
	"context"
	"sync"
	"time"

	"github.com/kjstillabower/weather-lookup/internal/models"
)

// InMemoryStore implements Store with a mutex-guarded map. Expired entries
// are removed on access.
type InMemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	session   *models.Session
	token     uint64
	expiresAt time.Time
}

// NewInMemoryStore creates an in-memory store whose entries expire ttl after
// their last write.
func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		ttl:     normalizeTTL(ttl),
		now:     time.Now,
		entries: make(map[string]*memoryEntry),
	}
}

// entry returns the live entry for id, dropping it if expired. Caller holds mu.
func (s *InMemoryStore) entry(id string) *memoryEntry {
	e, ok := s.entries[id]
	if !ok {
		return nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, id)
		return nil
	}
	return e
}

func (s *InMemoryStore) touch(id string) *memoryEntry {
	e := s.entry(id)
	if e == nil {
		e = &memoryEntry{}
		s.entries[id] = e
	}
	e.expiresAt = s.now().Add(s.ttl)
	return e
}

func (s *InMemoryStore) Get(ctx context.Context, id string) (models.Session, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Session{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(id)
	if e == nil || e.session == nil {
		return models.Session{}, false, nil
	}
	return cloneSession(*e.session), true, nil
}

func (s *InMemoryStore) Set(ctx context.Context, sess models.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sess.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneSession(sess)
	s.touch(sess.ID).session = &stored
	return nil
}

func (s *InMemoryStore) NextToken(ctx context.Context, id string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if id == "" {
		return 0, ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(id)
	e.token++
	return e.token, nil
}

func (s *InMemoryStore) LatestToken(ctx context.Context, id string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.entry(id); e != nil {
		return e.token, nil
	}
	return 0, nil
}

// Ping always succeeds.
func (s *InMemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *InMemoryStore) Close() error {
	return nil
}

// cloneSession copies the location so callers cannot mutate stored state.
func cloneSession(sess models.Session) models.Session {
	if sess.Location != nil {
		loc := *sess.Location
		sess.Location = &loc
	}
	return sess
}
