package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/kjstillabower/weather-lookup/internal/models"
)

const (
	memcachedSessionPrefix = "weather-ui:session:"
	memcachedTokenPrefix   = "weather-ui:token:"
	// maxRelativeExp is memcached's limit for relative expirations (30 days).
	maxRelativeExp = 30 * 24 * 60 * 60
)

// memcacheClient is the subset of *memcache.Client the store uses.
type memcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Add(item *memcache.Item) error
	Increment(key string, delta uint64) (uint64, error)
	Touch(key string, seconds int32) error
	Ping() error
	Close() error
}

// MemcachedStore implements Store using memcached.
type MemcachedStore struct {
	client memcacheClient
	expSec int32
}

// NewMemcachedStore creates a MemcachedStore. addrs is a comma-separated list
// (e.g. "localhost:11211" or "host1:11211,host2:11211"). timeout and
// maxIdleConns use package defaults if zero.
func NewMemcachedStore(addrs string, timeout time.Duration, maxIdleConns int, ttl time.Duration) *MemcachedStore {
	servers := parseAddrs(addrs)
	if len(servers) == 0 {
		servers = []string{"localhost:11211"}
	}
	client := memcache.New(servers...)
	if timeout > 0 {
		client.Timeout = timeout
	}
	if maxIdleConns > 0 {
		client.MaxIdleConns = maxIdleConns
	}

	return newMemcachedStore(client, ttl)
}

func newMemcachedStore(client memcacheClient, ttl time.Duration) *MemcachedStore {
	expSec := int32(normalizeTTL(ttl).Seconds())
	if expSec <= 0 || expSec > maxRelativeExp {
		expSec = int32(DefaultTTL.Seconds())
	}
	return &MemcachedStore{client: client, expSec: expSec}
}

func parseAddrs(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

func (s *MemcachedStore) Get(ctx context.Context, id string) (models.Session, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Session{}, false, err
	}
	item, err := s.client.Get(memcachedSessionPrefix + id)
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return models.Session{}, false, nil
		}
		return models.Session{}, false, err
	}
	var sess models.Session
	if err := json.Unmarshal(item.Value, &sess); err != nil {
		return models.Session{}, false, err
	}
	return sess, true, nil
}

func (s *MemcachedStore) Set(ctx context.Context, sess models.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sess.ID == "" {
		return ErrMissingID
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(&memcache.Item{
		Key:        memcachedSessionPrefix + sess.ID,
		Value:      raw,
		Expiration: s.expSec,
	})
}

// NextToken increments the session counter, seeding it with Add on first use.
// A lost Add race falls through to Increment again.
func (s *MemcachedStore) NextToken(ctx context.Context, id string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if id == "" {
		return 0, ErrMissingID
	}
	key := memcachedTokenPrefix + id
	for attempt := 0; attempt < 2; attempt++ {
		n, err := s.client.Increment(key, 1)
		if err == nil {
			// The counter must live as long as the session it sequences.
			if err := s.client.Touch(key, s.expSec); err != nil {
				return 0, fmt.Errorf("memcached: refresh token expiry: %w", err)
			}
			return n, nil
		}
		if !errors.Is(err, memcache.ErrCacheMiss) {
			return 0, err
		}
		err = s.client.Add(&memcache.Item{Key: key, Value: []byte("1"), Expiration: s.expSec})
		if err == nil {
			return 1, nil
		}
		if !errors.Is(err, memcache.ErrNotStored) {
			return 0, err
		}
	}
	return 0, errors.New("memcached: token counter contended")
}

func (s *MemcachedStore) LatestToken(ctx context.Context, id string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	item, err := s.client.Get(memcachedTokenPrefix + id)
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(string(item.Value)), 10, 64)
}

// Ping checks if memcached is reachable. Used for health checks.
func (s *MemcachedStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.client.Ping()
}

// Close closes the memcached client connections. Call during shutdown.
func (s *MemcachedStore) Close() error {
	return s.client.Close()
}
