package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kjstillabower/weather-lookup/internal/models"
)

const (
	redisSessionPrefix = "weather-ui:session:"
	redisTokenPrefix   = "weather-ui:token:"
)

// RedisStore implements Store using redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore for addr.
func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	return NewRedisStoreFromClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), ttl)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: normalizeTTL(ttl)}
}

func (s *RedisStore) Get(ctx context.Context, id string) (models.Session, bool, error) {
	raw, err := s.client.Get(ctx, redisSessionPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, false, nil
		}
		return models.Session{}, false, err
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return models.Session{}, false, err
	}
	return sess, true, nil
}

func (s *RedisStore) Set(ctx context.Context, sess models.Session) error {
	if sess.ID == "" {
		return ErrMissingID
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisSessionPrefix+sess.ID, raw, s.ttl).Err()
}

func (s *RedisStore) NextToken(ctx context.Context, id string) (uint64, error) {
	if id == "" {
		return 0, ErrMissingID
	}
	key := redisTokenPrefix + id
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return uint64(incr.Val()), nil
}

func (s *RedisStore) LatestToken(ctx context.Context, id string) (uint64, error) {
	n, err := s.client.Get(ctx, redisTokenPrefix+id).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
