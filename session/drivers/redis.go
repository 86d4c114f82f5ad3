package drivers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/creastat/sessionstore"
	"github.com/creastat/sessionstore/session"
)

const (
	// Redis key prefix for sessions
	defaultKeyPrefix = "session:"
)

// RedisStore implements session.Store using Redis.
// Records with an expiration get a matching key TTL; Load also re-checks
// the stored expiration so clock skew never resurrects a record.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
	logger *slog.Logger
}

// redisValue is the JSON document stored under each key.
type redisValue struct {
	ID             session.ID     `json:"id"`
	ExpirationTime *time.Time     `json:"expiration_time,omitempty"`
	Data           map[string]any `json:"data"`
}

// NewRedisStore creates a new Redis-based session store.
// The client is owned by the caller and is never closed by the store.
func NewRedisStore(client redis.UniversalClient, opts ...StoreOption) *RedisStore {
	config := newStoreConfig(opts)
	return &RedisStore{
		client: client,
		prefix: config.keyPrefix,
		now:    config.now,
		logger: config.logger,
	}
}

// Save implements session.Store.
func (s *RedisStore) Save(ctx context.Context, record *session.Record) error {
	if record == nil {
		return sessionstore.ErrInvalidRecord
	}
	key := s.key(record.ID)

	var ttl time.Duration
	if record.ExpirationTime != nil {
		ttl = record.ExpirationTime.Sub(s.now())
		if ttl <= 0 {
			// Already expired: make sure no older value stays readable.
			s.logger.Debug("saving expired session, removing key", "session_id", record.ID.String())
			return s.wrap("save", s.client.Del(ctx, key).Err())
		}
	}

	val, err := json.Marshal(redisValue{
		ID:             record.ID,
		ExpirationTime: record.ExpirationTime,
		Data:           record.Data,
	})
	if err != nil {
		return fmt.Errorf("session: redis save: %w: %w", sessionstore.ErrSerialization, err)
	}

	return s.wrap("save", s.client.Set(ctx, key, val, ttl).Err())
}

// Load implements session.Store.
// Returns nil if the session is not found or has expired.
func (s *RedisStore) Load(ctx context.Context, id session.ID) (*session.Session, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, s.wrap("load", err)
	}

	var stored redisValue
	if err := json.Unmarshal(val, &stored); err != nil {
		if errors.Is(err, sessionstore.ErrInvalidID) {
			return nil, fmt.Errorf("session: redis load: %w", err)
		}
		return nil, fmt.Errorf("session: redis load: %w: %w", sessionstore.ErrSerialization, err)
	}

	record := session.Record{ID: stored.ID, ExpirationTime: stored.ExpirationTime, Data: stored.Data}
	if record.Expired(s.now()) {
		return nil, nil
	}
	return session.NewSession(record), nil
}

// Delete implements session.Store.
func (s *RedisStore) Delete(ctx context.Context, id session.ID) error {
	return s.wrap("delete", s.client.Del(ctx, s.key(id)).Err())
}

// key constructs the Redis key for a session ID.
func (s *RedisStore) key(id session.ID) string {
	return s.prefix + id.String()
}

func (s *RedisStore) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("session: redis %s: %w: %w", op, sessionstore.ErrBackend, err)
}
