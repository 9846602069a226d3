package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces session keys in a shared Redis instance.
const redisKeyPrefix = "session:"

// RedisStore implements Store backed by Redis. Expiry is delegated to
// Redis TTLs, so DeleteExpired is a no-op.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(token string) string {
	return redisKeyPrefix + token
}

func (r *RedisStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}

	return r.client.Set(ctx, redisKey(session.Token), payload, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	payload, err := r.client.Get(ctx, redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}

	if session.IsExpired() {
		_ = r.client.Del(ctx, redisKey(token)).Err()
		return nil, ErrSessionExpired
	}

	return &session, nil
}

func (r *RedisStore) Update(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	exists, err := r.client.Exists(ctx, redisKey(session.Token)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrSessionNotFound
	}

	return r.Create(ctx, session)
}

func (r *RedisStore) UpdateActivity(ctx context.Context, token string, lastActivity time.Time) error {
	session, err := r.Get(ctx, token)
	if err != nil {
		return err
	}

	session.LastActivityAt = lastActivity
	return r.Create(ctx, session)
}

func (r *RedisStore) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, redisKey(token)).Err()
}

// DeleteExpired is a no-op; Redis evicts sessions via key TTLs.
func (r *RedisStore) DeleteExpired(ctx context.Context) error {
	return nil
}
