package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "founder:session:"

// RedisRegistry stores sessions in Redis with a TTL matching their expiry.
type RedisRegistry struct {
	client *redis.Client
}

// NewRedisRegistry returns a registry backed by client.
func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

// Create stores s until it expires.
func (r *RedisRegistry) Create(ctx context.Context, s *Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: %s already expired", s.ID)
	}
	if errSet := r.client.Set(ctx, redisKeyPrefix+s.ID, s, ttl).Err(); errSet != nil {
		return fmt.Errorf("session: store: %w", errSet)
	}
	return nil
}

// Get returns the live session with id.
func (r *RedisRegistry) Get(ctx context.Context, id string) (*Session, error) {
	var s Session
	errGet := r.client.Get(ctx, redisKeyPrefix+id).Scan(&s)
	if errors.Is(errGet, redis.Nil) {
		return nil, ErrNotFound
	}
	if errGet != nil {
		return nil, fmt.Errorf("session: load: %w", errGet)
	}
	if s.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Revoke deletes the session.
func (r *RedisRegistry) Revoke(ctx context.Context, id string) error {
	if errDel := r.client.Del(ctx, redisKeyPrefix+id).Err(); errDel != nil {
		return fmt.Errorf("session: revoke: %w", errDel)
	}
	return nil
}
