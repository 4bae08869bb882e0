package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"avroute/internal/model"
)

const redisKeyPrefix = "avroute:session:"

// Redis is the Store used when REDIS_URL is set, so sessions survive process
// restarts and are shared across replicas. Expiry is delegated to Redis key
// TTLs.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps an existing client. ttl <= 0 uses DefaultTTL.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func key(id string) string { return redisKeyPrefix + id }

func (r *Redis) save(ctx context.Context, s *model.RouteSession) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: marshal %s: %w", s.ID, err)
	}
	if err := r.client.Set(ctx, key(s.ID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("session: save %s: %w", s.ID, err)
	}
	return nil
}

func (r *Redis) load(ctx context.Context, id string) (*model.RouteSession, error) {
	raw, err := r.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: load %s: %w", id, err)
	}
	var s model.RouteSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", id, err)
	}
	return &s, nil
}

func (r *Redis) Create(ctx context.Context, s *model.RouteSession) error {
	return r.save(ctx, s)
}

func (r *Redis) Get(ctx context.Context, id string) (*model.RouteSession, error) {
	s, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	// reading keeps the session alive
	s.UpdatedAt = time.Now().UTC()
	if err := r.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Redis) ConfirmStop(ctx context.Context, id, ident string) (*model.RouteSession, error) {
	s, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := confirm(s, ident, now); err != nil {
		return nil, err
	}
	s.UpdatedAt = now
	if err := r.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, key(id)).Result()
	if err != nil {
		return fmt.Errorf("session: delete %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CleanupExpired is a no-op for Redis: key TTLs already evict eagerly.
func (r *Redis) CleanupExpired(context.Context) (int, error) { return 0, nil }

// Count scans for session keys. Redis evicts on TTL without telling us, so
// gauges derive the live count from here instead of tracking deltas.
func (r *Redis) Count(ctx context.Context) (int, error) {
	var cursor uint64
	n := 0
	for {
		keys, next, err := r.client.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("session: count: %w", err)
		}
		n += len(keys)
		if next == 0 {
			return n, nil
		}
		cursor = next
	}
}
