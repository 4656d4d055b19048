package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"profiled/internal/profile"
	"profiled/pkg/platform/sentinel"
)

const snapshotKeyPrefix = "profile:snap:"

// RedisStore is a Redis-backed snapshot store. This is the recommended
// implementation for distributed deployments where multiple instances share
// the same snapshot population.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed snapshot store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Find(ctx context.Context, id string) (*profile.RawProfile, error) {
	payload, err := s.client.Get(ctx, snapshotKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find snapshot %q: %w", id, err)
	}

	var raw profile.RawProfile
	if err := json.Unmarshal(payload, &raw); err != nil {
		// Corrupt payload is indistinguishable from no data for the caller.
		return nil, sentinel.ErrNotFound
	}
	return &raw, nil
}

// Save stores a snapshot, optionally with a TTL. A zero ttl persists the key
// until an explicit Delete.
func (s *RedisStore) Save(ctx context.Context, id string, raw profile.RawProfile, ttl time.Duration) error {
	payload, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode snapshot %q: %w", id, err)
	}
	if err := s.client.Set(ctx, snapshotKeyPrefix+id, payload, ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot %q: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, snapshotKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete snapshot %q: %w", id, err)
	}
	return nil
}
