package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWebhookDedupeStore remembers processed webhook event ids in Redis so
// duplicate gateway deliveries become no-ops across all instances.
type RedisWebhookDedupeStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisWebhookDedupeStore creates a dedupe store on an existing Redis client
func NewRedisWebhookDedupeStore(client *redis.Client, keyPrefix string) *RedisWebhookDedupeStore {
	if keyPrefix == "" {
		keyPrefix = "webhook:dedupe:"
	}
	return &RedisWebhookDedupeStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// IsProcessed reports whether the key was already recorded.
func (s *RedisWebhookDedupeStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check webhook event id: %w", err)
	}
	return count > 0, nil
}

// SetIfAbsent records the key and reports true when it was not yet present.
// SETNX with TTL is a single atomic operation, so concurrent deliveries of
// the same event resolve to exactly one winner.
func (s *RedisWebhookDedupeStore) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record webhook event id: %w", err)
	}
	return result, nil
}
