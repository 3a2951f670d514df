package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyTTL = 24 * time.Hour
	// claimMarker holds a key while its first request is still creating the resource.
	claimMarker = "pending"
)

// IdempotencyStore remembers which resource an Idempotency-Key produced.
// Key format: idem:<scope>:<key>
type IdempotencyStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client redis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: idempotencyTTL}
}

// Claim sets the key to the claim marker with SETNX. Only one caller wins;
// the others get the stored id, or "" while the winner is still working.
func (s *IdempotencyStore) Claim(ctx context.Context, scope, key string) (string, bool, error) {
	k := idempotencyKey(scope, key)
	ok, err := s.client.SetNX(ctx, k, claimMarker, s.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("idempotency claim: %w", err)
	}
	if ok {
		return "", true, nil
	}

	id, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) || id == claimMarker {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency claim: %w", err)
	}
	return id, false, nil
}

// Remember replaces the claim marker with id and restarts the TTL.
func (s *IdempotencyStore) Remember(ctx context.Context, scope, key, id string) error {
	if err := s.client.Set(ctx, idempotencyKey(scope, key), id, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

// Release deletes the key while it still holds the claim marker.
func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	k := idempotencyKey(scope, key)
	v, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) || (err == nil && v != claimMarker) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	if err := s.client.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func idempotencyKey(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}
