package redis

import (
	"context"
	"fmt"
	"time"
)

// Reserve claims a plugin id for the duration of one submission.
// Returns false when another submission currently holds the id.
// The reservation only narrows the duplicate race between concurrent
// submissions; the index document remains the authoritative check.
func (s *Store) Reserve(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	ok, err := s.client.SetNX(ctx, LockKey(id), time.Now().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve plugin id: %w", err)
	}
	return ok, nil
}

// Release frees a reservation taken with Reserve.
func (s *Store) Release(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, LockKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to release plugin id: %w", err)
	}
	return nil
}
