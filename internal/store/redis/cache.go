package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plugmarket/plugmarket/internal/domain"
)

// CacheIndex stores the serialized index document.
func (s *Store) CacheIndex(ctx context.Context, doc *domain.PluginIndexDocument, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultIndexTTL
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := s.client.Set(ctx, IndexKey(), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache index: %w", err)
	}
	return nil
}

// GetCachedIndex retrieves the cached index document.
// Returns (nil, nil) on cache miss.
func (s *Store) GetCachedIndex(ctx context.Context) (*domain.PluginIndexDocument, error) {
	data, err := s.client.Get(ctx, IndexKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get cached index: %w", err)
	}

	var doc domain.PluginIndexDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached index: %w", err)
	}
	return &doc, nil
}

// InvalidateIndex drops the cached index document.
func (s *Store) InvalidateIndex(ctx context.Context) error {
	if err := s.client.Del(ctx, IndexKey()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate index cache: %w", err)
	}
	return nil
}
