package redis

import (
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultLockTTL bounds how long an in-flight submission holds its id
	// when the handler dies without releasing (crash, lost connection).
	DefaultLockTTL = 2 * time.Minute
	// DefaultIndexTTL is the TTL of the cached index document.
	DefaultIndexTTL = 15 * time.Minute
)

// Store handles Redis operations for submission reservations and the
// cached index document.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}
