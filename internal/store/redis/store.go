package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultResolvedTTL is the default TTL of a user's resolved bang table (10 minutes)
	DefaultResolvedTTL = 10 * time.Minute
	// DefaultCacheTTL is the default TTL for cached search responses (5 minutes)
	DefaultCacheTTL = 5 * time.Minute
	// DefaultCatalogTTL keeps the last good catalog extension around (7 days)
	DefaultCatalogTTL = 7 * 24 * time.Hour
)

// Store handles Redis operations for resolved bangs, search cache and usage
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Ping reports whether Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
