package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/seek/internal/domain"
)

// GetResolved returns the cached resolved table of a user.
// ok is false on a cache miss.
func (s *Store) GetResolved(ctx context.Context, userID string) (bangs []domain.MergedBang, ok bool, err error) {
	data, err := s.client.Get(ctx, ResolvedKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // Cache miss
		}
		return nil, false, fmt.Errorf("failed to get resolved bangs: %w", err)
	}

	if err := json.Unmarshal(data, &bangs); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal resolved bangs: %w", err)
	}
	return bangs, true, nil
}

// SaveResolved caches the resolved table of a user
func (s *Store) SaveResolved(ctx context.Context, userID string, bangs []domain.MergedBang, ttl time.Duration) error {
	data, err := json.Marshal(bangs)
	if err != nil {
		return fmt.Errorf("failed to marshal resolved bangs: %w", err)
	}
	if err := s.client.Set(ctx, ResolvedKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save resolved bangs: %w", err)
	}
	return nil
}

// InvalidateResolved drops the cached table of a user
func (s *Store) InvalidateResolved(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, ResolvedKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate resolved bangs: %w", err)
	}
	return nil
}

// FlushResolved drops every cached table, used after a catalog reload
func (s *Store) FlushResolved(ctx context.Context) (int, error) {
	return s.deleteByPattern(ctx, KeyPrefixResolved+"*")
}

func (s *Store) deleteByPattern(ctx context.Context, pattern string) (int, error) {
	deleted := 0
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("failed to delete key: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan %s: %w", pattern, err)
	}
	return deleted, nil
}
