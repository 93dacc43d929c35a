package redis

import (
	"context"
	"fmt"
	"strings"
)

// UsageStat is the redirect count of one shortcut
type UsageStat struct {
	Shortcut string `json:"shortcut"`
	Count    int64  `json:"count"`
}

// IncrementUsage increments the redirect counter of a shortcut
func (s *Store) IncrementUsage(ctx context.Context, shortcut string) error {
	if err := s.client.ZIncrBy(ctx, KeyUsage, 1, strings.ToLower(shortcut)).Err(); err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}

// GetUsageStats returns the n most used shortcuts, most used first
func (s *Store) GetUsageStats(ctx context.Context, n int) ([]UsageStat, error) {
	if n <= 0 {
		return []UsageStat{}, nil
	}
	rows, err := s.client.ZRevRangeWithScores(ctx, KeyUsage, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get usage stats: %w", err)
	}

	stats := make([]UsageStat, 0, len(rows))
	for _, row := range rows {
		member, _ := row.Member.(string)
		stats = append(stats, UsageStat{Shortcut: member, Count: int64(row.Score)})
	}
	return stats, nil
}
