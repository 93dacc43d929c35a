package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/seek/internal/domain"
)

// SaveCatalogExtras stores the bangs loaded from the catalog file
func (s *Store) SaveCatalogExtras(ctx context.Context, extras []domain.BangDefinition) error {
	data, err := json.Marshal(extras)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog extras: %w", err)
	}
	if err := s.client.Set(ctx, KeyCatalogExtras, data, DefaultCatalogTTL).Err(); err != nil {
		return fmt.Errorf("failed to save catalog extras: %w", err)
	}
	return nil
}

// GetCatalogExtras returns the last saved catalog extension, nil when absent
func (s *Store) GetCatalogExtras(ctx context.Context) ([]domain.BangDefinition, error) {
	data, err := s.client.Get(ctx, KeyCatalogExtras).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get catalog extras: %w", err)
	}

	var extras []domain.BangDefinition
	if err := json.Unmarshal(data, &extras); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog extras: %w", err)
	}
	return extras, nil
}
