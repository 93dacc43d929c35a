package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/seek/internal/index"
	"github.com/MrSnakeDoc/seek/internal/logger"
	redisstore "github.com/MrSnakeDoc/seek/internal/store/redis"
)

// RedisSyncer restores the last known catalog extras from Redis on startup,
// so the catalog is complete even when the catalog file is unreadable.
type RedisSyncer struct {
	store  *redisstore.Store
	index  *index.CatalogIndex
	logger logger.Logger
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(
	store *redisstore.Store,
	idx *index.CatalogIndex,
	log logger.Logger,
) *RedisSyncer {
	return &RedisSyncer{
		store:  store,
		index:  idx,
		logger: log,
	}
}

// Sync loads catalog extras from Redis and updates the index
func (rs *RedisSyncer) Sync(ctx context.Context) error {
	rs.logger.Info("syncing catalog extras from redis")

	extras, err := rs.store.GetCatalogExtras(ctx)
	if err != nil {
		return err
	}

	if len(extras) == 0 {
		rs.logger.Info("no catalog extras found in redis")
		return nil
	}

	rejected := rs.index.UpdateExtras(extras)

	rs.logger.Info("synced catalog extras from redis",
		logger.Int("count", len(extras)-len(rejected)))

	return nil
}
