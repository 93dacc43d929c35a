package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/seek/internal/index"
	"github.com/MrSnakeDoc/seek/internal/logger"
	"github.com/MrSnakeDoc/seek/internal/sources/catalogfile"
	redisstore "github.com/MrSnakeDoc/seek/internal/store/redis"
)

// CatalogReloader handles periodic reloading of the catalog extension file
type CatalogReloader struct {
	loader        *catalogfile.Loader
	mapper        *catalogfile.Mapper
	store         *redisstore.Store
	index         *index.CatalogIndex
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewCatalogReloader creates a new catalog reloader
func NewCatalogReloader(
	catalogFile string,
	store *redisstore.Store,
	idx *index.CatalogIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		loader:        catalogfile.NewLoader(catalogFile),
		mapper:        catalogfile.NewMapper(),
		store:         store,
		index:         idx,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic reload process
func (cr *CatalogReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := cr.Reload(ctx); err != nil {
		return fmt.Errorf("initial catalog reload failed: %w", err)
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog",
						logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual catalog reload triggered")
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog",
						logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (cr *CatalogReloader) Stop() {
	close(cr.stopCh)
}

// Reload reads the catalog file, swaps the extras into the index and
// drops every cached resolved table, which embeds the old catalog.
func (cr *CatalogReloader) Reload(ctx context.Context) error {
	if cr.loader.Path() == "" {
		cr.logger.Debug("no catalog file configured, serving built-in catalog")
		return nil
	}

	cr.logger.Info("reloading catalog file",
		logger.String("path", cr.loader.Path()))

	file, err := cr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog file: %w", err)
	}

	extras, skipped := cr.mapper.MapBangs(file)
	if len(skipped) > 0 {
		cr.logger.Warn("skipped invalid catalog entries",
			logger.Strings("entries", skipped))
	}

	rejected := cr.index.UpdateExtras(extras)
	for _, r := range rejected {
		cr.logger.Warn("catalog entry shadows an existing shortcut, ignored",
			logger.String("shortcut", r.Shortcut))
	}

	cr.logger.Info("catalog reloaded",
		logger.Int("extras", len(extras)-len(rejected)),
		logger.Int("total", cr.index.Count()))

	// Redis is a best-effort mirror; the index is the primary source
	if cr.store != nil {
		if err := cr.store.SaveCatalogExtras(ctx, cr.index.Extras()); err != nil {
			cr.logger.Warn("failed to save catalog extras to redis",
				logger.Error(err))
		}
		n, err := cr.store.FlushResolved(ctx)
		if err != nil {
			cr.logger.Warn("failed to flush resolved bang tables",
				logger.Error(err))
		} else if n > 0 {
			cr.logger.Debug("flushed resolved bang tables",
				logger.Int("count", n))
		}
	}

	return nil
}
