package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/seek/internal/logger"
)

// HistoryStore deletes search history entries older than a cutoff
type HistoryStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// HistoryPruner periodically removes search history past its retention
type HistoryPruner struct {
	store     HistoryStore
	logger    logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewHistoryPruner creates a pruner. A zero retention disables pruning.
func NewHistoryPruner(
	store HistoryStore,
	log logger.Logger,
	interval time.Duration,
	retention time.Duration,
) *HistoryPruner {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	return &HistoryPruner{
		store:     store,
		logger:    log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic pruning process
func (hp *HistoryPruner) Start(ctx context.Context) error {
	if hp.retention <= 0 {
		hp.logger.Info("history retention disabled, pruner not started")
		return nil
	}

	// Run immediately on start
	if _, err := hp.Prune(ctx); err != nil {
		hp.logger.Warn("initial history prune failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(hp.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := hp.Prune(ctx); err != nil {
					hp.logger.Error("history prune failed",
						logger.Error(err))
				}
			case <-hp.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the pruner
func (hp *HistoryPruner) Stop() {
	close(hp.stopCh)
}

// Prune deletes entries older than the retention window
func (hp *HistoryPruner) Prune(ctx context.Context) (int64, error) {
	if hp.retention <= 0 {
		return 0, nil
	}

	cutoff := hp.now().Add(-hp.retention)
	deleted, err := hp.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		hp.logger.Info("pruned search history",
			logger.Int64("deleted", deleted),
			logger.String("cutoff", cutoff.Format(time.RFC3339)))
	} else {
		hp.logger.Debug("no history to prune")
	}

	return deleted, nil
}
