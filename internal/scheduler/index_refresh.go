package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/plugmarket/plugmarket/internal/domain"
	"github.com/plugmarket/plugmarket/internal/github"
	"github.com/plugmarket/plugmarket/internal/index"
	"github.com/plugmarket/plugmarket/internal/logger"
	redisstore "github.com/plugmarket/plugmarket/internal/store/redis"
)

// IndexRefresher keeps the in-memory index snapshot (and the redis cache)
// in sync with the plugins.json published in the target repository.
type IndexRefresher struct {
	contents      *github.Client
	indexPath     string
	store         *redisstore.Store
	index         *index.MemoryIndex
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewIndexRefresher creates a new index refresher.
// store may be nil when redis is disabled.
func NewIndexRefresher(
	contents *github.Client,
	indexPath string,
	store *redisstore.Store,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *IndexRefresher {
	return &IndexRefresher{
		contents:      contents,
		indexPath:     indexPath,
		store:         store,
		index:         idx,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start refreshes once immediately, then periodically and on manual trigger.
// The initial refresh is best effort: the remote index may not exist yet
// and the service must still come up to accept the first submission.
func (ir *IndexRefresher) Start(ctx context.Context) error {
	if err := ir.Refresh(ctx); err != nil {
		ir.logger.Warn("initial index refresh failed, serving without snapshot",
			logger.Error(err))
	}

	ticker := time.NewTicker(ir.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := ir.Refresh(ctx); err != nil {
					ir.logger.Error("failed to refresh index", logger.Error(err))
				}
			case <-ir.manualTrigger:
				ir.logger.Info("manual index refresh triggered")
				if err := ir.Refresh(ctx); err != nil {
					ir.logger.Error("failed to refresh index", logger.Error(err))
				}
			case <-ir.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the refresher
func (ir *IndexRefresher) Stop() {
	close(ir.stopCh)
}

// Refresh fetches plugins.json and updates the memory snapshot + redis cache.
func (ir *IndexRefresher) Refresh(ctx context.Context) error {
	file, err := ir.contents.GetFile(ctx, ir.indexPath)
	if err != nil {
		if errors.Is(err, github.ErrNotFound) {
			// No index published yet: start from an empty catalog.
			ir.index.Update(domain.NewIndexDocument())
			ir.logger.Info("remote index not found, snapshot reset to empty")
			return nil
		}
		return fmt.Errorf("failed to fetch index: %w", err)
	}

	var doc domain.PluginIndexDocument
	if err := json.Unmarshal(file.Content, &doc); err != nil {
		return fmt.Errorf("failed to parse index: %w", err)
	}

	ir.index.Update(&doc)
	ir.logger.Info("index snapshot refreshed",
		logger.Int("plugins", len(doc.Plugins)),
		logger.String("last_updated", doc.LastUpdated))

	// Update redis cache (best effort)
	if ir.store != nil {
		if err := ir.store.CacheIndex(ctx, &doc, 0); err != nil {
			ir.logger.Warn("failed to cache index in redis", logger.Error(err))
		}
	}

	return nil
}
