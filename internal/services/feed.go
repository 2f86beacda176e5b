package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"

	"office-panel/internal/cache"
	"office-panel/internal/metrics"
	"office-panel/internal/models"
)

const publishedFeedKey = "notices:published"

// noticeFeed caches the rendered published notice list. Any notice or device
// write drops it; failures of the cache never fail the caller.
//
// gen is bumped by every invalidation. A reader captures it before querying and
// set refuses to store a list read under an older generation.
type noticeFeed struct {
	cache cache.Cache
	log   *slog.Logger
	gen   atomic.Uint64
}

// generation returns the value readers pass back to set.
func (f *noticeFeed) generation() uint64 {
	if f == nil {
		return 0
	}
	return f.gen.Load()
}

func (f *noticeFeed) get(ctx context.Context) ([]models.Notice, bool) {
	if f == nil || f.cache == nil {
		return nil, false
	}
	raw, err := f.cache.Get(ctx, publishedFeedKey)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			f.log.Warn("feed cache read failed", slog.Any("error", err))
		}
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}

	var notices []models.Notice
	if err := json.Unmarshal(raw, &notices); err != nil {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.Inc()
	return notices, true
}

// set stores notices read at generation gen. An invalidation that lands while
// the value is being written deletes it again.
func (f *noticeFeed) set(ctx context.Context, gen uint64, notices []models.Notice) {
	if f == nil || f.cache == nil || f.gen.Load() != gen {
		return
	}
	raw, err := json.Marshal(notices)
	if err != nil {
		return
	}
	if err := f.cache.Set(ctx, publishedFeedKey, raw); err != nil {
		f.log.Warn("feed cache write failed", slog.Any("error", err))
		return
	}
	if f.gen.Load() != gen {
		f.drop(ctx)
	}
}

func (f *noticeFeed) invalidate(ctx context.Context) {
	if f == nil || f.cache == nil {
		return
	}
	f.gen.Add(1)
	f.drop(ctx)
}

func (f *noticeFeed) drop(ctx context.Context) {
	if err := f.cache.Delete(context.WithoutCancel(ctx), publishedFeedKey); err != nil {
		f.log.Warn("feed cache invalidation failed", slog.Any("error", err))
	}
}
