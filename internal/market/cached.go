package market

import (
	"context"
	"strings"
	"time"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
	"github.com/hanzobot/skills/stock-analysis/pkg/logger"
	"github.com/hanzobot/skills/stock-analysis/pkg/metrics"
	"github.com/hanzobot/skills/stock-analysis/pkg/redis"
)

// Cached stores raw snapshots in Redis. Signals are never cached, so a
// weights change takes effect on the next analysis.
type Cached struct {
	inner   contracts.Provider
	cache   *redis.Cache
	ttl     time.Duration
	logger  *logger.Logger
	metrics *metrics.Recorder
}

// NewCached wraps inner; with a disabled cache every call passes through
func NewCached(inner contracts.Provider, cache *redis.Cache, ttl time.Duration, log *logger.Logger, rec *metrics.Recorder) *Cached {
	if ttl <= 0 {
		ttl = redis.TTLSnapshot
	}
	return &Cached{
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
		logger:  log.WithField("module", "snapshot_cache"),
		metrics: rec,
	}
}

// Fetch implements contracts.Provider
func (c *Cached) Fetch(ctx context.Context, ticker string) (*contracts.MarketSnapshot, error) {
	if !c.cache.Enabled() {
		return c.inner.Fetch(ctx, ticker)
	}

	key := redis.SnapshotKey(ticker)

	var snap contracts.MarketSnapshot
	hit, err := c.cache.Get(ctx, key, &snap)
	switch {
	case err != nil:
		c.metrics.RecordCacheLookup("error")
		c.logger.WithTicker(ticker).WithError(err).Warn("Snapshot cache read failed")
	case hit:
		c.metrics.RecordCacheLookup("hit")
		return &snap, nil
	default:
		c.metrics.RecordCacheLookup("miss")
	}

	fresh, err := c.inner.Fetch(ctx, strings.ToUpper(ticker))
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, fresh, c.ttl); err != nil {
		c.logger.WithTicker(ticker).WithError(err).Warn("Snapshot cache write failed")
	}
	return fresh, nil
}
