package blogcore

import (
	"context"
	"sync/atomic"
)

// TotalCache is a soft cache of the published post count shown on the
// unfiltered listing. Zero means not loaded; the first request that sees a
// miss recomputes and stores the count. Concurrent misses may each load,
// and the last store wins.
type TotalCache struct {
	n       atomic.Int64
	metrics *Metrics
}

// NewTotalCache returns an empty cache reporting to m (which may be nil).
func NewTotalCache(m *Metrics) *TotalCache {
	return &TotalCache{metrics: m}
}

// Get returns the cached count, calling load on a miss.
func (c *TotalCache) Get(ctx context.Context, load func(context.Context) (int64, error)) (int64, error) {
	if n := c.n.Load(); n > 0 {
		c.metrics.cacheResult("hit")
		return n, nil
	}
	c.metrics.cacheResult("miss")
	n, err := load(ctx)
	if err != nil {
		return 0, err
	}
	c.n.Store(n)
	return n, nil
}
