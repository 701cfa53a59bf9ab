package store

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"go.ngs.io/gefs-api/internal/domain"
)

// CachedLoader memoizes a single Load result, keyed by the inner loader's
// Key. Concurrent callers for the in-flight key block on the one load
// instead of duplicating it; a key change evicts the previous entry; entries
// expire after ttl.
type CachedLoader struct {
	inner Loader
	ttl   time.Duration
	clock clockwork.Clock
	log   *zap.SugaredLogger

	mu      chan struct{} // held across the load so waiters block on it
	key     string
	ds      *domain.Dataset
	fetched time.Time

	// Hit, Miss, and Loaded are invoked under the slot lock, when set.
	OnHit    func()
	OnMiss   func()
	OnLoaded func(elapsed time.Duration)
}

// NewCachedLoader wraps inner with a single-entry cache. A zero ttl means
// entries never expire.
func NewCachedLoader(inner Loader, ttl time.Duration, clock clockwork.Clock, log *zap.SugaredLogger) *CachedLoader {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	c := &CachedLoader{
		inner: inner,
		ttl:   ttl,
		clock: clock,
		log:   log,
		mu:    make(chan struct{}, 1),
	}
	return c
}

// Key returns the inner loader's key.
func (c *CachedLoader) Key() string {
	return c.inner.Key()
}

// Load returns the cached dataset when fresh, otherwise performs at most one
// underlying load; concurrent callers wait for that single load and share
// its result.
func (c *CachedLoader) Load(ctx context.Context) (*domain.Dataset, error) {
	select {
	case c.mu <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.mu }()

	key := c.inner.Key()
	if c.ds != nil && c.key == key && !c.expired() {
		if c.OnHit != nil {
			c.OnHit()
		}
		return c.ds, nil
	}

	if c.OnMiss != nil {
		c.OnMiss()
	}
	c.log.Infow("loading forecast dataset", "key", key)
	t0 := c.clock.Now()
	ds, err := c.inner.Load(ctx)
	if err != nil {
		// Failed loads are not cached; the next caller retries.
		c.ds = nil
		return nil, err
	}
	c.key = key
	c.ds = ds
	c.fetched = c.clock.Now()
	elapsed := c.clock.Since(t0)
	if c.OnLoaded != nil {
		c.OnLoaded(elapsed)
	}
	c.log.Infow("forecast dataset loaded", "key", key, "elapsed", elapsed)
	return ds, nil
}

func (c *CachedLoader) expired() bool {
	if c.ttl <= 0 {
		return false
	}
	return c.clock.Since(c.fetched) >= c.ttl
}
