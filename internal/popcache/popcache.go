// Package popcache caches resolved popularity-source snapshots with a
// time-to-live.
//
// Popularity lists change slowly, so the cache is read-mostly: a snapshot
// is fetched at most once per TTL window and served to every ranking pass
// in between. The engine receives an already-resolved snapshot and is
// unaware of refresh timing.
package popcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gamedealer/gamedealer/pkg/logger"
	"github.com/gamedealer/gamedealer/pkg/popularity"
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

// DefaultTTL is how long a snapshot stays fresh.
const DefaultTTL = time.Hour

// defaultLimit is how many records are fetched per source list.
const defaultLimit = 500

// FetchFunc retrieves one popularity list from the upstream API.
type FetchFunc func(
	ctx context.Context,
	kind domain.PopularitySourceKind,
	limit int,
) ([]domain.PopularityRecord, error)

// sourceKinds is the fixed set of lists one snapshot covers.
var sourceKinds = []domain.PopularitySourceKind{
	domain.SourceMostPopular,
	domain.SourceMostWaitlisted,
	domain.SourceMostCollected,
}

// Cache serves popularity snapshots, refreshing them on expiry.
type Cache struct {
	fetch   FetchFunc
	ttl     time.Duration
	limit   int
	logger  *slog.Logger
	nowFunc func() time.Time

	mu        sync.Mutex
	snapshot  []popularity.Source
	fetchedAt time.Time
}

// Option configures the Cache.
type Option func(*Cache)

// WithTTL overrides the default snapshot TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLimit overrides how many records are fetched per source list.
func WithLimit(limit int) Option {
	return func(c *Cache) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(c *Cache) {
		c.nowFunc = f
	}
}

// New creates a Cache on top of a fetch function.
func New(fetch FetchFunc, opts ...Option) *Cache {
	c := &Cache{
		fetch:   fetch,
		ttl:     DefaultTTL,
		limit:   defaultLimit,
		logger:  logger.Nop(),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sources returns the current snapshot, refreshing it first when the TTL
// has expired. Concurrent callers during a refresh serialize on the cache
// mutex, so the upstream is hit once per expiry. When a refresh fails but
// a previous snapshot exists, the stale snapshot is served instead of an
// error — popularity evidence degrades, it does not abort ranking.
func (c *Cache) Sources(ctx context.Context) ([]popularity.Source, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && c.nowFunc().Sub(c.fetchedAt) < c.ttl {
		return c.snapshot, nil
	}

	fresh, err := c.fetchAll(ctx)
	if err != nil {
		if c.snapshot != nil {
			c.logger.Warn("popularity refresh failed, serving stale snapshot",
				"age", c.nowFunc().Sub(c.fetchedAt),
				"err", err,
			)
			return c.snapshot, nil
		}
		return nil, err
	}

	c.snapshot = fresh
	c.fetchedAt = c.nowFunc()
	return c.snapshot, nil
}

// Refresh forces a fetch regardless of TTL.
func (c *Cache) Refresh(ctx context.Context) error {
	fresh, err := c.fetchAll(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.snapshot = fresh
	c.fetchedAt = c.nowFunc()
	c.mu.Unlock()
	return nil
}

// Age returns how old the current snapshot is, or zero when none exists.
func (c *Cache) Age() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return 0
	}
	return c.nowFunc().Sub(c.fetchedAt)
}

// fetchAll pulls every source list. A single failing list is skipped with
// a warning; the fetch only fails when no list could be loaded.
func (c *Cache) fetchAll(ctx context.Context) ([]popularity.Source, error) {
	sources := make([]popularity.Source, 0, len(sourceKinds))
	var errs []error

	for _, kind := range sourceKinds {
		records, err := c.fetch(ctx, kind, c.limit)
		if err != nil {
			c.logger.Warn("failed to fetch popularity source", "kind", kind, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
			continue
		}
		sources = append(sources, popularity.Source{Kind: kind, Records: records})
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("fetching popularity sources: %w", errors.Join(errs...))
	}
	return sources, nil
}
