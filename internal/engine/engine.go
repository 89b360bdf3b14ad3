// Package engine orchestrates deal cycles: fetching discounted listings,
// ranking them against the catalog and popularity snapshots, and notifying
// the top page.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gamedealer/gamedealer/internal/itad"
	"github.com/gamedealer/gamedealer/internal/metrics"
	"github.com/gamedealer/gamedealer/internal/notify"
	"github.com/gamedealer/gamedealer/pkg/popularity"
	"github.com/gamedealer/gamedealer/pkg/rank"
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

const (
	defaultMinDiscount = 30
	defaultPageSize    = 10
)

// ListingFetcher fetches discounted listings for a set of stores.
type ListingFetcher interface {
	FetchListings(ctx context.Context, stores []string, minDiscount int) (*itad.FetchResult, error)
}

// PopularityProvider supplies the current popularity snapshot.
type PopularityProvider interface {
	Sources(ctx context.Context) ([]popularity.Source, error)
	Refresh(ctx context.Context) error
}

// Catalog supplies immutable catalog snapshots.
type Catalog interface {
	Snapshot() []domain.CatalogEntry
}

// Engine orchestrates fetching, ranking, and notification.
type Engine struct {
	fetcher  ListingFetcher
	catalog  Catalog
	pop      PopularityProvider
	pipeline *rank.Pipeline
	notifier notify.Notifier
	log      *slog.Logger

	stores            []string
	minDiscount       int
	includeAssetFlips bool
	pageSize          int
	staggerOffset     time.Duration
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	f ListingFetcher,
	c Catalog,
	p PopularityProvider,
	pipe *rank.Pipeline,
	n notify.Notifier,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		fetcher:       f,
		catalog:       c,
		pop:           p,
		pipeline:      pipe,
		notifier:      n,
		log:           slog.Default(),
		minDiscount:   defaultMinDiscount,
		pageSize:      defaultPageSize,
		staggerOffset: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithStores sets the stores fetched each cycle. Unset means the
// fetcher's default store set.
func WithStores(stores []string) EngineOption {
	return func(e *Engine) {
		e.stores = stores
	}
}

// WithMinDiscount sets the discount floor below which fetching stops.
func WithMinDiscount(percent int) EngineOption {
	return func(e *Engine) {
		e.minDiscount = percent
	}
}

// WithIncludeAssetFlips keeps suspected asset flips in the ranked output.
func WithIncludeAssetFlips(include bool) EngineOption {
	return func(e *Engine) {
		e.includeAssetFlips = include
	}
}

// WithPageSize sets the page size for ranked output.
func WithPageSize(size int) EngineOption {
	return func(e *Engine) {
		e.pageSize = size
	}
}

// WithStaggerOffset sets the delay between launching per-store fetches.
func WithStaggerOffset(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.staggerOffset = d
	}
}

// CycleResult summarizes one completed deal cycle.
type CycleResult struct {
	CycleID          string        `json:"cycle_id"`
	ListingsFetched  int           `json:"listings_fetched"`
	Skipped          int           `json:"skipped"`
	Ranked           int           `json:"ranked"`
	FlipsDropped     int           `json:"flips_dropped"`
	Pages            int           `json:"pages"`
	StoresFailed     int           `json:"stores_failed"`
	Duration         time.Duration `json:"duration"`
	TopPage          domain.Page   `json:"top_page,omitempty"`
	RemainingPages   []domain.Page `json:"-"`
	NotificationSent bool          `json:"notification_sent"`
}

// RunDealCycle executes one full cycle: fetch every configured store,
// rank the combined listings, and notify the top page.
func (eng *Engine) RunDealCycle(ctx context.Context) (*CycleResult, error) {
	cycleID := uuid.NewString()
	start := time.Now()
	defer func() {
		metrics.CycleDuration.Observe(time.Since(start).Seconds())
	}()

	eng.log.Info("deal cycle starting", "cycle", cycleID, "stores", eng.stores)

	listings, failed, err := eng.fetchAllStores(ctx, cycleID)
	if err != nil {
		return nil, err
	}

	sources, srcErr := eng.pop.Sources(ctx)
	if srcErr != nil {
		// Absent popularity data scores zero; it never blocks a cycle.
		eng.log.Warn("popularity snapshot unavailable", "cycle", cycleID, "error", srcErr)
		sources = nil
	}

	catalog := eng.catalog.Snapshot()

	results, skipped := eng.pipeline.EvaluateAll(listings, catalog, sources)
	metrics.CycleListingsTotal.Add(float64(len(listings)))
	metrics.CycleSkippedTotal.Add(float64(skipped))
	for i := range results {
		metrics.MatchConfidenceDistribution.Observe(results[i].MatchConfidence)
		metrics.PopularityScoreDistribution.Observe(results[i].PopularityScore)
	}

	ranked := eng.pipeline.Rank(results, eng.includeAssetFlips)
	flipsDropped := len(results) - len(ranked)
	if flipsDropped > 0 {
		metrics.AssetFlipsDroppedTotal.Add(float64(flipsDropped))
	}

	pages, err := rank.Paginate(ranked, eng.pageSize)
	if err != nil {
		return nil, fmt.Errorf("paginating ranked deals: %w", err)
	}

	res := &CycleResult{
		CycleID:         cycleID,
		ListingsFetched: len(listings),
		Skipped:         skipped,
		Ranked:          len(ranked),
		FlipsDropped:    flipsDropped,
		Pages:           len(pages),
		StoresFailed:    failed,
		Duration:        time.Since(start),
	}

	if len(pages) > 0 {
		res.TopPage = pages[0]
		res.RemainingPages = pages[1:]
		res.NotificationSent = eng.notifyTopPage(ctx, cycleID, pages[0])
	}

	eng.log.Info("deal cycle complete",
		"cycle", cycleID,
		"listings", res.ListingsFetched,
		"skipped", res.Skipped,
		"ranked", res.Ranked,
		"flips_dropped", res.FlipsDropped,
		"pages", res.Pages,
		"duration", res.Duration,
	)

	return res, nil
}

// fetchAllStores fetches each configured store concurrently and merges the
// results. A store failing is logged and counted; the cycle only fails
// when every store does.
func (eng *Engine) fetchAllStores(
	ctx context.Context,
	cycleID string,
) ([]domain.Listing, int, error) {
	groups := make([][]string, 0, len(eng.stores))
	for _, store := range eng.stores {
		groups = append(groups, []string{store})
	}
	if len(groups) == 0 {
		// No stores configured: one fetch against the fetcher defaults.
		groups = append(groups, nil)
	}

	// Each goroutine writes its own slot; the merge below concatenates
	// slots in configuration order, keeping cycles reproducible no matter
	// which store answers first.
	var (
		wg       sync.WaitGroup
		byGroup  = make([][]domain.Listing, len(groups))
		errGroup = make([]error, len(groups))
	)

	for i, group := range groups {
		wg.Add(1)
		go func(i int, group []string) {
			defer wg.Done()

			// Stagger launches to avoid API bursts.
			if i > 0 && eng.staggerOffset > 0 {
				select {
				case <-ctx.Done():
					errGroup[i] = ctx.Err()
					return
				case <-time.After(time.Duration(i) * eng.staggerOffset):
				}
			}

			result, err := eng.fetcher.FetchListings(ctx, group, eng.minDiscount)
			if err != nil {
				if errors.Is(err, itad.ErrDailyBudgetExhausted) {
					eng.log.Warn("daily request budget exhausted",
						"cycle", cycleID, "stores", group)
				} else {
					eng.log.Error("store fetch failed",
						"cycle", cycleID, "stores", group, "error", err)
				}
				metrics.CycleErrorsTotal.Inc()
				errGroup[i] = err
				return
			}

			byGroup[i] = result.Listings
			eng.log.Info("store fetch complete",
				"cycle", cycleID,
				"stores", group,
				"listings", len(result.Listings),
				"pages_used", result.PagesUsed,
				"stopped_at", result.StoppedAt,
			)
		}(i, group)
	}

	wg.Wait()

	var (
		listings  []domain.Listing
		fetchErrs []error
	)
	for i := range groups {
		if errGroup[i] != nil {
			fetchErrs = append(fetchErrs, errGroup[i])
			continue
		}
		listings = append(listings, byGroup[i]...)
	}

	if len(fetchErrs) == len(groups) {
		return nil, len(fetchErrs), fmt.Errorf(
			"all store fetches failed: %w", errors.Join(fetchErrs...))
	}

	return listings, len(fetchErrs), nil
}

func (eng *Engine) notifyTopPage(ctx context.Context, cycleID string, top domain.Page) bool {
	payloads := make([]notify.DealPayload, 0, len(top))
	for _, entry := range top {
		payloads = append(payloads, notify.NewDealPayload(entry))
	}

	if err := eng.notifier.SendDealBatch(ctx, payloads, cycleID); err != nil {
		eng.log.Error("top page notification failed", "cycle", cycleID, "error", err)
		return false
	}
	return true
}

// RunPopularityRefresh forces a refresh of the popularity cache.
func (eng *Engine) RunPopularityRefresh(ctx context.Context) error {
	if err := eng.pop.Refresh(ctx); err != nil {
		return fmt.Errorf("refreshing popularity cache: %w", err)
	}
	return nil
}
