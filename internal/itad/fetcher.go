package itad

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gamedealer/gamedealer/pkg/logger"
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

const (
	defaultFetchPageSize = 200
	defaultMaxPages      = 5
)

// Fetcher pages through /deals/v2 results for a set of stores and converts
// them to domain listings. Because the API returns deals sorted by
// descending discount, fetching stops as soon as a page falls below the
// minimum discount.
type Fetcher struct {
	client   Client
	logger   *slog.Logger
	pageSize int
	maxPages int
}

// FetcherOption configures the Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchPageSize overrides the default page size.
func WithFetchPageSize(size int) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.pageSize = size
		}
	}
}

// WithFetchMaxPages overrides the default max pages per fetch.
func WithFetchMaxPages(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxPages = n
		}
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a Fetcher on top of an API client.
func NewFetcher(client Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:   client,
		logger:   logger.Nop(),
		pageSize: defaultFetchPageSize,
		maxPages: defaultMaxPages,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchResult holds the outcome of one paged fetch.
type FetchResult struct {
	Listings  []domain.Listing
	TotalSeen int
	PagesUsed int
	StoppedAt string // "below_min_discount", "max_pages", "no_more_results"
}

// FetchListings pulls current deals for the named stores, keeping listings
// at or above minDiscount. Unknown store names fall back to the default
// store set.
func (f *Fetcher) FetchListings(
	ctx context.Context,
	stores []string,
	minDiscount int,
) (*FetchResult, error) {
	shopIDs := ShopIDs(stores)
	if len(shopIDs) == 0 {
		f.logger.Warn("no known stores in filter, using defaults", "stores", stores)
		shopIDs = DefaultShopIDs()
	}

	req := DealsRequest{
		ShopIDs: shopIDs,
		Limit:   f.pageSize,
	}

	result := &FetchResult{}

	for page := range f.maxPages {
		req.Offset = page * f.pageSize

		resp, err := f.client.Deals(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("fetching deals page %d: %w", page, err)
		}

		result.PagesUsed++

		if len(resp.Items) == 0 {
			result.StoppedAt = "no_more_results"
			return result, nil
		}

		var belowFloor bool
		for _, listing := range ToListings(resp.Items) {
			result.TotalSeen++

			if listing.DiscountPercent < minDiscount {
				// Sorted by -cut: everything after this is shallower.
				belowFloor = true
				break
			}

			result.Listings = append(result.Listings, listing)
		}

		if belowFloor {
			result.StoppedAt = "below_min_discount"
			return result, nil
		}

		if !resp.HasMore {
			result.StoppedAt = "no_more_results"
			return result, nil
		}
	}

	result.StoppedAt = "max_pages"
	return result, nil
}

// FetchPopularity pulls one popularity list and converts it to domain
// records.
func (f *Fetcher) FetchPopularity(
	ctx context.Context,
	kind domain.PopularitySourceKind,
	limit int,
) ([]domain.PopularityRecord, error) {
	items, err := f.client.Stats(ctx, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching %s stats: %w", kind, err)
	}
	return ToPopularityRecords(kind, items), nil
}
