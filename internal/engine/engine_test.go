package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gamedealer/gamedealer/internal/itad"
	"github.com/gamedealer/gamedealer/internal/notify"
	"github.com/gamedealer/gamedealer/pkg/popularity"
	"github.com/gamedealer/gamedealer/pkg/rank"
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchListings(
	ctx context.Context,
	stores []string,
	minDiscount int,
) (*itad.FetchResult, error) {
	args := m.Called(ctx, stores, minDiscount)
	if result := args.Get(0); result != nil {
		return result.(*itad.FetchResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPopularity struct {
	mock.Mock
}

func (m *mockPopularity) Sources(ctx context.Context) ([]popularity.Source, error) {
	args := m.Called(ctx)
	if sources := args.Get(0); sources != nil {
		return sources.([]popularity.Source), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPopularity) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendDeal(ctx context.Context, deal *notify.DealPayload) error {
	return m.Called(ctx, deal).Error(0)
}

func (m *mockNotifier) SendDealBatch(
	ctx context.Context,
	deals []notify.DealPayload,
	cycleID string,
) error {
	return m.Called(ctx, deals, cycleID).Error(0)
}

// staticCatalog is a Catalog stub with a fixed snapshot.
type staticCatalog struct {
	entries []domain.CatalogEntry
}

func (c *staticCatalog) Snapshot() []domain.CatalogEntry {
	return c.entries
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func listing(title, store string, current, regular float64, discount int) domain.Listing {
	return domain.Listing{
		Title:           title,
		Store:           store,
		CurrentPrice:    decimal.NewFromFloat(current),
		RegularPrice:    decimal.NewFromFloat(regular),
		DiscountPercent: discount,
		URL:             "https://example.com/deal",
	}
}

func testCatalog() *staticCatalog {
	return &staticCatalog{entries: []domain.CatalogEntry{
		{Title: "Hades", Priority: 8, Category: "Roguelike"},
		{Title: "Celeste", Priority: 7, Category: "Platformer"},
	}}
}

func testSources() []popularity.Source {
	return []popularity.Source{{
		Kind: domain.SourceMostWaitlisted,
		Records: []domain.PopularityRecord{
			{Title: "Hades", WaitlistedCount: 420, PopularityRank: 3},
		},
	}}
}

func fetchResult(listings ...domain.Listing) *itad.FetchResult {
	return &itad.FetchResult{
		Listings:  listings,
		TotalSeen: len(listings),
		PagesUsed: 1,
		StoppedAt: "no_more_results",
	}
}

func newTestEngine(
	f ListingFetcher,
	c Catalog,
	p PopularityProvider,
	n notify.Notifier,
	opts ...EngineOption,
) *Engine {
	base := []EngineOption{
		WithLogger(quietLogger()),
		WithStaggerOffset(0),
	}
	return NewEngine(f, c, p, rank.NewPipeline(), n, append(base, opts...)...)
}

func TestRunDealCycle_EndToEnd(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	mf.On("FetchListings", mock.Anything, mock.Anything, 30).
		Return(fetchResult(
			listing("Hades: Complete Edition", "Steam", 6.24, 24.99, 75),
			listing("Premium Baton Simulator", "Steam", 0.79, 15.99, 95),
		), nil).Once()
	mp.On("Sources", mock.Anything).Return(testSources(), nil).Once()
	mn.On("SendDealBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	eng := newTestEngine(mf, testCatalog(), mp, mn)
	res, err := eng.RunDealCycle(context.Background())
	require.NoError(t, err)

	_, parseErr := uuid.Parse(res.CycleID)
	assert.NoError(t, parseErr)

	assert.Equal(t, 2, res.ListingsFetched)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 1, res.Ranked, "the asset flip should be dropped")
	assert.Equal(t, 1, res.FlipsDropped)
	assert.Equal(t, 1, res.Pages)
	assert.True(t, res.NotificationSent)

	require.Len(t, res.TopPage, 1)
	assert.Equal(t, "Hades: Complete Edition", res.TopPage[0].MatchResult.Listing.Title)
	assert.Equal(t, 0, res.TopPage[0].Rank)

	mf.AssertExpectations(t)
	mp.AssertExpectations(t)
	mn.AssertExpectations(t)
}

func TestRunDealCycle_MergesStores(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	mf.On("FetchListings", mock.Anything, []string{"steam"}, 30).
		Return(fetchResult(listing("Hades", "Steam", 6.24, 24.99, 75)), nil).Once()
	mf.On("FetchListings", mock.Anything, []string{"gog"}, 30).
		Return(fetchResult(listing("Celeste", "GOG", 3.99, 19.99, 80)), nil).Once()
	mp.On("Sources", mock.Anything).Return(testSources(), nil).Once()
	mn.On("SendDealBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	eng := newTestEngine(mf, testCatalog(), mp, mn,
		WithStores([]string{"steam", "gog"}))

	res, err := eng.RunDealCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.ListingsFetched)
	assert.Equal(t, 2, res.Ranked)
	assert.Equal(t, 0, res.StoresFailed)

	mf.AssertExpectations(t)
}

func TestRunDealCycle_MergeOrderFollowsStoreConfig(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	// Two uncatalogued listings with identical sort keys: their relative
	// order in the ranked output is whatever order the merge produced.
	// The first store answers last, so a completion-order merge would
	// flip them.
	mf.On("FetchListings", mock.Anything, []string{"steam"}, 30).
		After(20*time.Millisecond).
		Return(fetchResult(listing("Obscure Gem One", "Steam", 4.99, 9.99, 50)), nil).Once()
	mf.On("FetchListings", mock.Anything, []string{"gog"}, 30).
		Return(fetchResult(listing("Obscure Gem Two", "GOG", 4.99, 9.99, 50)), nil).Once()
	mp.On("Sources", mock.Anything).Return(nil, nil).Once()
	mn.On("SendDealBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	eng := newTestEngine(mf, testCatalog(), mp, mn,
		WithStores([]string{"steam", "gog"}))

	res, err := eng.RunDealCycle(context.Background())
	require.NoError(t, err)

	require.Len(t, res.TopPage, 2)
	assert.Equal(t, "Steam", res.TopPage[0].MatchResult.Listing.Store)
	assert.Equal(t, "GOG", res.TopPage[1].MatchResult.Listing.Store)
}

func TestRunDealCycle_PartialStoreFailure(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	mf.On("FetchListings", mock.Anything, []string{"steam"}, 30).
		Return(fetchResult(listing("Hades", "Steam", 6.24, 24.99, 75)), nil).Once()
	mf.On("FetchListings", mock.Anything, []string{"gog"}, 30).
		Return(nil, errors.New("connection refused")).Once()
	mp.On("Sources", mock.Anything).Return(testSources(), nil).Once()
	mn.On("SendDealBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	eng := newTestEngine(mf, testCatalog(), mp, mn,
		WithStores([]string{"steam", "gog"}))

	res, err := eng.RunDealCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.ListingsFetched)
	assert.Equal(t, 1, res.StoresFailed)
}

func TestRunDealCycle_AllStoresFail(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	mf.On("FetchListings", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused")).Twice()

	eng := newTestEngine(mf, testCatalog(), mp, mn,
		WithStores([]string{"steam", "gog"}))

	_, err := eng.RunDealCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all store fetches failed")

	mn.AssertNotCalled(t, "SendDealBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunDealCycle_PopularityUnavailable(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	mf.On("FetchListings", mock.Anything, mock.Anything, mock.Anything).
		Return(fetchResult(listing("Hades", "Steam", 6.24, 24.99, 75)), nil).Once()
	mp.On("Sources", mock.Anything).
		Return(nil, errors.New("all sources down")).Once()
	mn.On("SendDealBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	eng := newTestEngine(mf, testCatalog(), mp, mn)

	res, err := eng.RunDealCycle(context.Background())
	require.NoError(t, err, "missing popularity data must not fail the cycle")

	require.Len(t, res.TopPage, 1)
	assert.Zero(t, res.TopPage[0].MatchResult.PopularityScore)
}

func TestRunDealCycle_EmptyFetch(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	mf.On("FetchListings", mock.Anything, mock.Anything, mock.Anything).
		Return(fetchResult(), nil).Once()
	mp.On("Sources", mock.Anything).Return(testSources(), nil).Once()

	eng := newTestEngine(mf, testCatalog(), mp, mn)

	res, err := eng.RunDealCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, res.ListingsFetched)
	assert.Equal(t, 0, res.Pages)
	assert.False(t, res.NotificationSent)

	mn.AssertNotCalled(t, "SendDealBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunDealCycle_SkipsMalformedListings(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	bad := listing("", "Steam", 1.99, 9.99, 80)

	mf.On("FetchListings", mock.Anything, mock.Anything, mock.Anything).
		Return(fetchResult(
			listing("Hades", "Steam", 6.24, 24.99, 75),
			bad,
		), nil).Once()
	mp.On("Sources", mock.Anything).Return(testSources(), nil).Once()
	mn.On("SendDealBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	eng := newTestEngine(mf, testCatalog(), mp, mn)

	res, err := eng.RunDealCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.ListingsFetched)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Ranked)
}

func TestRunDealCycle_NotifierFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	mf.On("FetchListings", mock.Anything, mock.Anything, mock.Anything).
		Return(fetchResult(listing("Hades", "Steam", 6.24, 24.99, 75)), nil).Once()
	mp.On("Sources", mock.Anything).Return(testSources(), nil).Once()
	mn.On("SendDealBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("discord rate limited (429)")).Once()

	eng := newTestEngine(mf, testCatalog(), mp, mn)

	res, err := eng.RunDealCycle(context.Background())
	require.NoError(t, err)
	assert.False(t, res.NotificationSent)
}

func TestRunDealCycle_IncludeAssetFlips(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	mf.On("FetchListings", mock.Anything, mock.Anything, mock.Anything).
		Return(fetchResult(
			listing("Hades", "Steam", 6.24, 24.99, 75),
			listing("Premium Baton Simulator", "Steam", 0.79, 15.99, 95),
		), nil).Once()
	mp.On("Sources", mock.Anything).Return(testSources(), nil).Once()
	mn.On("SendDealBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	eng := newTestEngine(mf, testCatalog(), mp, mn, WithIncludeAssetFlips(true))

	res, err := eng.RunDealCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Ranked)
	assert.Equal(t, 0, res.FlipsDropped)
}

func TestRunDealCycle_NotifiesTopPageOnly(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	listings := make([]domain.Listing, 0, 7)
	titles := []string{
		"Hades", "Celeste", "Hollow Knight", "Stardew Valley",
		"Undertale", "Terraria", "Factorio",
	}
	for i, title := range titles {
		listings = append(listings, listing(title, "Steam", 4.99, 19.99, 60+i))
	}

	mf.On("FetchListings", mock.Anything, mock.Anything, mock.Anything).
		Return(fetchResult(listings...), nil).Once()
	mp.On("Sources", mock.Anything).Return(testSources(), nil).Once()
	mn.On("SendDealBatch", mock.Anything, mock.MatchedBy(func(deals []notify.DealPayload) bool {
		return len(deals) == 5
	}), mock.Anything).Return(nil).Once()

	eng := newTestEngine(mf, testCatalog(), mp, mn, WithPageSize(5))

	res, err := eng.RunDealCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Pages)
	require.Len(t, res.TopPage, 5)
	require.Len(t, res.RemainingPages, 1)

	mn.AssertExpectations(t)
}

func TestRunPopularityRefresh(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	mp.On("Refresh", mock.Anything).Return(nil).Once()

	eng := newTestEngine(mf, testCatalog(), mp, mn)
	require.NoError(t, eng.RunPopularityRefresh(context.Background()))

	mp.AssertExpectations(t)
}

func TestRunPopularityRefresh_Error(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	mp.On("Refresh", mock.Anything).Return(errors.New("itad unreachable")).Once()

	eng := newTestEngine(mf, testCatalog(), mp, mn)
	err := eng.RunPopularityRefresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refreshing popularity cache")
}
