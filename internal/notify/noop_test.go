package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/gamedealer/gamedealer/pkg/types"
)

func TestNoOpNotifier_SendDeal(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := n.SendDeal(context.Background(), &DealPayload{
		Title:           "Hades",
		Store:           "Steam",
		DiscountPercent: 75,
	})
	require.NoError(t, err)
}

func TestNoOpNotifier_SendDealBatch(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	deals := []DealPayload{
		{Title: "Hades", Store: "Steam", DiscountPercent: 75},
		{Title: "Celeste", Store: "GOG", DiscountPercent: 80},
	}

	err := n.SendDealBatch(context.Background(), deals, "cycle-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n.Discarded())
}

func TestNoOpNotifier_CountsDiscards(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Zero(t, n.Discarded())

	require.NoError(t, n.SendDeal(context.Background(), &DealPayload{Title: "Hades"}))
	require.NoError(t, n.SendDealBatch(context.Background(), []DealPayload{
		{Title: "Hades"}, {Title: "Celeste"}, {Title: "Factorio"},
	}, "cycle-2"))

	assert.Equal(t, int64(4), n.Discarded())
}

func TestNoOpNotifier_SendDealBatch_Empty(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := n.SendDealBatch(context.Background(), nil, "cycle-empty")
	require.NoError(t, err)
}

func TestNewDealPayload(t *testing.T) {
	t.Parallel()

	entry := domain.RankedEntry{
		Rank: 2,
		MatchResult: domain.MatchResult{
			Listing: domain.Listing{
				Title:           "Hades",
				Store:           "Steam",
				CurrentPrice:    decimal.NewFromFloat(6.24),
				RegularPrice:    decimal.NewFromFloat(24.99),
				DiscountPercent: 75,
				URL:             "https://example.com/deal",
			},
			CatalogEntry:    &domain.CatalogEntry{Title: "Hades", Priority: 8},
			PopularityScore: 72,
		},
	}

	p := NewDealPayload(entry)
	assert.Equal(t, "Hades", p.Title)
	assert.Equal(t, "Steam", p.Store)
	assert.Equal(t, "$6.24", p.Price)
	assert.Equal(t, "$24.99", p.RegularPrice)
	assert.Equal(t, 75, p.DiscountPercent)
	assert.Equal(t, 2, p.Rank)
	assert.Equal(t, 8, p.Priority)
	assert.InDelta(t, 72.0, p.PopularityScore, 0.001)
}

func TestNewDealPayload_Unmatched(t *testing.T) {
	t.Parallel()

	entry := domain.RankedEntry{
		MatchResult: domain.MatchResult{
			Listing: domain.Listing{
				Title:           "Baton 3000",
				Store:           "Steam",
				CurrentPrice:    decimal.NewFromFloat(0.79),
				RegularPrice:    decimal.NewFromFloat(15.99),
				DiscountPercent: 95,
			},
		},
	}

	p := NewDealPayload(entry)
	assert.Equal(t, 0, p.Priority)
}

// compile-time interface check.
var _ Notifier = (*NoOpNotifier)(nil)
