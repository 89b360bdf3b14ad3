package itad_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedealer/gamedealer/internal/itad"
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

func TestToListings(t *testing.T) {
	t.Parallel()

	items := []itad.DealItem{
		{
			Title: "Hades",
			Deal: itad.DealInfo{
				Shop:    itad.Shop{ID: 61, Name: "Steam"},
				Price:   itad.Amount{Amount: 6.24, Currency: "USD"},
				Regular: itad.Amount{Amount: 24.99, Currency: "USD"},
				Cut:     75,
				URL:     "https://example.com/hades",
			},
		},
		{
			Title: "Celeste",
			Deal: itad.DealInfo{
				Shop:    itad.Shop{ID: 16, Name: "Epic Games Store"},
				Price:   itad.Amount{Amount: 0, Currency: "USD"},
				Regular: itad.Amount{Amount: 19.99, Currency: "USD"},
				Cut:     100,
				URL:     "https://example.com/celeste",
			},
		},
	}

	listings := itad.ToListings(items)
	require.Len(t, listings, 2)

	assert.Equal(t, "Hades", listings[0].Title)
	assert.Equal(t, "Steam", listings[0].Store)
	assert.True(t, listings[0].CurrentPrice.Equal(decimal.NewFromFloat(6.24)))
	assert.True(t, listings[0].RegularPrice.Equal(decimal.NewFromFloat(24.99)))
	assert.Equal(t, 75, listings[0].DiscountPercent)
	assert.Equal(t, "https://example.com/hades", listings[0].URL)

	// Shop names pass through the display-name mapping.
	assert.Equal(t, "Epic Game Store", listings[1].Store)
	assert.True(t, listings[1].CurrentPrice.IsZero())
	assert.Equal(t, 100, listings[1].DiscountPercent)
}

func TestToPopularityRecords(t *testing.T) {
	t.Parallel()

	items := []itad.StatsItem{
		{Title: "Hades", Count: 40210, Position: 2},
	}

	tests := []struct {
		name           string
		kind           domain.PopularitySourceKind
		wantWaitlisted int
		wantCollected  int
	}{
		{name: "waitlisted list fills waitlist count", kind: domain.SourceMostWaitlisted, wantWaitlisted: 40210},
		{name: "collected list fills collection count", kind: domain.SourceMostCollected, wantCollected: 40210},
		{name: "popular list carries rank only", kind: domain.SourceMostPopular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			records := itad.ToPopularityRecords(tt.kind, items)
			require.Len(t, records, 1)

			rec := records[0]
			assert.Equal(t, "Hades", rec.Title)
			assert.Equal(t, 2, rec.PopularityRank)
			assert.Equal(t, tt.wantWaitlisted, rec.WaitlistedCount)
			assert.Equal(t, tt.wantCollected, rec.CollectedCount)
		})
	}
}
