package itad

import (
	"github.com/shopspring/decimal"

	domain "github.com/gamedealer/gamedealer/pkg/types"
)

// ToListings converts ITAD deal items into domain listings.
func ToListings(items []DealItem) []domain.Listing {
	listings := make([]domain.Listing, 0, len(items))
	for i := range items {
		listings = append(listings, toListing(&items[i]))
	}
	return listings
}

func toListing(item *DealItem) domain.Listing {
	return domain.Listing{
		Title:           item.Title,
		Store:           DisplayName(item.Deal.Shop.Name),
		CurrentPrice:    decimal.NewFromFloat(item.Deal.Price.Amount),
		RegularPrice:    decimal.NewFromFloat(item.Deal.Regular.Amount),
		DiscountPercent: item.Deal.Cut,
		URL:             item.Deal.URL,
	}
}

// ToPopularityRecords converts stats entries of one popularity list into
// domain records. Waitlist and collection counts come from the same
// "count" field on the wire; which one it means depends on the list kind.
func ToPopularityRecords(
	kind domain.PopularitySourceKind,
	items []StatsItem,
) []domain.PopularityRecord {
	records := make([]domain.PopularityRecord, 0, len(items))
	for i := range items {
		records = append(records, toPopularityRecord(kind, &items[i]))
	}
	return records
}

func toPopularityRecord(
	kind domain.PopularitySourceKind,
	item *StatsItem,
) domain.PopularityRecord {
	rec := domain.PopularityRecord{
		Title:          item.Title,
		PopularityRank: item.Position,
	}

	switch kind {
	case domain.SourceMostWaitlisted:
		rec.WaitlistedCount = item.Count
	case domain.SourceMostCollected:
		rec.CollectedCount = item.Count
	case domain.SourceMostPopular:
		// Position-only list: the rank is the signal.
	}

	return rec
}
