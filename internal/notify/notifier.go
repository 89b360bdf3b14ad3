// Package notify defines the notification interface and implementations
// for deal delivery.
package notify

import (
	"context"
	"fmt"

	domain "github.com/gamedealer/gamedealer/pkg/types"
)

// DealPayload contains the data needed to send a deal notification.
type DealPayload struct {
	Title           string
	Store           string
	DealURL         string
	Price           string
	RegularPrice    string
	DiscountPercent int
	Rank            int
	Priority        int
	PopularityScore float64
}

// NewDealPayload builds a notification payload from a ranked entry.
func NewDealPayload(e domain.RankedEntry) DealPayload {
	l := e.MatchResult.Listing
	return DealPayload{
		Title:           l.Title,
		Store:           l.Store,
		DealURL:         l.URL,
		Price:           fmt.Sprintf("$%s", l.CurrentPrice.StringFixed(2)),
		RegularPrice:    fmt.Sprintf("$%s", l.RegularPrice.StringFixed(2)),
		DiscountPercent: l.DiscountPercent,
		Rank:            e.Rank,
		Priority:        e.MatchResult.CatalogPriority(),
		PopularityScore: e.MatchResult.PopularityScore,
	}
}

// Notifier defines the interface for sending deal notifications.
type Notifier interface {
	SendDeal(ctx context.Context, deal *DealPayload) error
	SendDealBatch(ctx context.Context, deals []DealPayload, cycleID string) error
}
