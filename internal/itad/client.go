// Package itad provides an IsThereAnyDeal API client abstracted behind an
// interface for testability.
package itad

import (
	"context"

	domain "github.com/gamedealer/gamedealer/pkg/types"
)

// DealsRequest defines the parameters for a deals listing fetch.
type DealsRequest struct {
	ShopIDs []int
	Offset  int
	Limit   int
	Country string
	Sort    string // default "-cut"
}

// DealsResponse holds one page of deal results.
type DealsResponse struct {
	Items   []DealItem
	Offset  int
	Limit   int
	HasMore bool
}

// Client defines the interface for interacting with the ITAD API.
type Client interface {
	Deals(ctx context.Context, req DealsRequest) (*DealsResponse, error)
	Stats(ctx context.Context, kind domain.PopularitySourceKind, limit int) ([]StatsItem, error)
}
