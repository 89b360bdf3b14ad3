package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/gamedealer/gamedealer/pkg/popularity"
	"github.com/gamedealer/gamedealer/pkg/rank"
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

// CatalogProvider supplies immutable catalog snapshots.
type CatalogProvider interface {
	Snapshot() []domain.CatalogEntry
}

// SourceProvider supplies the current popularity snapshot.
type SourceProvider interface {
	Sources(ctx context.Context) ([]popularity.Source, error)
}

// RankHandler runs a ranking pass over caller-supplied listings.
type RankHandler struct {
	pipeline        *rank.Pipeline
	catalog         CatalogProvider
	sources         SourceProvider
	defaultPageSize int
}

// NewRankHandler creates a new RankHandler.
func NewRankHandler(
	p *rank.Pipeline,
	c CatalogProvider,
	s SourceProvider,
	defaultPageSize int,
) *RankHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	return &RankHandler{
		pipeline:        p,
		catalog:         c,
		sources:         s,
		defaultPageSize: defaultPageSize,
	}
}

// ListingInput is one listing in the rank request. Prices arrive as plain
// JSON numbers and are converted to decimals internally.
type ListingInput struct {
	Title           string  `json:"title" minLength:"1" doc:"Raw listing title" example:"HADES: Complete Edition™"`
	Store           string  `json:"store,omitempty" doc:"Store display name" example:"Steam"`
	CurrentPrice    float64 `json:"current_price" minimum:"0" doc:"Discounted price" example:"6.24"`
	RegularPrice    float64 `json:"regular_price,omitempty" minimum:"0" doc:"Undiscounted price" example:"24.99"`
	DiscountPercent int     `json:"discount_percent" minimum:"0" maximum:"100" doc:"Discount percentage" example:"75"`
	URL             string  `json:"url,omitempty" doc:"Deal URL"`
}

func (l *ListingInput) toDomain() domain.Listing {
	return domain.Listing{
		Title:           l.Title,
		Store:           l.Store,
		CurrentPrice:    decimal.NewFromFloat(l.CurrentPrice),
		RegularPrice:    decimal.NewFromFloat(l.RegularPrice),
		DiscountPercent: l.DiscountPercent,
		URL:             l.URL,
	}
}

// RankInput is the request body for the rank endpoint.
type RankInput struct {
	Body struct {
		Listings          []ListingInput `json:"listings" minItems:"1" doc:"Discount listings to rank"`
		IncludeAssetFlips bool           `json:"include_asset_flips,omitempty" doc:"Keep suspected asset flips in the output"`
		PageSize          int            `json:"page_size,omitempty" minimum:"1" maximum:"200" doc:"Entries per page (default 10)"`
	}
}

// RankOutput is the response body for the rank endpoint.
type RankOutput struct {
	Body struct {
		Pages     []domain.Page `json:"pages" doc:"Ranked deals split into fixed-size pages"`
		PageCount int           `json:"page_count" doc:"Number of pages"`
		Ranked    int           `json:"ranked" doc:"Listings that survived ranking"`
		Skipped   int           `json:"skipped" doc:"Malformed listings skipped"`
		Dropped   int           `json:"dropped" doc:"Asset flips dropped"`
	}
}

// Rank evaluates and orders the supplied listings against the current
// catalog and popularity snapshots.
func (h *RankHandler) Rank(ctx context.Context, input *RankInput) (*RankOutput, error) {
	pageSize := input.Body.PageSize
	if pageSize <= 0 {
		pageSize = h.defaultPageSize
	}

	// Missing popularity data scores zero; it never fails a request.
	sources, err := h.sources.Sources(ctx)
	if err != nil {
		sources = nil
	}

	catalog := h.catalog.Snapshot()

	listings := make([]domain.Listing, 0, len(input.Body.Listings))
	for i := range input.Body.Listings {
		listings = append(listings, input.Body.Listings[i].toDomain())
	}

	results, skipped := h.pipeline.EvaluateAll(listings, catalog, sources)
	ranked := h.pipeline.Rank(results, input.Body.IncludeAssetFlips)

	pages, err := rank.Paginate(ranked, pageSize)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, huma.Error500InternalServerError("ranking failed: " + err.Error())
	}

	out := &RankOutput{}
	out.Body.Pages = pages
	out.Body.PageCount = len(pages)
	out.Body.Ranked = len(ranked)
	out.Body.Skipped = skipped
	out.Body.Dropped = len(results) - len(ranked)
	return out, nil
}

// RegisterRankRoutes registers the rank endpoint with the Huma API.
func RegisterRankRoutes(api huma.API, h *RankHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "rank-deals",
		Method:      http.MethodPost,
		Path:        "/api/v1/rank",
		Summary:     "Rank deal listings",
		Description: "Evaluates the supplied listings against the priority catalog and " +
			"popularity snapshots, orders them, and returns fixed-size pages.",
		Tags:   []string{"ranking"},
		Errors: []int{http.StatusUnprocessableEntity},
	}, h.Rank)
}
