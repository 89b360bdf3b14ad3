package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gamedealer/gamedealer/pkg/match"
	"github.com/gamedealer/gamedealer/pkg/normalize"
	"github.com/gamedealer/gamedealer/pkg/popularity"
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

// MatchHandler exposes the catalog matcher for diagnostics.
type MatchHandler struct {
	matcher    *match.Matcher
	aggregator *popularity.Aggregator
	catalog    CatalogProvider
	sources    SourceProvider
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(
	m *match.Matcher,
	a *popularity.Aggregator,
	c CatalogProvider,
	s SourceProvider,
) *MatchHandler {
	return &MatchHandler{matcher: m, aggregator: a, catalog: c, sources: s}
}

// MatchInput is the query input for the match endpoint.
type MatchInput struct {
	Title string `query:"title" required:"true" minLength:"1" doc:"Raw listing title to match" example:"HADES: Complete Edition™"`
}

// MatchOutput is the response body for the match endpoint.
type MatchOutput struct {
	Body struct {
		Title            string               `json:"title" doc:"Raw input title"`
		Normalized       string               `json:"normalized" doc:"Canonical normalized form"`
		Tokens           []string             `json:"tokens" doc:"Ordered normalized tokens"`
		MeaningfulTokens []string             `json:"meaningful_tokens" doc:"Tokens surviving the stop-list"`
		Unmatchable      bool                 `json:"unmatchable" doc:"No meaningful tokens remain"`
		Entry            *domain.CatalogEntry `json:"entry,omitempty" doc:"Best catalog match, if any"`
		Confidence       float64              `json:"confidence" doc:"Match confidence in [0,1]"`
		PopularityScore  float64              `json:"popularity_score" doc:"Fused popularity score in [0,100]"`
	}
}

// Match normalizes a title and reports how it matches the catalog.
func (h *MatchHandler) Match(ctx context.Context, input *MatchInput) (*MatchOutput, error) {
	title := normalize.Normalize(input.Title)
	entry, confidence := h.matcher.Match(title, h.catalog.Snapshot())

	var popScore float64
	if sources, err := h.sources.Sources(ctx); err == nil {
		popScore = h.aggregator.Score(title, sources)
	}

	out := &MatchOutput{}
	out.Body.Title = input.Title
	out.Body.Normalized = title.Text
	out.Body.Tokens = title.Tokens
	out.Body.MeaningfulTokens = title.Meaningful
	out.Body.Unmatchable = title.Unmatchable()
	out.Body.Entry = entry
	out.Body.Confidence = confidence
	out.Body.PopularityScore = popScore
	return out, nil
}

// RegisterMatchRoutes registers the match endpoint with the Huma API.
func RegisterMatchRoutes(api huma.API, h *MatchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "match-title",
		Method:      http.MethodGet,
		Path:        "/api/v1/match",
		Summary:     "Match a title against the catalog",
		Description: "Normalizes a raw listing title and reports the best catalog match, " +
			"its confidence, and the title's popularity score.",
		Tags: []string{"ranking"},
	}, h.Match)
}
