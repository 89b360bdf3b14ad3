package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gamedealer/gamedealer/internal/catalog"
)

// CatalogStore is the catalog surface the API needs.
type CatalogStore interface {
	Stats() catalog.Stats
	Reload() error
}

// CatalogHandler exposes catalog stats and reload endpoints.
type CatalogHandler struct {
	store CatalogStore
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(s CatalogStore) *CatalogHandler {
	return &CatalogHandler{store: s}
}

// CatalogStatsOutput is the response body for the catalog stats endpoint.
type CatalogStatsOutput struct {
	Body struct {
		TotalGames           int            `json:"total_games" doc:"Entries currently loaded"`
		SkippedEntries       int            `json:"skipped_entries" doc:"Malformed entries skipped at load"`
		PriorityDistribution map[string]int `json:"priority_distribution" doc:"Entry count per priority (1-10)"`
		CategoryDistribution map[string]int `json:"category_distribution" doc:"Entry count per category"`
	}
}

// GetStats returns a summary of the loaded priority catalog.
func (h *CatalogHandler) GetStats(_ context.Context, _ *struct{}) (*CatalogStatsOutput, error) {
	stats := h.store.Stats()

	priorities := make(map[string]int, len(stats.PriorityDistribution))
	for priority, count := range stats.PriorityDistribution {
		priorities[strconv.Itoa(priority)] = count
	}

	out := &CatalogStatsOutput{}
	out.Body.TotalGames = stats.TotalGames
	out.Body.SkippedEntries = stats.SkippedEntries
	out.Body.PriorityDistribution = priorities
	out.Body.CategoryDistribution = stats.CategoryDistribution
	return out, nil
}

// CatalogReloadOutput is the response body for the catalog reload endpoint.
type CatalogReloadOutput struct {
	Body struct {
		Status     string `json:"status" example:"catalog reloaded"`
		TotalGames int    `json:"total_games" doc:"Entries loaded after the reload"`
	}
}

// Reload re-reads the catalog file from disk.
func (h *CatalogHandler) Reload(_ context.Context, _ *struct{}) (*CatalogReloadOutput, error) {
	if err := h.store.Reload(); err != nil {
		return nil, huma.Error500InternalServerError("catalog reload failed: " + err.Error())
	}

	out := &CatalogReloadOutput{}
	out.Body.Status = "catalog reloaded"
	out.Body.TotalGames = h.store.Stats().TotalGames
	return out, nil
}

// RegisterCatalogRoutes registers catalog endpoints with the Huma API.
func RegisterCatalogRoutes(api huma.API, h *CatalogHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-catalog-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog",
		Summary:     "Get priority catalog stats",
		Description: "Returns entry counts and priority/category distributions for the loaded catalog.",
		Tags:        []string{"catalog"},
	}, h.GetStats)

	huma.Register(api, huma.Operation{
		OperationID: "reload-catalog",
		Method:      http.MethodPost,
		Path:        "/api/v1/catalog/reload",
		Summary:     "Reload the priority catalog",
		Description: "Re-reads the catalog JSON from disk, skipping malformed entries.",
		Tags:        []string{"catalog"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.Reload)
}
