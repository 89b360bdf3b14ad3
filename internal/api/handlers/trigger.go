package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gamedealer/gamedealer/internal/engine"
)

// CycleRunner defines the interface for triggering a deal cycle.
type CycleRunner interface {
	RunDealCycle(ctx context.Context) (*engine.CycleResult, error)
}

// PopularityRefresher defines the interface for triggering a popularity refresh.
type PopularityRefresher interface {
	RunPopularityRefresh(ctx context.Context) error
}

// SyncHandler handles manual deal cycle trigger requests.
type SyncHandler struct {
	runner CycleRunner
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(r CycleRunner) *SyncHandler {
	return &SyncHandler{runner: r}
}

// SyncOutput is the response body for the triggersync endpoint.
type SyncOutput struct {
	Body struct {
		Status           string `json:"status" example:"cycle completed" doc:"Cycle status"`
		CycleID          string `json:"cycle_id" doc:"Unique cycle identifier"`
		ListingsFetched  int    `json:"listings_fetched" doc:"Listings fetched from all stores"`
		Skipped          int    `json:"skipped" doc:"Malformed listings skipped"`
		Ranked           int    `json:"ranked" doc:"Listings that survived ranking"`
		FlipsDropped     int    `json:"flips_dropped" doc:"Asset flips dropped"`
		Pages            int    `json:"pages" doc:"Pages produced"`
		NotificationSent bool   `json:"notification_sent" doc:"Whether the top page was notified"`
	}
}

// Sync triggers a full deal cycle.
func (h *SyncHandler) Sync(ctx context.Context, _ *struct{}) (*SyncOutput, error) {
	result, err := h.runner.RunDealCycle(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("deal cycle failed: " + err.Error())
	}

	out := &SyncOutput{}
	out.Body.Status = "cycle completed"
	out.Body.CycleID = result.CycleID
	out.Body.ListingsFetched = result.ListingsFetched
	out.Body.Skipped = result.Skipped
	out.Body.Ranked = result.Ranked
	out.Body.FlipsDropped = result.FlipsDropped
	out.Body.Pages = result.Pages
	out.Body.NotificationSent = result.NotificationSent
	return out, nil
}

// RefreshHandler handles manual popularity refresh requests.
type RefreshHandler struct {
	refresher PopularityRefresher
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(r PopularityRefresher) *RefreshHandler {
	return &RefreshHandler{refresher: r}
}

// RefreshOutput is the response body for the popularity refresh endpoint.
type RefreshOutput struct {
	Body struct {
		Status string `json:"status" example:"popularity refreshed" doc:"Refresh status"`
	}
}

// Refresh forces a refresh of the popularity snapshot cache.
func (h *RefreshHandler) Refresh(ctx context.Context, _ *struct{}) (*RefreshOutput, error) {
	if err := h.refresher.RunPopularityRefresh(ctx); err != nil {
		return nil, huma.Error500InternalServerError("popularity refresh failed: " + err.Error())
	}

	out := &RefreshOutput{}
	out.Body.Status = "popularity refreshed"
	return out, nil
}

// RegisterTriggerRoutes registers trigger endpoints with the Huma API.
func RegisterTriggerRoutes(api huma.API, syncH *SyncHandler, refreshH *RefreshHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-sync",
		Method:      http.MethodPost,
		Path:        "/api/v1/triggersync",
		Summary:     "Trigger a manual deal cycle",
		Description: "Runs one full cycle: fetch deals from every configured store, " +
			"rank them, and notify the top page.",
		Tags:   []string{"cycles"},
		Errors: []int{http.StatusInternalServerError},
	}, syncH.Sync)

	huma.Register(api, huma.Operation{
		OperationID: "refresh-popularity",
		Method:      http.MethodPost,
		Path:        "/api/v1/popularity/refresh",
		Summary:     "Refresh popularity snapshots",
		Description: "Forces a refetch of the most-popular, most-waitlisted, and " +
			"most-collected lists.",
		Tags:   []string{"cycles"},
		Errors: []int{http.StatusInternalServerError},
	}, refreshH.Refresh)
}
