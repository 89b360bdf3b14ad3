package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gamedealer/gamedealer/internal/itad"
)

// QuotaHandler provides the ITAD API quota status endpoint.
type QuotaHandler struct {
	rl *itad.RateLimiter
}

// NewQuotaHandler creates a new QuotaHandler.
func NewQuotaHandler(rl *itad.RateLimiter) *QuotaHandler {
	return &QuotaHandler{rl: rl}
}

// QuotaOutput is the response body for the quota endpoint.
type QuotaOutput struct {
	Body struct {
		DailyLimit int64     `json:"daily_limit" example:"2000"                 doc:"Daily request budget for the API key"`
		DailyUsed  int64     `json:"daily_used"  example:"142"                  doc:"Requests used so far in the current UTC day"`
		Remaining  int64     `json:"remaining"   example:"1858"                 doc:"Requests remaining in the current UTC day"`
		ResetAt    time.Time `json:"reset_at"    example:"2026-08-30T00:00:00Z" doc:"Next midnight UTC, when the budget renews"`
	}
}

// GetQuota returns the current ITAD API quota status.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	resp := &QuotaOutput{}
	if h.rl == nil {
		return resp, nil
	}

	resp.Body.DailyLimit = h.rl.Limit()
	resp.Body.DailyUsed = h.rl.Used()
	resp.Body.Remaining = h.rl.Remaining()
	resp.Body.ResetAt = h.rl.ResetAt()

	return resp, nil
}

// RegisterQuotaRoutes registers the quota endpoint with the Huma API.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get ITAD API quota status",
		Description: "Returns the API key's daily request usage, remaining budget, and when it renews.",
		Tags:        []string{"itad"},
	}, h.GetQuota)
}
