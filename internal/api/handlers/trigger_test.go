package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedealer/gamedealer/internal/api/handlers"
	"github.com/gamedealer/gamedealer/internal/engine"
)

// mockCycleRunner implements handlers.CycleRunner for testing.
type mockCycleRunner struct {
	result *engine.CycleResult
	err    error
	called bool
}

func (m *mockCycleRunner) RunDealCycle(_ context.Context) (*engine.CycleResult, error) {
	m.called = true
	return m.result, m.err
}

// mockRefresher implements handlers.PopularityRefresher for testing.
type mockRefresher struct {
	err    error
	called bool
}

func (m *mockRefresher) RunPopularityRefresh(_ context.Context) error {
	m.called = true
	return m.err
}

func TestSyncHandler_Success(t *testing.T) {
	t.Parallel()

	runner := &mockCycleRunner{result: &engine.CycleResult{
		CycleID:          "cycle-abc",
		ListingsFetched:  120,
		Skipped:          2,
		Ranked:           80,
		FlipsDropped:     38,
		Pages:            8,
		NotificationSent: true,
	}}

	h := handlers.NewSyncHandler(runner)
	refreshH := handlers.NewRefreshHandler(&mockRefresher{})

	_, api := humatest.New(t)
	handlers.RegisterTriggerRoutes(api, h, refreshH)

	resp := api.Post("/api/v1/triggersync")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, runner.called)

	body := resp.Body.String()
	assert.Contains(t, body, "cycle completed")
	assert.Contains(t, body, "cycle-abc")
	assert.Contains(t, body, `"listings_fetched":120`)
	assert.Contains(t, body, `"pages":8`)
	assert.Contains(t, body, `"notification_sent":true`)
}

func TestSyncHandler_Error(t *testing.T) {
	t.Parallel()

	runner := &mockCycleRunner{err: errors.New("all store fetches failed")}

	h := handlers.NewSyncHandler(runner)
	refreshH := handlers.NewRefreshHandler(&mockRefresher{})

	_, api := humatest.New(t)
	handlers.RegisterTriggerRoutes(api, h, refreshH)

	resp := api.Post("/api/v1/triggersync")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "deal cycle failed")
}

func TestRefreshHandler_Success(t *testing.T) {
	t.Parallel()

	refresher := &mockRefresher{}

	h := handlers.NewSyncHandler(&mockCycleRunner{result: &engine.CycleResult{}})
	refreshH := handlers.NewRefreshHandler(refresher)

	_, api := humatest.New(t)
	handlers.RegisterTriggerRoutes(api, h, refreshH)

	resp := api.Post("/api/v1/popularity/refresh")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, refresher.called)
	assert.Contains(t, resp.Body.String(), "popularity refreshed")
}

func TestRefreshHandler_Error(t *testing.T) {
	t.Parallel()

	refresher := &mockRefresher{err: errors.New("itad unreachable")}

	h := handlers.NewSyncHandler(&mockCycleRunner{result: &engine.CycleResult{}})
	refreshH := handlers.NewRefreshHandler(refresher)

	_, api := humatest.New(t)
	handlers.RegisterTriggerRoutes(api, h, refreshH)

	resp := api.Post("/api/v1/popularity/refresh")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "popularity refresh failed")
}
