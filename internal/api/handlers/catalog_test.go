package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedealer/gamedealer/internal/api/handlers"
	"github.com/gamedealer/gamedealer/internal/catalog"
)

// fakeCatalogStore implements handlers.CatalogStore for testing.
type fakeCatalogStore struct {
	stats     catalog.Stats
	reloadErr error
	reloaded  bool
}

func (f *fakeCatalogStore) Stats() catalog.Stats {
	return f.stats
}

func (f *fakeCatalogStore) Reload() error {
	f.reloaded = true
	return f.reloadErr
}

func TestCatalogHandler_GetStats(t *testing.T) {
	t.Parallel()

	store := &fakeCatalogStore{stats: catalog.Stats{
		TotalGames:           42,
		SkippedEntries:       3,
		PriorityDistribution: map[int]int{8: 12, 5: 30},
		CategoryDistribution: map[string]int{"Roguelike": 12, "Unknown": 30},
	}}

	h := handlers.NewCatalogHandler(store)

	_, api := humatest.New(t)
	handlers.RegisterCatalogRoutes(api, h)

	resp := api.Get("/api/v1/catalog")
	require.Equal(t, http.StatusOK, resp.Code)

	body := resp.Body.String()
	assert.Contains(t, body, `"total_games":42`)
	assert.Contains(t, body, `"skipped_entries":3`)
	assert.Contains(t, body, `"8":12`)
	assert.Contains(t, body, `"Roguelike":12`)
}

func TestCatalogHandler_Reload(t *testing.T) {
	t.Parallel()

	store := &fakeCatalogStore{stats: catalog.Stats{TotalGames: 7}}
	h := handlers.NewCatalogHandler(store)

	_, api := humatest.New(t)
	handlers.RegisterCatalogRoutes(api, h)

	resp := api.Post("/api/v1/catalog/reload")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, store.reloaded)
	assert.Contains(t, resp.Body.String(), `"total_games":7`)
}

func TestCatalogHandler_ReloadError(t *testing.T) {
	t.Parallel()

	store := &fakeCatalogStore{reloadErr: errors.New("file not found")}
	h := handlers.NewCatalogHandler(store)

	_, api := humatest.New(t)
	handlers.RegisterCatalogRoutes(api, h)

	resp := api.Post("/api/v1/catalog/reload")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "catalog reload failed")
}
