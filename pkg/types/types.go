// Package domain defines the core business types for the game deal tracker.
package domain

import (
	"github.com/shopspring/decimal"
)

// Listing represents a single marketplace discount listing as fetched from
// the deals API. Listings are transient: one ranking pass consumes them and
// nothing is persisted afterwards.
type Listing struct {
	Title           string          `json:"title"`
	Store           string          `json:"store"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	RegularPrice    decimal.Decimal `json:"regular_price"`
	DiscountPercent int             `json:"discount_percent"`
	URL             string          `json:"url"`
}

// Valid reports whether the listing is well-formed enough to rank.
// Malformed listings are a data-quality condition: they are skipped,
// never fatal, because upstream data is externally sourced.
func (l *Listing) Valid() bool {
	if l.Title == "" {
		return false
	}
	if l.DiscountPercent < 0 || l.DiscountPercent > 100 {
		return false
	}
	if l.CurrentPrice.IsNegative() || l.RegularPrice.IsNegative() {
		return false
	}
	return true
}

// CatalogEntry is one curated known-quality title with a priority score.
// The catalog is loaded once at process start and treated as an immutable,
// shared snapshot for the lifetime of a ranking pass.
type CatalogEntry struct {
	Title    string `json:"title"`
	Priority int    `json:"priority"` // 1 (low) .. 10 (must-surface)
	Category string `json:"category"`
	Notes    string `json:"notes,omitempty"`
}

// Valid reports whether the entry satisfies the catalog invariants.
func (e *CatalogEntry) Valid() bool {
	return e.Title != "" && e.Priority >= 1 && e.Priority <= 10
}

// PopularitySourceKind identifies one of the community popularity lists.
type PopularitySourceKind string

// Popularity source kinds.
const (
	SourceMostPopular    PopularitySourceKind = "most-popular"
	SourceMostWaitlisted PopularitySourceKind = "most-waitlisted"
	SourceMostCollected  PopularitySourceKind = "most-collected"
)

// PopularityRecord is one title's standing within a single popularity list.
type PopularityRecord struct {
	Title           string `json:"title"`
	WaitlistedCount int    `json:"waitlisted_count"`
	CollectedCount  int    `json:"collected_count"`
	PopularityRank  int    `json:"popularity_rank"` // lower = more popular, 0 = unranked
}

// MatchResult is the per-listing evaluation produced by one ranking pass.
type MatchResult struct {
	Listing         Listing       `json:"listing"`
	CatalogEntry    *CatalogEntry `json:"catalog_entry,omitempty"`
	MatchConfidence float64       `json:"match_confidence"` // 0..1
	IsAssetFlip     bool          `json:"is_asset_flip"`
	PopularityScore float64       `json:"popularity_score"` // 0..100
}

// CatalogPriority returns the matched entry's priority, or 0 when the
// listing did not match the catalog.
func (m *MatchResult) CatalogPriority() int {
	if m.CatalogEntry == nil {
		return 0
	}
	return m.CatalogEntry.Priority
}

// RankedEntry pairs a match result with its dense 0-based rank.
type RankedEntry struct {
	MatchResult MatchResult `json:"match_result"`
	Rank        int         `json:"rank"`
}

// Page is one fixed-size slice of the ranked output. The final page may
// be shorter; concatenating all pages reproduces the ranked sequence.
type Page []RankedEntry
