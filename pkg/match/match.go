// Package match resolves listing titles against the curated catalog.
//
// Matching runs a three-rule ladder in priority order, first success wins:
// exact canonical equality, token containment, then meaningful-word
// overlap. Plain substring or raw word overlap produces false positives
// (a listing containing only "Wild" must not match "The Witcher 3: Wild
// Hunt"), so the overlap rule is restricted to meaningful tokens with a
// minimum token count and a high threshold.
package match

import (
	"strings"

	"github.com/gamedealer/gamedealer/pkg/normalize"
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

// Confidence levels assigned by the first two rules.
const (
	ConfidenceExact       = 1.0
	ConfidenceContainment = 0.85
)

// DefaultOverlapThreshold is the minimum meaningful-token overlap ratio
// for rule three. Empirically tuned; configurable because the exact value
// is only load-bearing as "high enough to avoid common false positives".
const DefaultOverlapThreshold = 0.60

// Matcher matches normalized titles against a catalog snapshot.
// The zero value is not usable; construct with New.
type Matcher struct {
	overlapThreshold float64
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithOverlapThreshold overrides the meaningful-overlap acceptance ratio.
func WithOverlapThreshold(ratio float64) Option {
	return func(m *Matcher) {
		if ratio > 0 {
			m.overlapThreshold = ratio
		}
	}
}

// New creates a Matcher.
func New(opts ...Option) *Matcher {
	m := &Matcher{overlapThreshold: DefaultOverlapThreshold}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match finds the best catalog entry for a normalized listing title.
// Returns (nil, 0) when nothing qualifies — absence of a match is the
// normal "no evidence" case, not an error. When multiple entries qualify,
// the highest confidence wins; ties break toward higher catalog priority.
// The catalog snapshot is never mutated.
func (m *Matcher) Match(
	title normalize.Title,
	catalog []domain.CatalogEntry,
) (*domain.CatalogEntry, float64) {
	var (
		best     *domain.CatalogEntry
		bestConf float64
	)

	for i := range catalog {
		entry := &catalog[i]
		if !entry.Valid() {
			continue // out-of-range priority: skip, never fatal
		}

		conf := m.score(title, normalize.Normalize(entry.Title))
		if conf == 0 {
			continue
		}

		if conf > bestConf || (conf == bestConf && best != nil && entry.Priority > best.Priority) {
			best = entry
			bestConf = conf
		}
	}

	return best, bestConf
}

// MatchTitle is the raw-string convenience form used by diagnostic tooling.
func (m *Matcher) MatchTitle(
	title string,
	catalog []domain.CatalogEntry,
) (*domain.CatalogEntry, float64) {
	return m.Match(normalize.Normalize(title), catalog)
}

// score runs the rule ladder for one listing/entry pair.
func (m *Matcher) score(listing, entry normalize.Title) float64 {
	if len(listing.Tokens) == 0 || len(entry.Tokens) == 0 {
		return 0
	}

	// Rule 1: exact canonical equality.
	if listing.Text == entry.Text {
		return ConfidenceExact
	}

	// Titles with no meaningful tokens short-circuit to no match beyond
	// exact equality.
	if listing.Unmatchable() {
		return 0
	}

	// A near-empty listing title must not fuzzily claim a multi-word
	// catalog entry ("Wild" vs "The Witcher 3: Wild Hunt").
	if len(listing.Meaningful) < 2 && len(entry.Meaningful) >= 2 {
		return 0
	}

	// Rule 2: containment in either direction.
	if contains(listing, entry) || contains(entry, listing) {
		return ConfidenceContainment
	}

	// Rule 3: meaningful-word overlap, both sides >= 2 meaningful tokens.
	if len(listing.Meaningful) < 2 || len(entry.Meaningful) < 2 {
		return 0
	}

	overlap := overlapRatio(listing, entry)
	if overlap >= m.overlapThreshold {
		return overlap
	}

	return 0
}

// contains reports whether outer's tokens contain inner's, either as a
// contiguous subsequence or as a token-set superset.
func contains(outer, inner normalize.Title) bool {
	if len(inner.Tokens) == 0 || len(inner.Tokens) > len(outer.Tokens) {
		return false
	}

	// Contiguous subsequence on canonical text, aligned to token
	// boundaries by padding both sides with a space.
	padded := " " + outer.Text + " "
	if strings.Contains(padded, " "+inner.Text+" ") {
		return true
	}

	// Token-set superset.
	outerSet := outer.TokenSet()
	for _, tok := range inner.Tokens {
		if _, ok := outerSet[tok]; !ok {
			return false
		}
	}
	return true
}

// overlapRatio computes |intersection of meaningful tokens| divided by the
// meaningful token count of the shorter title.
func overlapRatio(a, b normalize.Title) float64 {
	aSet := a.MeaningfulSet()

	shared := 0
	for tok := range b.MeaningfulSet() {
		if _, ok := aSet[tok]; ok {
			shared++
		}
	}

	shorter := min(len(a.Meaningful), len(b.Meaningful))
	if shorter == 0 {
		return 0
	}
	return float64(shared) / float64(shorter)
}
