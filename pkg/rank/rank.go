// Package rank orders evaluated listings into a total order and exposes
// the full evaluation pipeline from raw listings to paged output.
//
// The ordering pivots on discount depth: once a discount is already big,
// signal shifts from squeezing a few more percentage points to surfacing
// the better game, so catalog priority leads; below the pivot, raw
// discount dominates because most candidates are unvetted. The sort is
// stable so identical-key entries keep their input order across runs.
package rank

import (
	"sort"

	"github.com/gamedealer/gamedealer/pkg/match"
	"github.com/gamedealer/gamedealer/pkg/normalize"
	"github.com/gamedealer/gamedealer/pkg/popularity"
	"github.com/gamedealer/gamedealer/pkg/quality"
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

// DefaultPriorityPivot is the discount percentage above which catalog
// priority becomes the primary sort key. A discount of exactly the pivot
// still sorts discount-first.
const DefaultPriorityPivot = 50

// Ranker produces the total order over match results.
type Ranker struct {
	priorityPivot int
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker)

// WithPriorityPivot overrides the discount pivot.
func WithPriorityPivot(percent int) RankerOption {
	return func(r *Ranker) {
		if percent > 0 {
			r.priorityPivot = percent
		}
	}
}

// NewRanker creates a Ranker.
func NewRanker(opts ...RankerOption) *Ranker {
	r := &Ranker{priorityPivot: DefaultPriorityPivot}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// sortKey is one entry's descending lexicographic sort tuple.
type sortKey [3]float64

// key derives the sort tuple for one result. Above the pivot the tuple is
// (priority, discount, popularity); at or below it, (discount, priority,
// popularity). An unmatched listing carries priority 0.
func (r *Ranker) key(m *domain.MatchResult) sortKey {
	prio := float64(m.CatalogPriority())
	disc := float64(m.Listing.DiscountPercent)

	if m.Listing.DiscountPercent > r.priorityPivot {
		return sortKey{prio, disc, m.PopularityScore}
	}
	return sortKey{disc, prio, m.PopularityScore}
}

// Rank filters and orders match results. Asset-flip entries are dropped
// unless includeAssetFlips is set — an externally supplied policy, never
// package state. Ranks are dense and 0-based: entries with identical sort
// keys share a rank.
func (r *Ranker) Rank(results []domain.MatchResult, includeAssetFlips bool) []domain.RankedEntry {
	kept := make([]domain.MatchResult, 0, len(results))
	for _, res := range results {
		if res.IsAssetFlip && !includeAssetFlips {
			continue
		}
		kept = append(kept, res)
	}

	keys := make(map[int]sortKey, len(kept))
	for i := range kept {
		keys[i] = r.key(&kept[i])
	}

	order := make([]int, len(kept))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keyGreater(keys[order[a]], keys[order[b]])
	})

	ranked := make([]domain.RankedEntry, 0, len(kept))
	rank := 0
	for i, idx := range order {
		if i > 0 && keys[idx] != keys[order[i-1]] {
			rank++
		}
		ranked = append(ranked, domain.RankedEntry{
			MatchResult: kept[idx],
			Rank:        rank,
		})
	}
	return ranked
}

// keyGreater compares two sort tuples lexicographically, descending.
func keyGreater(a, b sortKey) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

// Pipeline composes the full evaluation chain: normalize, match against
// the catalog, classify, aggregate popularity, rank, paginate.
type Pipeline struct {
	matcher    *match.Matcher
	classifier *quality.Classifier
	aggregator *popularity.Aggregator
	ranker     *Ranker
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithMatcher replaces the default catalog matcher.
func WithMatcher(m *match.Matcher) PipelineOption {
	return func(p *Pipeline) { p.matcher = m }
}

// WithClassifier replaces the default asset-flip classifier.
func WithClassifier(c *quality.Classifier) PipelineOption {
	return func(p *Pipeline) { p.classifier = c }
}

// WithAggregator replaces the default popularity aggregator.
func WithAggregator(a *popularity.Aggregator) PipelineOption {
	return func(p *Pipeline) { p.aggregator = a }
}

// WithRanker replaces the default ranker.
func WithRanker(r *Ranker) PipelineOption {
	return func(p *Pipeline) { p.ranker = r }
}

// NewPipeline creates a Pipeline with default-configured stages.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		matcher:    match.New(),
		classifier: quality.New(quality.Thresholds{}),
		aggregator: popularity.New(),
		ranker:     NewRanker(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Evaluate runs one listing through matching, classification, and
// popularity aggregation. A catalog match overrides an asset-flip flag:
// curation is stronger evidence of quality than the heuristics.
func (p *Pipeline) Evaluate(
	listing domain.Listing,
	catalog []domain.CatalogEntry,
	sources []popularity.Source,
) domain.MatchResult {
	title := normalize.Normalize(listing.Title)

	entry, confidence := p.matcher.Match(title, catalog)

	flip := p.classifier.Classify(&listing, title)
	if entry != nil {
		flip = false
	}

	return domain.MatchResult{
		Listing:         listing,
		CatalogEntry:    entry,
		MatchConfidence: confidence,
		IsAssetFlip:     flip,
		PopularityScore: p.aggregator.Score(title, sources),
	}
}

// EvaluateAll evaluates a batch, skipping malformed listings. The skipped
// count lets callers log data-quality drops without failing the batch.
func (p *Pipeline) EvaluateAll(
	listings []domain.Listing,
	catalog []domain.CatalogEntry,
	sources []popularity.Source,
) (results []domain.MatchResult, skipped int) {
	results = make([]domain.MatchResult, 0, len(listings))
	for i := range listings {
		if !listings[i].Valid() {
			skipped++
			continue
		}
		results = append(results, p.Evaluate(listings[i], catalog, sources))
	}
	return results, skipped
}

// Rank orders already-evaluated results with the pipeline's ranker.
func (p *Pipeline) Rank(results []domain.MatchResult, includeAssetFlips bool) []domain.RankedEntry {
	return p.ranker.Rank(results, includeAssetFlips)
}

// RankListings is the end-to-end engine entry point: evaluate every
// listing against the given catalog and popularity snapshots, order the
// survivors, and split them into pages. The snapshots are owned by the
// caller and never mutated. Returns ErrInvalidArgument for a non-positive
// page size; per-record problems are skipped, never fatal.
func (p *Pipeline) RankListings(
	listings []domain.Listing,
	catalog []domain.CatalogEntry,
	sources []popularity.Source,
	includeAssetFlips bool,
	pageSize int,
) ([]domain.Page, error) {
	if pageSize <= 0 {
		return nil, domain.InvalidArgumentf("page size must be positive, got %d", pageSize)
	}

	results, _ := p.EvaluateAll(listings, catalog, sources)
	ranked := p.ranker.Rank(results, includeAssetFlips)

	return Paginate(ranked, pageSize)
}
