// Package popularity fuses ranked community-popularity lists into a single
// per-title score.
//
// Up to three source lists (most-popular, most-waitlisted, most-collected)
// contribute independently. Each source is searched for the closest title
// via approximate string similarity on normalized titles; a found record
// contributes a bounded sub-score, the sub-scores are summed, and the total
// is clamped to [0,100]. The aggregation is commutative across sources, and
// a title absent from every list scores 0 — that is the normal "no
// evidence" case, never an error.
package popularity

import (
	"github.com/gamedealer/gamedealer/pkg/normalize"
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

// Sub-score bounds. One source can contribute at most
// baseCap + waitlistCap + collectCap points before the final clamp.
const (
	baseCap     = 80.0
	waitlistCap = 10.0
	collectCap  = 10.0
	scoreCap    = 100.0
)

// DefaultSimilarityThreshold is the minimum similarity ratio for an
// approximate title match. Empirically tuned; configurable because the
// value is only load-bearing as "high enough to avoid false positives".
const DefaultSimilarityThreshold = 0.80

// Source is one resolved popularity list snapshot. Snapshots are owned by
// the caller and never mutated here.
type Source struct {
	Kind    domain.PopularitySourceKind
	Records []domain.PopularityRecord
}

// Aggregator computes fused popularity scores.
type Aggregator struct {
	similarityThreshold float64
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithSimilarityThreshold overrides the approximate-match acceptance ratio.
func WithSimilarityThreshold(ratio float64) Option {
	return func(a *Aggregator) {
		if ratio > 0 {
			a.similarityThreshold = ratio
		}
	}
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{similarityThreshold: DefaultSimilarityThreshold}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Score aggregates the popularity evidence for one normalized title across
// the given sources. Purely additive and order-independent.
func (a *Aggregator) Score(title normalize.Title, sources []Source) float64 {
	total := 0.0

	for i := range sources {
		if record := a.lookup(title, &sources[i]); record != nil {
			total += subScore(record)
		}
	}

	return min(total, scoreCap)
}

// ScoreTitle is the raw-string convenience form.
func (a *Aggregator) ScoreTitle(title string, sources []Source) float64 {
	return a.Score(normalize.Normalize(title), sources)
}

// lookup finds the closest record in one source: exact canonical equality
// first, then best approximate match at or above the similarity threshold.
func (a *Aggregator) lookup(title normalize.Title, src *Source) *domain.PopularityRecord {
	var (
		best     *domain.PopularityRecord
		bestSim  float64
		wantText = comparisonText(title)
	)

	if wantText == "" {
		return nil
	}

	for i := range src.Records {
		rec := &src.Records[i]
		got := comparisonText(normalize.Normalize(rec.Title))
		if got == "" {
			continue
		}

		if got == wantText {
			return rec
		}

		sim := Similarity(wantText, got)
		if sim >= a.similarityThreshold && sim > bestSim {
			best = rec
			bestSim = sim
		}
	}

	return best
}

// comparisonText is the canonical form titles are compared in: meaningful
// tokens only, so edition and marketing noise does not skew the edit
// distance. Falls back to the full canonical text for all-generic titles.
func comparisonText(t normalize.Title) string {
	if text := t.MeaningfulText(); text != "" {
		return text
	}
	return t.Text
}

// subScore derives one source's bounded contribution from a record.
// The base term comes from raw community counts; when a source reports
// only a rank, the base falls back to a rank-derived term. Waitlist and
// collection bonuses reward demonstrated demand and ownership.
func subScore(rec *domain.PopularityRecord) float64 {
	combined := rec.WaitlistedCount + rec.CollectedCount

	base := float64(combined) / 10
	if combined == 0 && rec.PopularityRank > 0 {
		base = float64(600-rec.PopularityRank) / 10
	}
	base = max(0, min(base, baseCap))

	waitlistBonus := min(float64(rec.WaitlistedCount)/100, waitlistCap)
	collectBonus := min(float64(rec.CollectedCount)/500, collectCap)

	return base + waitlistBonus + collectBonus
}
