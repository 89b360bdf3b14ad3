// Package quality flags low-effort, mass-produced "asset flip" listings.
//
// The classifier is independent of the catalog: it judges any listing,
// matched or not, from its price, discount, and title shape alone. All
// signals live in one declarative rule table so the heuristics stay
// auditable and testable in isolation. Signals combine with OR semantics:
// any single firing rule flags the listing.
package quality

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/gamedealer/gamedealer/pkg/normalize"
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

// Thresholds control the numeric signals. Empirically tuned defaults;
// overridable because the exact values are not load-bearing beyond
// "low price + deep discount is suspicious".
type Thresholds struct {
	// PriceFloor is the absolute price below which a deep discount
	// becomes suspicious (bargain-bin territory).
	PriceFloor decimal.Decimal
	// DeepDiscountPercent is the discount at or above which the price
	// floor signal applies.
	DeepDiscountPercent int
	// GenericRatio is the stop-word fraction above which a title with
	// almost no meaningful tokens is flagged.
	GenericRatio float64
}

// DefaultThresholds returns the tuned default signal thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PriceFloor:          decimal.NewFromInt(1),
		DeepDiscountPercent: 90,
		GenericRatio:        0.6,
	}
}

// titleRule is one pattern-based signal in the rule table.
type titleRule struct {
	name    string
	pattern *regexp.Regexp
}

// titleRules matches known low-effort title templates against the
// canonical (normalized) title text.
var titleRules = []titleRule{
	{name: "x-simulator", pattern: regexp.MustCompile(`^\w+ simulator( \d+)?$`)},
	{name: "x-tycoon", pattern: regexp.MustCompile(`^\w+ tycoon( \d+)?$`)},
	{name: "ultimate-x", pattern: regexp.MustCompile(`^ultimate \w+$`)},
	{name: "extreme-x", pattern: regexp.MustCompile(`^extreme \w+$`)},
	{name: "zombie-filler", pattern: regexp.MustCompile(`^(zombie \w+|\w+ zombie)$`)},
}

// sequelSuffix matches a trailing bare number ("Sim 3", "Game 2").
var sequelSuffix = regexp.MustCompile(` \d+$`)

// Classifier applies the asset-flip rule table.
type Classifier struct {
	thresholds Thresholds
}

// New creates a Classifier. Zero-valued threshold fields fall back to the
// defaults.
func New(t Thresholds) *Classifier {
	def := DefaultThresholds()
	if t.PriceFloor.IsZero() {
		t.PriceFloor = def.PriceFloor
	}
	if t.DeepDiscountPercent == 0 {
		t.DeepDiscountPercent = def.DeepDiscountPercent
	}
	if t.GenericRatio == 0 {
		t.GenericRatio = def.GenericRatio
	}
	return &Classifier{thresholds: t}
}

// Classify reports whether the listing looks like an asset flip.
// Catalog membership is deliberately not consulted here; when a listing is
// both flagged and catalog-matched, the pipeline lets the catalog match
// override the flag.
func (c *Classifier) Classify(listing *domain.Listing, title normalize.Title) bool {
	return c.priceSignal(listing) ||
		c.titleSignal(title) ||
		c.genericSignal(title)
}

// priceSignal fires on bargain-bin pricing combined with a deep discount.
func (c *Classifier) priceSignal(l *domain.Listing) bool {
	return l.CurrentPrice.LessThan(c.thresholds.PriceFloor) &&
		l.DiscountPercent >= c.thresholds.DeepDiscountPercent
}

// titleSignal fires when the canonical title matches a known low-effort
// template, or is just a short generic name with a numeric sequel suffix.
func (c *Classifier) titleSignal(t normalize.Title) bool {
	for _, rule := range titleRules {
		if rule.pattern.MatchString(t.Text) {
			return true
		}
	}

	// Numeric sequel suffix with no other identity ("Sim 3").
	if sequelSuffix.MatchString(t.Text) && len(t.Meaningful) <= 1 {
		return true
	}

	return false
}

// genericSignal fires when the title is mostly stop-list words and carries
// at most one meaningful token.
func (c *Classifier) genericSignal(t normalize.Title) bool {
	return t.StopWordRatio() > c.thresholds.GenericRatio &&
		len(t.Meaningful) <= 1
}

// RuleNames returns the names of the pattern rules in table order, for
// diagnostics.
func RuleNames() []string {
	names := make([]string, 0, len(titleRules))
	for _, r := range titleRules {
		names = append(names, r.name)
	}
	return names
}
