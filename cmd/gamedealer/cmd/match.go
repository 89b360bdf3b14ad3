package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamedealer/gamedealer/internal/config"
	"github.com/gamedealer/gamedealer/pkg/normalize"
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

func matchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "match [title]",
		Short: "Match a raw listing title against the curated catalog",
		Long: "Normalizes the given title, matches it against the curated " +
			"catalog, and reports the match confidence and popularity score. " +
			"Useful for debugging why a listing did or did not surface.",
		Args: cobra.ExactArgs(1),
		RunE: runMatch,
	}
}

type matchReport struct {
	Title           string               `json:"title"`
	Normalized      string               `json:"normalized"`
	Tokens          []string             `json:"tokens"`
	Unmatchable     bool                 `json:"unmatchable"`
	Entry           *domain.CatalogEntry `json:"entry,omitempty"`
	Confidence      float64              `json:"confidence"`
	PopularityScore float64              `json:"popularity_score"`
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	comp, err := buildComponents(cfg, true)
	if err != nil {
		return err
	}

	title := normalize.Normalize(args[0])
	matcher := buildMatcher(cfg)
	aggregator := buildAggregator(cfg)

	entry, confidence := matcher.Match(title, comp.catalog.Snapshot())

	// Popularity lists come from the live API; a fetch failure just
	// degrades the score to zero, same as during a deal cycle.
	var score float64
	if sources, srcErr := comp.popcache.Sources(cmd.Context()); srcErr == nil {
		score = aggregator.Score(title, sources)
	}

	report := matchReport{
		Title:           title.Raw,
		Normalized:      title.Text,
		Tokens:          title.Tokens,
		Unmatchable:     title.Unmatchable(),
		Entry:           entry,
		Confidence:      confidence,
		PopularityScore: score,
	}

	if jsonOutput() {
		return outputJSON(report)
	}
	return printMatchDetail(report.Title, report.Normalized, report.Entry, report.Confidence, report.PopularityScore)
}
