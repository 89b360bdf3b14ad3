package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/gamedealer/gamedealer/internal/catalog"
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printPageTable(page domain.Page) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("RANK\tTITLE\tSTORE\tPRICE\tDISCOUNT\tPRIORITY\tPOPULARITY\n")
	for i := range page {
		e := &page[i]
		priority := "-"
		if p := e.MatchResult.CatalogPriority(); p > 0 {
			priority = fmt.Sprintf("%d", p)
		}
		tw.writef("%d\t%s\t%s\t$%s\t%d%%\t%s\t%.0f\n",
			e.Rank+1,
			truncate(e.MatchResult.Listing.Title, 40),
			e.MatchResult.Listing.Store,
			e.MatchResult.Listing.CurrentPrice.StringFixed(2),
			e.MatchResult.Listing.DiscountPercent,
			priority,
			e.MatchResult.PopularityScore,
		)
	}
	return tw.finish()
}

func printMatchDetail(title string, normalized string, entry *domain.CatalogEntry, confidence, popularity float64) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Title:\t%s\n", title)
	tw.writef("Normalized:\t%s\n", normalized)
	if entry != nil {
		tw.writef("Matched:\t%s\n", entry.Title)
		tw.writef("Priority:\t%d/10\n", entry.Priority)
		tw.writef("Category:\t%s\n", entry.Category)
		tw.writef("Confidence:\t%.2f\n", confidence)
	} else {
		tw.writef("Matched:\t-\n")
	}
	tw.writef("Popularity:\t%.0f/100\n", popularity)
	return tw.finish()
}

func printCatalogStats(stats catalog.Stats) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Total games:\t%d\n", stats.TotalGames)
	tw.writef("Skipped entries:\t%d\n", stats.SkippedEntries)
	tw.writef("\nPRIORITY\tGAMES\n")
	for p := 10; p >= 1; p-- {
		if n, ok := stats.PriorityDistribution[p]; ok {
			tw.writef("%d\t%d\n", p, n)
		}
	}
	categories := make([]string, 0, len(stats.CategoryDistribution))
	for category := range stats.CategoryDistribution {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	tw.writef("\nCATEGORY\tGAMES\n")
	for _, category := range categories {
		tw.writef("%s\t%d\n", category, stats.CategoryDistribution[category])
	}
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
