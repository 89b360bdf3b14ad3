// Package catalog loads and serves the curated priority-game catalog.
//
// The catalog is a JSON document of known-quality titles with priority
// scores, loaded once at process start. Malformed entries are a
// data-quality condition: they are skipped with a warning and the rest of
// the file is used. Readers receive an immutable snapshot, so concurrent
// ranking passes need no locking against each other.
package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/gamedealer/gamedealer/pkg/logger"
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

// document is the on-disk shape of priority_games.json.
type document struct {
	Games []domain.CatalogEntry `json:"games"`
}

// Store holds the loaded catalog and serves read-only snapshots.
type Store struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	entries []domain.CatalogEntry
	skipped int
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger used for load warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Load reads the catalog file at path and returns a Store serving it.
func Load(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:   path,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the catalog file, replacing the current snapshot.
// A read or parse failure leaves the previous snapshot in place.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path) //nolint:gosec // catalog path from trusted config
	if err != nil {
		return fmt.Errorf("reading catalog file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing catalog JSON: %w", err)
	}

	entries := make([]domain.CatalogEntry, 0, len(doc.Games))
	skipped := 0
	for i := range doc.Games {
		entry := doc.Games[i]
		if !entry.Valid() {
			skipped++
			s.logger.Warn("skipping malformed catalog entry",
				"title", entry.Title,
				"priority", entry.Priority,
			)
			continue
		}
		entries = append(entries, entry)
	}

	s.mu.Lock()
	s.entries = entries
	s.skipped = skipped
	s.mu.Unlock()

	s.logger.Info("catalog loaded",
		"path", s.path,
		"entries", len(entries),
		"skipped", skipped,
	)
	return nil
}

// Snapshot returns a copy of the catalog entries. The copy is owned by
// the caller and safe to hold for the duration of a ranking pass.
func (s *Store) Snapshot() []domain.CatalogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// Len returns the number of valid entries currently loaded.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats summarizes the loaded catalog.
type Stats struct {
	TotalGames           int            `json:"total_games"`
	SkippedEntries       int            `json:"skipped_entries"`
	PriorityDistribution map[int]int    `json:"priority_distribution"`
	CategoryDistribution map[string]int `json:"category_distribution"`
}

// Stats returns distribution statistics for diagnostics.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalGames:           len(s.entries),
		SkippedEntries:       s.skipped,
		PriorityDistribution: make(map[int]int),
		CategoryDistribution: make(map[string]int),
	}
	for i := range s.entries {
		stats.PriorityDistribution[s.entries[i].Priority]++
		category := s.entries[i].Category
		if category == "" {
			category = "Unknown"
		}
		stats.CategoryDistribution[category]++
	}
	return stats
}
