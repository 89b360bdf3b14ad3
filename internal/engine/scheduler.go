package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the engine on a fixed cadence: deal cycles at one
// interval, popularity refreshes at another (typically much longer, since
// the community lists barely move hour to hour). Each run is bounded by a
// context deadline of its own interval so a wedged cycle cannot stack up
// behind the next one.
type Scheduler struct {
	cron         *cron.Cron
	engine       *Engine
	log          *slog.Logger
	dealEvery    time.Duration
	refreshEvery time.Duration
}

// NewScheduler registers the two recurring jobs. Intervals must be valid
// cron "@every" durations (anything time.Duration can express).
func NewScheduler(
	eng *Engine,
	dealInterval time.Duration,
	popularityInterval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	s := &Scheduler{
		cron:         cron.New(),
		engine:       eng,
		log:          log,
		dealEvery:    dealInterval,
		refreshEvery: popularityInterval,
	}

	if _, err := s.cron.AddFunc("@every "+dealInterval.String(), s.runDealCycle); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc("@every "+popularityInterval.String(), s.runPopularityRefresh); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started",
		"deal_interval", s.dealEvery,
		"popularity_interval", s.refreshEvery,
	)
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runDealCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), s.dealEvery)
	defer cancel()

	result, err := s.engine.RunDealCycle(ctx)
	if err != nil {
		s.log.Error("scheduled deal cycle failed", "error", err)
		return
	}
	s.log.Info("scheduled deal cycle complete",
		"cycle", result.CycleID,
		"ranked", result.Ranked,
		"pages", result.Pages,
		"notified", result.NotificationSent,
	)
}

func (s *Scheduler) runPopularityRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.refreshEvery)
	defer cancel()

	if err := s.engine.RunPopularityRefresh(ctx); err != nil {
		s.log.Error("scheduled popularity refresh failed", "error", err)
		return
	}
	s.log.Info("scheduled popularity refresh complete")
}
