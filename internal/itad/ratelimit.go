package itad

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrDailyBudgetExhausted is returned once the API key's request budget
// for the current UTC day is spent.
var ErrDailyBudgetExhausted = errors.New("daily request budget exhausted")

// RateLimiter paces IsThereAnyDeal API calls. ITAD grants each registered
// app a fixed number of requests per calendar day tied to its API key, so
// the limiter combines a token bucket for short-term pacing with a daily
// budget that resets at midnight UTC.
type RateLimiter struct {
	bucket *rate.Limiter

	mu      sync.Mutex
	used    int64
	day     time.Time // UTC midnight of the day `used` counts against
	budget  int64
	nowFunc func() time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// NewRateLimiter creates a limiter allowing perSecond sustained calls with
// the given burst, and at most dailyBudget calls per UTC calendar day.
func NewRateLimiter(
	perSecond float64,
	burst int,
	dailyBudget int64,
	opts ...RateLimiterOption,
) *RateLimiter {
	r := &RateLimiter{
		bucket:  rate.NewLimiter(rate.Limit(perSecond), burst),
		budget:  dailyBudget,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.day = utcDay(r.nowFunc())
	return r
}

// Wait reserves one call from the daily budget, then blocks until the token
// bucket allows it or the context is canceled. A canceled wait returns the
// reservation to the budget. Returns ErrDailyBudgetExhausted when the
// budget for the current UTC day is spent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.reserve(); err != nil {
		return err
	}
	if err := r.bucket.Wait(ctx); err != nil {
		r.unreserve()
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

// Used returns the number of calls made so far in the current UTC day.
func (r *RateLimiter) Used() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollover()
	return r.used
}

// Limit returns the configured daily request budget.
func (r *RateLimiter) Limit() int64 {
	return r.budget
}

// Remaining returns the calls left in the current UTC day.
func (r *RateLimiter) Remaining() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollover()
	if r.used >= r.budget {
		return 0
	}
	return r.budget - r.used
}

// ResetAt returns the next midnight UTC, when the budget renews.
func (r *RateLimiter) ResetAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollover()
	return r.day.Add(24 * time.Hour)
}

func (r *RateLimiter) reserve() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollover()
	if r.used >= r.budget {
		return fmt.Errorf("%w (%d/%d)", ErrDailyBudgetExhausted, r.used, r.budget)
	}
	r.used++
	return nil
}

func (r *RateLimiter) unreserve() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.used > 0 {
		r.used--
	}
}

// rollover zeroes the counter when the UTC day has changed. Callers must
// hold r.mu.
func (r *RateLimiter) rollover() {
	if day := utcDay(r.nowFunc()); day.After(r.day) {
		r.used = 0
		r.day = day
	}
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
