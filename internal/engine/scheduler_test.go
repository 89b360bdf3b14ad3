package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSchedulerTestEngine() *Engine {
	return newTestEngine(&mockFetcher{}, testCatalog(), &mockPopularity{}, &mockNotifier{})
}

func TestNewScheduler_RegistersCronEntries(t *testing.T) {
	t.Parallel()

	sched, err := NewScheduler(
		newSchedulerTestEngine(),
		1*time.Hour,
		1*time.Hour,
		quietLogger(),
	)
	require.NoError(t, err)

	entries := sched.Entries()
	assert.Len(t, entries, 2)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	sched, err := NewScheduler(
		newSchedulerTestEngine(),
		1*time.Hour,
		24*time.Hour,
		quietLogger(),
	)
	require.NoError(t, err)

	sched.Start()
	ctx := sched.Stop()
	<-ctx.Done()
}

func TestScheduler_EntriesHaveFutureNextRun(t *testing.T) {
	t.Parallel()

	sched, err := NewScheduler(
		newSchedulerTestEngine(),
		15*time.Minute,
		6*time.Hour,
		quietLogger(),
	)
	require.NoError(t, err)

	sched.Start()
	defer sched.Stop()

	for _, entry := range sched.Entries() {
		assert.True(t, entry.Next.After(time.Now()), "next run should be scheduled")
	}
}

func TestScheduler_RunDealCycleLogsFailure(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	mf.On("FetchListings", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Once()

	eng := newTestEngine(mf, testCatalog(), mp, mn)
	sched, err := NewScheduler(eng, 1*time.Hour, 24*time.Hour, quietLogger())
	require.NoError(t, err)

	// Failures are logged, never panic the cron goroutine.
	sched.runDealCycle()
	mf.AssertExpectations(t)
}

func TestScheduler_RunDealCycleBoundsRuntime(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	var hasDeadline bool
	mf.On("FetchListings", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, hasDeadline = ctx.Deadline()
		}).
		Return(fetchResult(), nil).Once()
	mp.On("Sources", mock.Anything).Return(nil, nil).Maybe()

	eng := newTestEngine(mf, testCatalog(), mp, mn)
	sched, err := NewScheduler(eng, 30*time.Minute, 24*time.Hour, quietLogger())
	require.NoError(t, err)

	sched.runDealCycle()
	assert.True(t, hasDeadline, "scheduled cycles should carry a deadline")
}

func TestScheduler_RunPopularityRefreshInvokesEngine(t *testing.T) {
	t.Parallel()

	mf := &mockFetcher{}
	mp := &mockPopularity{}
	mn := &mockNotifier{}

	mp.On("Refresh", mock.Anything).Return(nil).Once()

	eng := newTestEngine(mf, testCatalog(), mp, mn)
	sched, err := NewScheduler(eng, 1*time.Hour, 24*time.Hour, quietLogger())
	require.NoError(t, err)

	sched.runPopularityRefresh()
	mp.AssertExpectations(t)
}
