package monitor

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avierra/futmon/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFetcher implements AccountFetcher with canned results.
type fakeFetcher struct {
	accountType domain.AccountType

	mu        sync.Mutex
	balance   domain.Balance
	positions []domain.Position
	err       error
}

func (f *fakeFetcher) AccountType() domain.AccountType { return f.accountType }

func (f *fakeFetcher) FetchBalance(ctx context.Context) (domain.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Balance{}, f.err
	}
	return f.balance, nil
}

func (f *fakeFetcher) FetchPositions(ctx context.Context) ([]domain.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.positions, nil
}

func (f *fakeFetcher) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func healthyFetchers() (*fakeFetcher, *fakeFetcher) {
	perp := &fakeFetcher{
		accountType: domain.AccountPerpetual,
		balance:     domain.Balance{AccountType: domain.AccountPerpetual, TotalBalance: fp(1000), Currency: "USDT"},
		positions: []domain.Position{
			{Symbol: "BTC-USDT", Side: domain.SideLong, Size: 1, UnrealizedPnl: fp(25), AccountType: domain.AccountPerpetual},
		},
	}
	std := &fakeFetcher{
		accountType: domain.AccountStandard,
		balance:     domain.Balance{AccountType: domain.AccountStandard, TotalBalance: fp(400), Currency: "USDT"},
	}
	return perp, std
}

// recordingNotifier captures events delivered through the Notifier surface.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(ctx context.Context, event, title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) recorded() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

// memoryCache is an in-process domain.ReportCache.
type memoryCache struct {
	mu     sync.Mutex
	latest *domain.ConsolidatedReport
}

func (c *memoryCache) SetLatest(ctx context.Context, report domain.ConsolidatedReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest = &report
	return nil
}

func (c *memoryCache) GetLatest(ctx context.Context) (domain.ConsolidatedReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return domain.ConsolidatedReport{}, domain.ErrNoReport
	}
	return *c.latest, nil
}

func TestRunOncePublishesReport(t *testing.T) {
	perp, std := healthyFetchers()
	cache := &memoryCache{}
	m := New(perp, std, time.Minute, testLogger(), WithReportCache(cache))

	var publishedMu sync.Mutex
	var published []domain.ConsolidatedReport
	m.OnPublish(func(r domain.ConsolidatedReport) {
		publishedMu.Lock()
		defer publishedMu.Unlock()
		published = append(published, r)
	})

	report, err := m.RunOnce(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, report.CycleID)
	assert.Equal(t, 1400.0, report.TotalBalance)
	assert.Equal(t, 1, report.PositionCount)
	assert.Equal(t, StateSuccess, m.State())

	publishedMu.Lock()
	require.Len(t, published, 1)
	publishedMu.Unlock()

	cached, err := cache.GetLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.CycleID, cached.CycleID)
}

func TestRunOncePartial(t *testing.T) {
	perp, std := healthyFetchers()
	std.setErr(domain.NewFault(domain.FaultTimeout, "deadline"))
	m := New(perp, std, time.Minute, testLogger())

	report, err := m.RunOnce(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Partial)
	assert.Equal(t, StatePartialSuccess, m.State())
	assert.Equal(t, domain.SectionUnavailable, report.Section(domain.AccountStandard).Status)
}

func TestStaleRetentionAndRecovery(t *testing.T) {
	perp, std := healthyFetchers()
	notifier := &recordingNotifier{}
	m := New(perp, std, time.Minute, testLogger(), WithNotifier(notifier))
	ctx := context.Background()

	good, err := m.RunOnce(ctx)
	require.NoError(t, err)
	require.False(t, good.Stale)

	// All accounts down: the last good report is re-published, tagged stale.
	perp.setErr(domain.NewFault(domain.FaultUpstream, "down"))
	std.setErr(domain.NewFault(domain.FaultUpstream, "down"))

	stale, err := m.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, stale.Stale)
	assert.Equal(t, good.CycleID, stale.CycleID, "the retained report is the previous cycle's")
	assert.Equal(t, good.TotalBalance, stale.TotalBalance)
	assert.Equal(t, StateFailed, m.State())

	// A second failing cycle must not re-alert.
	_, err = m.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{EventRefreshFailed}, notifier.recorded())

	// Recovery clears the stale flag and alerts exactly once.
	perp.setErr(nil)
	std.setErr(nil)
	fresh, err := m.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, fresh.Stale)
	assert.NotEqual(t, good.CycleID, fresh.CycleID)
	assert.Equal(t, []string{EventRefreshFailed, EventRefreshRecovered}, notifier.recorded())
}

func TestFailureWithoutPriorReport(t *testing.T) {
	perp, std := healthyFetchers()
	perp.setErr(domain.NewFault(domain.FaultAuth, "denied"))
	std.setErr(domain.NewFault(domain.FaultAuth, "denied"))
	m := New(perp, std, time.Minute, testLogger())

	_, err := m.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.FaultAuth, domain.KindOf(err))
	assert.Equal(t, StateFailed, m.State())

	_, err = m.Latest()
	assert.Error(t, err, "no stale report is synthesized when none ever existed")
}

func TestLatestBeforeAnyCycle(t *testing.T) {
	m := New(nil, nil, time.Minute, testLogger())

	_, err := m.Latest()
	assert.ErrorIs(t, err, domain.ErrNoReport)
}

func TestRunOnceUnconfigured(t *testing.T) {
	m := New(nil, nil, time.Minute, testLogger())

	_, err := m.RunOnce(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestSetFetchersTakesEffect(t *testing.T) {
	m := New(nil, nil, time.Minute, testLogger())
	_, err := m.RunOnce(context.Background())
	require.ErrorIs(t, err, domain.ErrNotConfigured)

	perp, std := healthyFetchers()
	m.SetFetchers(perp, std)

	report, err := m.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1400.0, report.TotalBalance)
}

func TestTriggerRefreshNeverBlocks(t *testing.T) {
	m := New(nil, nil, time.Minute, testLogger())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			m.TriggerRefresh()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TriggerRefresh blocked")
	}
}

func TestRunServesManualTrigger(t *testing.T) {
	perp, std := healthyFetchers()
	m := New(perp, std, time.Hour, testLogger())

	published := make(chan domain.ConsolidatedReport, 4)
	m.OnPublish(func(r domain.ConsolidatedReport) { published <- r })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	// The first cycle runs immediately on start.
	var first domain.ConsolidatedReport
	select {
	case first = <-published:
	case <-time.After(2 * time.Second):
		t.Fatal("no initial cycle")
	}

	// A manual trigger produces a new cycle well before the hour tick.
	m.TriggerRefresh()
	select {
	case second := <-published:
		assert.NotEqual(t, first.CycleID, second.CycleID)
	case <-time.After(2 * time.Second):
		t.Fatal("manual trigger did not run a cycle")
	}
}
