// Package monitor runs the refresh loop: it periodically fetches both BingX
// futures accounts, consolidates them into one report, and publishes the
// result atomically for any number of consumers.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/avierra/futmon/internal/domain"
)

// AccountFetcher is the adapter surface the refresh loop needs from each
// account family.
type AccountFetcher interface {
	AccountType() domain.AccountType
	FetchBalance(ctx context.Context) (domain.Balance, error)
	FetchPositions(ctx context.Context) ([]domain.Position, error)
}

// Notifier is the slice of the notification system the monitor uses for
// refresh-failure and recovery alerts.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// State is the refresh loop's lifecycle state, visible to the status
// endpoint.
type State string

const (
	StateIdle           State = "idle"
	StateFetching       State = "fetching"
	StateSuccess        State = "success"
	StatePartialSuccess State = "partial_success"
	StateFailed         State = "failed"
)

// Events published through the Notifier.
const (
	EventRefreshFailed    = "refresh_failed"
	EventRefreshRecovered = "refresh_recovered"
)

// Monitor owns the fetch-consolidate-publish cycle. Cycles are serialized: a
// single goroutine services the ticker and the manual trigger, so a new
// cycle never starts while one is in flight, and the two account fetches
// inside a cycle run concurrently.
type Monitor struct {
	interval time.Duration
	logger   *slog.Logger
	notifier Notifier           // optional
	cache    domain.ReportCache // optional

	refreshCh chan struct{}

	mu       sync.RWMutex
	perp     AccountFetcher
	std      AccountFetcher
	current  *domain.ConsolidatedReport
	lastErr  error
	state    State
	failing  bool
	onPublish []func(domain.ConsolidatedReport)
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithNotifier attaches failure/recovery alerting.
func WithNotifier(n Notifier) Option {
	return func(m *Monitor) { m.notifier = n }
}

// WithReportCache mirrors every published report into an external cache.
func WithReportCache(c domain.ReportCache) Option {
	return func(m *Monitor) { m.cache = c }
}

// New creates a Monitor over the two account adapters. Either adapter may be
// nil until credentials are installed via SetFetchers.
func New(perp, std AccountFetcher, interval time.Duration, logger *slog.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		interval:  interval,
		logger:    logger.With(slog.String("component", "monitor")),
		refreshCh: make(chan struct{}, 1),
		perp:      perp,
		std:       std,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnPublish registers a callback invoked with every published report.
// Register before Run; callbacks run on the refresh goroutine.
func (m *Monitor) OnPublish(fn func(domain.ConsolidatedReport)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPublish = append(m.onPublish, fn)
}

// SetFetchers atomically installs a new adapter pair, e.g. after credentials
// change mid-session. The next cycle uses the new pair.
func (m *Monitor) SetFetchers(perp, std AccountFetcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perp = perp
	m.std = std
}

// State returns the loop's current lifecycle state.
func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Latest returns the last published report. Before any cycle has produced a
// report it returns the classified failure of the last cycle, or ErrNoReport
// when none has run yet.
func (m *Monitor) Latest() (domain.ConsolidatedReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current != nil {
		return *m.current, nil
	}
	if m.lastErr != nil {
		return domain.ConsolidatedReport{}, m.lastErr
	}
	return domain.ConsolidatedReport{}, domain.ErrNoReport
}

// TriggerRefresh requests an on-demand cycle. It never blocks: a request
// arriving while a cycle is already pending or in flight is coalesced.
func (m *Monitor) TriggerRefresh() {
	select {
	case m.refreshCh <- struct{}{}:
	default:
	}
}

// Run drives the loop until ctx is cancelled. One cycle runs immediately on
// start; afterwards the ticker and manual triggers alternate, whichever
// arrives first after the previous cycle completes. The interval is never
// shortened on failure.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.InfoContext(ctx, "refresh loop starting",
		slog.Duration("interval", m.interval),
	)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("refresh loop stopped")
			return ctx.Err()
		case <-ticker.C:
			m.runCycle(ctx)
		case <-m.refreshCh:
			m.runCycle(ctx)
		}
	}
}

// RunOnce executes a single refresh cycle synchronously and returns the
// resulting report. Used by the one-shot mode.
func (m *Monitor) RunOnce(ctx context.Context) (domain.ConsolidatedReport, error) {
	m.runCycle(ctx)
	return m.Latest()
}

// runCycle executes one fetch-consolidate-publish cycle. Cycles are not
// preemptible; the only suspension points are the network calls inside the
// adapters.
func (m *Monitor) runCycle(ctx context.Context) {
	m.mu.Lock()
	m.state = StateFetching
	perp, std := m.perp, m.std
	m.mu.Unlock()

	cycleID := uuid.NewString()
	start := time.Now()

	if perp == nil || std == nil {
		m.finishCycle(ctx, cycleID, domain.ConsolidatedReport{}, domain.ErrNotConfigured)
		return
	}

	perpRes := make(chan AccountResult, 1)
	stdRes := make(chan AccountResult, 1)
	go func() { perpRes <- fetchAccount(ctx, perp) }()
	go func() { stdRes <- fetchAccount(ctx, std) }()

	// Consolidation waits for both accounts to resolve, success or failure.
	report, err := Consolidate(cycleID, time.Now().UTC(), <-perpRes, <-stdRes)

	m.logger.DebugContext(ctx, "cycle fetch complete",
		slog.String("cycle_id", cycleID),
		slog.Duration("elapsed", time.Since(start)),
	)

	m.finishCycle(ctx, cycleID, report, err)

	// A manual request that arrived during this cycle is satisfied by the
	// report just published; drop it instead of running back-to-back.
	select {
	case <-m.refreshCh:
	default:
	}
}

// fetchAccount runs one account's balance and positions fetches
// concurrently and combines them into a single result. The first failure
// cancels the sibling fetch.
func fetchAccount(ctx context.Context, f AccountFetcher) AccountResult {
	snap := domain.AccountSnapshot{AccountType: f.AccountType()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		balance, err := f.FetchBalance(gctx)
		if err != nil {
			return err
		}
		snap.Balance = balance
		return nil
	})
	g.Go(func() error {
		positions, err := f.FetchPositions(gctx)
		if err != nil {
			return err
		}
		snap.Positions = positions
		return nil
	})

	if err := g.Wait(); err != nil {
		return AccountResult{Err: err}
	}
	return AccountResult{Snapshot: snap}
}

// finishCycle publishes the cycle's outcome: a fresh report, the previous
// report re-tagged stale when every account was unreachable, or a recorded
// failure when there is nothing to show at all.
func (m *Monitor) finishCycle(ctx context.Context, cycleID string, report domain.ConsolidatedReport, err error) {
	m.mu.Lock()

	var (
		published  *domain.ConsolidatedReport
		transition string
	)

	switch {
	case err == nil:
		fresh := report
		m.current = &fresh
		m.lastErr = nil
		if report.Partial {
			m.state = StatePartialSuccess
		} else {
			m.state = StateSuccess
		}
		if m.failing {
			m.failing = false
			transition = EventRefreshRecovered
		}
		published = &fresh

	case m.current != nil:
		// Both accounts down but a previous report exists: keep showing it,
		// explicitly tagged, rather than a zeroed or missing balance.
		stale := *m.current
		stale.Stale = true
		m.current = &stale
		m.lastErr = err
		m.state = StateFailed
		if !m.failing {
			m.failing = true
			transition = EventRefreshFailed
		}
		published = &stale

	default:
		m.lastErr = err
		m.state = StateFailed
		if !m.failing {
			m.failing = true
			transition = EventRefreshFailed
		}
	}

	callbacks := m.onPublish
	m.mu.Unlock()

	if err != nil {
		m.logger.ErrorContext(ctx, "refresh cycle failed",
			slog.String("cycle_id", cycleID),
			slog.String("error", err.Error()),
			slog.Bool("stale_retained", published != nil),
		)
	} else {
		m.logger.InfoContext(ctx, "refresh cycle complete",
			slog.String("cycle_id", cycleID),
			slog.Int("positions", report.PositionCount),
			slog.Bool("partial", report.Partial),
		)
	}

	if published != nil {
		if m.cache != nil {
			if cacheErr := m.cache.SetLatest(ctx, *published); cacheErr != nil {
				m.logger.WarnContext(ctx, "report cache write failed",
					slog.String("error", cacheErr.Error()),
				)
			}
		}
		for _, fn := range callbacks {
			fn(*published)
		}
	}

	m.sendTransition(ctx, transition, err)
}

// sendTransition delivers at most one alert per failure episode and one on
// recovery.
func (m *Monitor) sendTransition(ctx context.Context, event string, cause error) {
	if m.notifier == nil || event == "" {
		return
	}

	var title, message string
	switch event {
	case EventRefreshFailed:
		title = "Refresh failed"
		message = "Both BingX futures accounts are unreachable."
		if cause != nil {
			message += " Last error: " + cause.Error()
		}
	case EventRefreshRecovered:
		title = "Refresh recovered"
		message = "Account data is flowing again."
	}

	if err := m.notifier.Notify(ctx, event, title, message); err != nil {
		m.logger.WarnContext(ctx, "notification failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
