package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avierra/futmon/internal/domain"
)

func fp(v float64) *float64 { return &v }

func perpSnapshot() domain.AccountSnapshot {
	return domain.AccountSnapshot{
		AccountType: domain.AccountPerpetual,
		Balance: domain.Balance{
			AccountType:   domain.AccountPerpetual,
			TotalBalance:  fp(1000),
			UnrealizedPnl: fp(50),
			Currency:      "USDT",
		},
		Positions: []domain.Position{
			{Symbol: "BTC-USDT", Side: domain.SideLong, Size: 1, UnrealizedPnl: fp(50), AccountType: domain.AccountPerpetual},
		},
	}
}

func stdSnapshot() domain.AccountSnapshot {
	return domain.AccountSnapshot{
		AccountType: domain.AccountStandard,
		Balance: domain.Balance{
			AccountType:  domain.AccountStandard,
			TotalBalance: fp(500),
			Currency:     "USDT",
		},
		Positions: []domain.Position{
			{Symbol: "ETH-USDT", Side: domain.SideShort, Size: 2, UnrealizedPnl: fp(-10), AccountType: domain.AccountStandard},
		},
	}
}

func TestConsolidateBothSucceed(t *testing.T) {
	now := time.Now().UTC()
	report, err := Consolidate("cycle-1", now,
		AccountResult{Snapshot: perpSnapshot()},
		AccountResult{Snapshot: stdSnapshot()},
	)
	require.NoError(t, err)

	assert.Equal(t, "cycle-1", report.CycleID)
	assert.Equal(t, now, report.GeneratedAt)
	assert.False(t, report.Partial)
	assert.False(t, report.Stale)

	assert.Equal(t, 1500.0, report.TotalBalance)
	assert.Equal(t, 40.0, report.TotalUnrealizedPnl)
	assert.Equal(t, 2, report.PositionCount)

	require.Len(t, report.Positions, 2)
	assert.Equal(t, domain.AccountPerpetual, report.Positions[0].AccountType, "perpetual positions sort first")

	assert.Equal(t, domain.SectionOK, report.Section(domain.AccountPerpetual).Status)
	assert.Equal(t, domain.SectionOK, report.Section(domain.AccountStandard).Status)
}

func TestConsolidateOneFails(t *testing.T) {
	report, err := Consolidate("cycle-2", time.Now().UTC(),
		AccountResult{Snapshot: perpSnapshot()},
		AccountResult{Err: domain.NewFault(domain.FaultTimeout, "deadline exceeded")},
	)
	require.NoError(t, err)

	assert.True(t, report.Partial)

	// The failed section is marked unavailable with its classified kind,
	// never served as zeroes.
	std := report.Section(domain.AccountStandard)
	assert.Equal(t, domain.SectionUnavailable, std.Status)
	assert.Nil(t, std.Balance)
	assert.Equal(t, domain.FaultTimeout, std.FailureKind)

	// Totals cover only the surviving account.
	assert.Equal(t, 1000.0, report.TotalBalance)
	assert.Equal(t, 50.0, report.TotalUnrealizedPnl)
	assert.Equal(t, 1, report.PositionCount)
}

func TestConsolidateBothFail(t *testing.T) {
	perpErr := domain.NewFault(domain.FaultTimeout, "perp down")
	stdErr := domain.NewFault(domain.FaultAuth, "std denied")

	_, err := Consolidate("cycle-3", time.Now().UTC(),
		AccountResult{Err: perpErr},
		AccountResult{Err: stdErr},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, perpErr)
	assert.ErrorIs(t, err, stdErr)
}

func TestConsolidateDeduplicatesWithinAccount(t *testing.T) {
	snap := perpSnapshot()
	// Same symbol and side twice, e.g. isolated and cross rows.
	snap.Positions = []domain.Position{
		{Symbol: "BTC-USDT", Side: domain.SideLong, Size: 1, Margin: fp(100), UnrealizedPnl: fp(10), EntryPrice: fp(42000), AccountType: domain.AccountPerpetual},
		{Symbol: "BTC-USDT", Side: domain.SideLong, Size: 2, Margin: fp(200), UnrealizedPnl: fp(-4), EntryPrice: fp(43000), AccountType: domain.AccountPerpetual},
		{Symbol: "BTC-USDT", Side: domain.SideShort, Size: 5, AccountType: domain.AccountPerpetual},
	}

	report, err := Consolidate("cycle-4", time.Now().UTC(),
		AccountResult{Snapshot: snap},
		AccountResult{Snapshot: stdSnapshot()},
	)
	require.NoError(t, err)

	var merged *domain.Position
	for i := range report.Positions {
		p := &report.Positions[i]
		if p.Symbol == "BTC-USDT" && p.Side == domain.SideLong {
			merged = p
			break
		}
	}
	require.NotNil(t, merged)

	assert.Equal(t, 3.0, merged.Size)
	require.NotNil(t, merged.Margin)
	assert.Equal(t, 300.0, *merged.Margin)
	require.NotNil(t, merged.UnrealizedPnl)
	assert.Equal(t, 6.0, *merged.UnrealizedPnl)
	require.NotNil(t, merged.EntryPrice)
	assert.Equal(t, 42000.0, *merged.EntryPrice, "the first row's prices are kept")

	// The opposite side stays separate: uniqueness is (symbol, side, account).
	assert.Equal(t, 4, report.PositionCount)
}

func TestConsolidateSameSymbolAcrossAccounts(t *testing.T) {
	perp := perpSnapshot()
	std := stdSnapshot()
	std.Positions = []domain.Position{
		{Symbol: "BTC-USDT", Side: domain.SideLong, Size: 3, AccountType: domain.AccountStandard},
	}

	report, err := Consolidate("cycle-5", time.Now().UTC(),
		AccountResult{Snapshot: perp},
		AccountResult{Snapshot: std},
	)
	require.NoError(t, err)

	// The same symbol and side in different account families never merges.
	assert.Equal(t, 2, report.PositionCount)
}
