package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func TestKindOf(t *testing.T) {
	assert.Equal(t, FaultTimeout, KindOf(NewFault(FaultTimeout, "deadline")))
	assert.Equal(t, FaultAuth, KindOf(fmt.Errorf("wrapped: %w", NewFault(FaultAuth, "bad key"))))
	assert.Equal(t, FaultUpstream, KindOf(errors.New("anonymous")), "unclassified errors map into the taxonomy")
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(NewFault(FaultTimeout, "")))
	assert.True(t, Retryable(&Fault{Kind: FaultUpstream, Transient: true}))

	assert.False(t, Retryable(NewFault(FaultUpstream, "HTTP 400")))
	assert.False(t, Retryable(NewFault(FaultAuth, "")))
	assert.False(t, Retryable(NewFault(FaultRateLimited, "")))
	assert.False(t, Retryable(NewFault(FaultMalformedResponse, "")))
	assert.False(t, Retryable(errors.New("plain")))
}

func TestFaultUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	fault := WrapFault(FaultUpstream, cause)

	assert.ErrorIs(t, fault, cause)
	assert.Contains(t, fault.Error(), "upstream_error")
}

func TestPnlOrDerivedUpstreamWins(t *testing.T) {
	p := Position{
		Side:          SideLong,
		Size:          2,
		EntryPrice:    fp(100),
		MarkPrice:     fp(90),
		UnrealizedPnl: fp(7.5),
	}

	pnl, derived := p.PnlOrDerived()
	assert.Equal(t, 7.5, pnl, "the upstream value is authoritative even when derivation disagrees")
	assert.False(t, derived)
}

func TestPnlOrDerivedFallback(t *testing.T) {
	long := Position{Side: SideLong, Size: 2, EntryPrice: fp(100), MarkPrice: fp(110)}
	pnl, derived := long.PnlOrDerived()
	assert.Equal(t, 20.0, pnl)
	assert.True(t, derived)

	short := Position{Side: SideShort, Size: 2, EntryPrice: fp(100), MarkPrice: fp(110)}
	pnl, derived = short.PnlOrDerived()
	assert.Equal(t, -20.0, pnl, "a short loses value as the mark rises")
	assert.True(t, derived)
}

func TestPnlOrDerivedMissingPrices(t *testing.T) {
	p := Position{Side: SideLong, Size: 1, EntryPrice: fp(100)}
	pnl, derived := p.PnlOrDerived()
	assert.Zero(t, pnl)
	assert.False(t, derived)
}

func TestSortPositions(t *testing.T) {
	positions := []Position{
		{Symbol: "ETH-USDT", Side: SideLong, AccountType: AccountStandard},
		{Symbol: "BTC-USDT", Side: SideShort, AccountType: AccountPerpetual},
		{Symbol: "BTC-USDT", Side: SideLong, AccountType: AccountPerpetual},
		{Symbol: "ADA-USDT", Side: SideLong, AccountType: AccountStandard},
	}

	SortPositions(positions)

	require.Len(t, positions, 4)
	assert.Equal(t, AccountPerpetual, positions[0].AccountType)
	assert.Equal(t, SideLong, positions[0].Side, "sides tiebreak within a symbol")
	assert.Equal(t, AccountPerpetual, positions[1].AccountType)
	assert.Equal(t, "ADA-USDT", positions[2].Symbol, "standard positions sort after perpetual, then by symbol")
	assert.Equal(t, "ETH-USDT", positions[3].Symbol)
}

func TestReportSectionDefault(t *testing.T) {
	report := ConsolidatedReport{}

	section := report.Section(AccountPerpetual)
	assert.Equal(t, SectionUnavailable, section.Status)
	assert.Nil(t, section.Balance)
}
