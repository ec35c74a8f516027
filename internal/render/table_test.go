package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avierra/futmon/internal/domain"
)

func fp(v float64) *float64 { return &v }

func TestReportRendering(t *testing.T) {
	report := domain.ConsolidatedReport{
		CycleID: "cycle-9",
		Sections: map[domain.AccountType]domain.AccountSection{
			domain.AccountPerpetual: {
				Status:  domain.SectionOK,
				Balance: &domain.Balance{TotalBalance: fp(1000.5), AvailableBalance: fp(800), UnrealizedPnl: fp(12.3)},
			},
			domain.AccountStandard: {
				Status:      domain.SectionUnavailable,
				FailureKind: domain.FaultTimeout,
			},
		},
		Positions: []domain.Position{
			{Symbol: "BTC-USDT", Side: domain.SideLong, Size: 0.5, EntryPrice: fp(42000), MarkPrice: fp(43000), Leverage: 10, UnrealizedPnl: fp(500), AccountType: domain.AccountPerpetual},
		},
		TotalBalance:       1000.5,
		TotalUnrealizedPnl: 500,
		PositionCount:      1,
		Partial:            true,
		GeneratedAt:        time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	var buf strings.Builder
	Report(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "cycle-9")
	assert.Contains(t, out, "PARTIAL")
	assert.Contains(t, out, "BTC-USDT")
	assert.Contains(t, out, "LONG")
	assert.Contains(t, out, "unavailable (timeout)")
	assert.Contains(t, out, "1000.50")
}

func TestReportRenderingStaleFlag(t *testing.T) {
	report := domain.ConsolidatedReport{
		CycleID:     "cycle-10",
		Stale:       true,
		GeneratedAt: time.Now().UTC(),
	}

	var buf strings.Builder
	Report(&buf, report)
	assert.Contains(t, buf.String(), "STALE")
}
