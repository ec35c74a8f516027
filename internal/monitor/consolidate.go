package monitor

import (
	"errors"
	"fmt"
	"time"

	"github.com/avierra/futmon/internal/domain"
)

// AccountResult is one adapter's outcome for a refresh cycle: either a full
// snapshot or a classified failure.
type AccountResult struct {
	Snapshot domain.AccountSnapshot
	Err      error
}

// Consolidate merges the two account results into one report. It is
// stateless: staleness decisions belong to the caller.
//
// Both succeed: positions merge in canonical order and totals cover both
// accounts. Exactly one fails: the failed section is marked unavailable
// (never zeroed), its positions are excluded, totals cover the surviving
// account only, and Partial is set. Both fail: a report-level error is
// returned instead of a report.
func Consolidate(cycleID string, now time.Time, perp, std AccountResult) (domain.ConsolidatedReport, error) {
	if perp.Err != nil && std.Err != nil {
		return domain.ConsolidatedReport{}, fmt.Errorf("all accounts unreachable: %w",
			errors.Join(perp.Err, std.Err))
	}

	report := domain.ConsolidatedReport{
		CycleID:     cycleID,
		Sections:    make(map[domain.AccountType]domain.AccountSection, 2),
		GeneratedAt: now,
	}

	for _, res := range []AccountResult{perp, std} {
		if res.Err != nil {
			report.Partial = true
			continue
		}
		snap := res.Snapshot

		balance := snap.Balance
		report.Sections[snap.AccountType] = domain.AccountSection{
			Status:  domain.SectionOK,
			Balance: &balance,
		}

		report.Positions = append(report.Positions, dedupePositions(snap.Positions)...)

		if balance.TotalBalance != nil {
			report.TotalBalance += *balance.TotalBalance
		}
	}

	// Failed sections carry the classified kind so consumers can render a
	// distinct message per cause.
	for t, err := range map[domain.AccountType]error{
		domain.AccountPerpetual: perp.Err,
		domain.AccountStandard:  std.Err,
	} {
		if err != nil {
			report.Sections[t] = domain.AccountSection{
				Status:      domain.SectionUnavailable,
				FailureKind: domain.KindOf(err),
			}
		}
	}

	domain.SortPositions(report.Positions)
	report.PositionCount = len(report.Positions)
	for _, p := range report.Positions {
		pnl, _ := p.PnlOrDerived()
		report.TotalUnrealizedPnl += pnl
	}

	return report, nil
}

// dedupePositions enforces the (symbol, side, accountType) uniqueness
// invariant within one snapshot. When the upstream reports the same exposure
// twice (e.g. isolated and cross rows for one symbol), sizes, margins, and
// PnL are summed and the first row's prices are kept.
func dedupePositions(positions []domain.Position) []domain.Position {
	type key struct {
		symbol string
		side   domain.PositionSide
	}

	index := make(map[key]int, len(positions))
	out := make([]domain.Position, 0, len(positions))
	for _, p := range positions {
		k := key{symbol: p.Symbol, side: p.Side}
		i, seen := index[k]
		if !seen {
			index[k] = len(out)
			out = append(out, p)
			continue
		}

		out[i].Size += p.Size
		out[i].Margin = addOptional(out[i].Margin, p.Margin)
		out[i].UnrealizedPnl = addOptional(out[i].UnrealizedPnl, p.UnrealizedPnl)
	}
	return out
}

// addOptional sums two nullable values, treating both-nil as still unknown.
func addOptional(a, b *float64) *float64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		sum := *a + *b
		return &sum
	}
}
