package domain

import (
	"sort"
	"time"
)

// SectionStatus describes the coverage of one account section in a report.
type SectionStatus string

const (
	SectionOK          SectionStatus = "ok"
	SectionUnavailable SectionStatus = "unavailable"
)

// AccountSection is one account family's slice of a consolidated report.
// When the fetch for that account failed, Status is SectionUnavailable, the
// balance pointer is nil, and FailureKind carries the classified cause,
// never a zeroed balance.
type AccountSection struct {
	Status      SectionStatus `json:"status"`
	Balance     *Balance      `json:"balance,omitempty"`
	FailureKind FaultKind     `json:"failure_kind,omitempty"`
}

// ConsolidatedReport is the merged balance/position/PnL view across both
// account families. It is recomputed from scratch on every refresh cycle and
// never mutated after publication.
type ConsolidatedReport struct {
	CycleID  string                         `json:"cycle_id"`
	Sections map[AccountType]AccountSection `json:"sections"`
	// Positions is ordered by account type (perpetual first) then symbol.
	Positions []Position `json:"positions"`

	TotalBalance       float64 `json:"total_balance"`
	TotalUnrealizedPnl float64 `json:"total_unrealized_pnl"`
	PositionCount      int     `json:"position_count"`

	// Partial is set when exactly one account section is unavailable, so a
	// consumer cannot mistake a partial total for a full one.
	Partial bool `json:"partial"`
	// Stale is set by the refresh loop when it re-publishes the last good
	// report after a cycle in which both accounts were unreachable.
	Stale bool `json:"stale"`

	GeneratedAt time.Time `json:"generated_at"`
}

// SortPositions orders positions canonically: account type (perpetual before
// standard), then symbol, then side for the stable tiebreak.
func SortPositions(positions []Position) {
	rank := func(t AccountType) int {
		if t == AccountPerpetual {
			return 0
		}
		return 1
	}
	sort.SliceStable(positions, func(i, j int) bool {
		a, b := positions[i], positions[j]
		if rank(a.AccountType) != rank(b.AccountType) {
			return rank(a.AccountType) < rank(b.AccountType)
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Side < b.Side
	})
}

// Section returns the section for the given account type, defaulting to an
// unavailable section when the report carries none.
func (r *ConsolidatedReport) Section(t AccountType) AccountSection {
	if s, ok := r.Sections[t]; ok {
		return s
	}
	return AccountSection{Status: SectionUnavailable}
}
