package service

import (
	"fmt"
	"log/slog"

	"github.com/avierra/futmon/internal/domain"
	"github.com/avierra/futmon/internal/monitor"
)

// ReportService exposes read views over the latest consolidated report.
type ReportService struct {
	mon    *monitor.Monitor
	logger *slog.Logger
}

// NewReportService creates a ReportService backed by the refresh loop.
func NewReportService(mon *monitor.Monitor, logger *slog.Logger) *ReportService {
	return &ReportService{mon: mon, logger: logger}
}

// Latest returns the most recent consolidated report.
func (s *ReportService) Latest() (domain.ConsolidatedReport, error) {
	return s.mon.Latest()
}

// Section returns the latest section for one account family along with
// the positions belonging to it.
func (s *ReportService) Section(t domain.AccountType) (domain.AccountSection, []domain.Position, error) {
	report, err := s.mon.Latest()
	if err != nil {
		return domain.AccountSection{}, nil, err
	}

	section := report.Section(t)

	var positions []domain.Position
	for _, pos := range report.Positions {
		if pos.AccountType == t {
			positions = append(positions, pos)
		}
	}
	return section, positions, nil
}

// State returns the current refresh loop state.
func (s *ReportService) State() monitor.State {
	return s.mon.State()
}

// TriggerRefresh requests an immediate refresh cycle. Requests arriving
// while a cycle is running are coalesced.
func (s *ReportService) TriggerRefresh() {
	s.mon.TriggerRefresh()
}

// Stats computes the aggregate PnL summary from the latest report.
func (s *ReportService) Stats() (domain.StatsSummary, error) {
	report, err := s.mon.Latest()
	if err != nil {
		return domain.StatsSummary{}, err
	}

	stats := domain.StatsSummary{
		Symbols: make(map[string]domain.SymbolStats),
		Partial: report.Partial,
		Stale:   report.Stale,
	}

	for _, pos := range report.Positions {
		pnl, _ := pos.PnlOrDerived()

		stats.TotalPnl += pnl
		stats.TotalPositions++
		switch pos.AccountType {
		case domain.AccountPerpetual:
			stats.PerpetualPnl += pnl
		case domain.AccountStandard:
			stats.StandardPnl += pnl
		}
		switch {
		case pnl > 0:
			stats.WinningCount++
		case pnl < 0:
			stats.LosingCount++
		}
		if pos.Margin != nil {
			stats.TotalMargin += *pos.Margin
		}

		sym := stats.Symbols[pos.Symbol]
		sym.Pnl += pnl
		sym.Positions++
		switch pos.Side {
		case domain.SideLong:
			sym.Long++
		case domain.SideShort:
			sym.Short++
		}
		stats.Symbols[pos.Symbol] = sym
	}

	decided := stats.WinningCount + stats.LosingCount
	if decided > 0 {
		stats.WinRate = fmt.Sprintf("%.1f%%", float64(stats.WinningCount)/float64(decided)*100)
	} else {
		stats.WinRate = "N/A"
	}

	if section := report.Section(domain.AccountPerpetual); section.Balance != nil {
		stats.PerpetualBalance = section.Balance.TotalBalance
	}
	if section := report.Section(domain.AccountStandard); section.Balance != nil {
		stats.StandardBalance = section.Balance.TotalBalance
	}
	stats.TotalBalance = report.TotalBalance

	return stats, nil
}
