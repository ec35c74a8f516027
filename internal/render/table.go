// Package render formats consolidated reports for terminal output.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/avierra/futmon/internal/domain"
)

// Report writes a human-readable rendering of a consolidated report: one
// table for the per-account balance sections and one for open positions.
func Report(w io.Writer, report domain.ConsolidatedReport) {
	var flags []string
	if report.Partial {
		flags = append(flags, "PARTIAL")
	}
	if report.Stale {
		flags = append(flags, "STALE")
	}
	suffix := ""
	if len(flags) > 0 {
		suffix = " [" + strings.Join(flags, ", ") + "]"
	}
	fmt.Fprintf(w, "Report %s generated %s%s\n\n",
		report.CycleID,
		report.GeneratedAt.Format("2006-01-02 15:04:05 MST"),
		suffix,
	)

	balances := tablewriter.NewWriter(w)
	balances.SetHeader([]string{"Account", "Status", "Balance", "Available", "Unrealized PnL"})
	for _, accountType := range domain.AccountTypes {
		section := report.Section(accountType)
		if section.Status == domain.SectionUnavailable {
			balances.Append([]string{
				string(accountType),
				fmt.Sprintf("unavailable (%s)", section.FailureKind),
				"-", "-", "-",
			})
			continue
		}
		balances.Append([]string{
			string(accountType),
			string(section.Status),
			money(section.Balance.TotalBalance),
			money(section.Balance.AvailableBalance),
			money(section.Balance.UnrealizedPnl),
		})
	}
	balances.SetFooter([]string{"total", "", money(&report.TotalBalance), "", money(&report.TotalUnrealizedPnl)})
	balances.Render()
	fmt.Fprintln(w)

	positions := tablewriter.NewWriter(w)
	positions.SetHeader([]string{"Symbol", "Side", "Account", "Size", "Entry", "Mark", "Leverage", "PnL"})
	for _, pos := range report.Positions {
		pnl, _ := pos.PnlOrDerived()
		positions.Append([]string{
			pos.Symbol,
			string(pos.Side),
			string(pos.AccountType),
			fmt.Sprintf("%g", pos.Size),
			price(pos.EntryPrice),
			price(pos.MarkPrice),
			fmt.Sprintf("%gx", pos.Leverage),
			fmt.Sprintf("%.2f", pnl),
		})
	}
	positions.Render()
}

// money formats an optional monetary value.
func money(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

// price formats an optional price.
func price(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.6g", *v)
}
