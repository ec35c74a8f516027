package domain

// SymbolStats aggregates positions sharing one symbol across both accounts.
type SymbolStats struct {
	Pnl       float64 `json:"pnl"`
	Positions int     `json:"positions"`
	Long      int     `json:"long"`
	Short     int     `json:"short"`
}

// StatsSummary is the advanced PnL view derived from a consolidated report.
// Balance fields stay nil when the corresponding section was unavailable.
type StatsSummary struct {
	TotalPnl         float64                `json:"total_pnl"`
	TotalPositions   int                    `json:"total_positions"`
	PerpetualPnl     float64                `json:"perpetual_pnl"`
	StandardPnl      float64                `json:"standard_pnl"`
	WinningCount     int                    `json:"winning_count"`
	LosingCount      int                    `json:"losing_count"`
	WinRate          string                 `json:"win_rate"`
	TotalMargin      float64                `json:"total_margin"`
	PerpetualBalance *float64               `json:"perpetual_balance"`
	StandardBalance  *float64               `json:"standard_balance"`
	TotalBalance     float64                `json:"total_balance"`
	Symbols          map[string]SymbolStats `json:"symbols"`
	Partial          bool                   `json:"partial"`
	Stale            bool                   `json:"stale"`
}
