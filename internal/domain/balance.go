package domain

// Balance is one account's capital snapshot. Optional fields the upstream
// omitted stay nil; zero is a valid balance and must never stand in for
// "unknown".
type Balance struct {
	AccountType      AccountType `json:"account_type"`
	TotalBalance     *float64    `json:"total_balance"`
	AvailableBalance *float64    `json:"available_balance"`
	UnrealizedPnl    *float64    `json:"unrealized_pnl"`
	Currency         string      `json:"currency"` // settlement asset, e.g. "USDT"
}

// AccountSnapshot pairs one account's balance with its open positions, as
// produced by a single adapter fetch within a refresh cycle.
type AccountSnapshot struct {
	AccountType AccountType
	Balance     Balance
	Positions   []Position
}
