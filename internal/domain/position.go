package domain

// Position is one open exposure on one symbol in one account family,
// normalized from either upstream response shape.
type Position struct {
	Symbol        string       `json:"symbol"`
	Side          PositionSide `json:"side"`
	Size          float64      `json:"size"` // always non-negative
	EntryPrice    *float64     `json:"entry_price"`
	MarkPrice     *float64     `json:"mark_price"`
	Leverage      float64      `json:"leverage"` // upstream absent => 1
	Margin        *float64     `json:"margin"`
	UnrealizedPnl *float64     `json:"unrealized_pnl"`
	AccountType   AccountType  `json:"account_type"`
}

// PnlOrDerived returns the upstream-supplied unrealized PnL when present.
// When the upstream omits it, the value is derived from entry, mark, and
// size with the sign convention of the side: a short loses value as the mark
// rises. The boolean reports whether the value was derived locally.
func (p Position) PnlOrDerived() (float64, bool) {
	if p.UnrealizedPnl != nil {
		return *p.UnrealizedPnl, false
	}
	if p.EntryPrice == nil || p.MarkPrice == nil {
		return 0, false
	}
	diff := *p.MarkPrice - *p.EntryPrice
	if p.Side == SideShort {
		diff = -diff
	}
	return diff * p.Size, true
}
