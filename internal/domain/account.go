// Package domain defines the canonical balance, position, and report model
// shared by the BingX adapters, the consolidation engine, and the HTTP layer.
package domain

// AccountType identifies one of the two BingX futures account families.
type AccountType string

const (
	// AccountPerpetual is the USDT-margined perpetual (swap) account.
	AccountPerpetual AccountType = "perpetual"
	// AccountStandard is the delivery-style standard (contract) account.
	AccountStandard AccountType = "standard"
)

// AccountTypes lists both account families in canonical report order.
var AccountTypes = []AccountType{AccountPerpetual, AccountStandard}

// PositionSide is the direction of an open exposure. It is always taken from
// the explicit direction field on the upstream record; it is never inferred
// from the sign of the position size.
type PositionSide string

const (
	SideLong  PositionSide = "LONG"
	SideShort PositionSide = "SHORT"
)
