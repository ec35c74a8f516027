package bingx

import (
	"bytes"
	"fmt"
	"strconv"
)

// envelope is the outer response shape shared by every BingX open API
// endpoint: a numeric result code, a message, and the payload.
type envelope struct {
	Code int     `json:"code"`
	Msg  string  `json:"msg"`
	Data rawData `json:"data"`
}

// rawData defers payload decoding so each endpoint can pick its own shape.
type rawData []byte

func (d *rawData) UnmarshalJSON(b []byte) error {
	*d = append((*d)[0:0], b...)
	return nil
}

// Number decodes a JSON number that BingX serves either as a bare number or
// as a numeric string, depending on the endpoint.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" {
		return fmt.Errorf("bingx: empty numeric value")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("bingx: parse number %q: %w", s, err)
	}
	*n = Number(f)
	return nil
}

// Float returns the value as a *float64, or nil for a nil Number. It is the
// bridge from "field absent upstream" to the canonical model's nullable
// fields.
func (n *Number) Float() *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}

// Value returns the value, or fallback when the Number is absent.
func (n *Number) Value(fallback float64) float64 {
	if n == nil {
		return fallback
	}
	return float64(*n)
}

// perpBalanceData wraps the perpetual account's single balance object.
type perpBalanceData struct {
	Balance perpBalance `json:"balance"`
}

// perpBalance is the raw swap/v2 user balance record.
type perpBalance struct {
	Asset            string  `json:"asset"`
	Balance          *Number `json:"balance"`
	Equity           *Number `json:"equity"`
	UnrealizedProfit *Number `json:"unrealizedProfit"`
	AvailableMargin  *Number `json:"availableMargin"`
	UsedMargin       *Number `json:"usedMargin"`
}

// perpPosition is the raw swap/v2 user position record.
type perpPosition struct {
	Symbol           string  `json:"symbol"`
	PositionSide     string  `json:"positionSide"`
	PositionAmt      *Number `json:"positionAmt"`
	EntryPrice       *Number `json:"entryPrice"`
	MarkPrice        *Number `json:"markPrice"`
	UnrealizedProfit *Number `json:"unrealizedProfit"`
	Leverage         *Number `json:"leverage"`
	Margin           *Number `json:"margin"`
}

// stdBalance is the raw contract/v1 balance record. The endpoint serves it
// either as a bare object or as a single-element array.
type stdBalance struct {
	Asset            string  `json:"asset"`
	Balance          *Number `json:"balance"`
	Available        *Number `json:"available"`
	UnrealizedProfit *Number `json:"unrealizedProfit"`
}

// stdPosition is the raw contract/v1 allPosition record. The direction field
// appears as "side" on some payloads and "positionSide" on others; the
// adapter owns that mapping.
type stdPosition struct {
	Symbol           string  `json:"symbol"`
	Side             string  `json:"side"`
	PositionSide     string  `json:"positionSide"`
	PositionAmt      *Number `json:"positionAmt"`
	EntryPrice       *Number `json:"entryPrice"`
	CurrentPrice     *Number `json:"currentPrice"`
	UnrealizedProfit *Number `json:"unrealizedProfit"`
	Leverage         *Number `json:"leverage"`
	Margin           *Number `json:"margin"`
}

// flexString decodes a JSON value that may arrive as a string or a number,
// such as order IDs.
type flexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *flexString) UnmarshalJSON(b []byte) error {
	*s = flexString(bytes.Trim(b, `"`))
	return nil
}

// stdOrder is the raw contract/v1 allOrders record.
type stdOrder struct {
	OrderID flexString `json:"orderId"`
	Symbol  string     `json:"symbol"`
	Side    string     `json:"side"`
	Price   *Number    `json:"price"`
	OrigQty *Number    `json:"origQty"`
	Status  string     `json:"status"`
	// CreateTime is a Unix millisecond timestamp.
	CreateTime int64 `json:"createTime"`
}
