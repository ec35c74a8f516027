package bingx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avierra/futmon/internal/domain"
)

const stdBalanceObject = `{
	"asset":"USDT",
	"balance":"800.00",
	"available":"600.00",
	"unrealizedProfit":"-12.34"
}`

func assertStdBalance(t *testing.T, balance domain.Balance) {
	t.Helper()
	assert.Equal(t, domain.AccountStandard, balance.AccountType)
	assert.Equal(t, "USDT", balance.Currency)
	require.NotNil(t, balance.TotalBalance)
	assert.Equal(t, 800.0, *balance.TotalBalance)
	require.NotNil(t, balance.AvailableBalance)
	assert.Equal(t, 600.0, *balance.AvailableBalance)
	require.NotNil(t, balance.UnrealizedPnl)
	assert.Equal(t, -12.34, *balance.UnrealizedPnl)
}

func TestStandardFetchBalanceObjectShape(t *testing.T) {
	srv := envelopeServer(t, stdBalanceObject)

	adapter := NewStandardAdapter(newTestClient(srv), testLogger())
	balance, err := adapter.FetchBalance(context.Background())
	require.NoError(t, err)
	assertStdBalance(t, balance)
}

func TestStandardFetchBalanceArrayShape(t *testing.T) {
	srv := envelopeServer(t, `[`+stdBalanceObject+`]`)

	adapter := NewStandardAdapter(newTestClient(srv), testLogger())
	balance, err := adapter.FetchBalance(context.Background())
	require.NoError(t, err)

	// Both upstream shapes must normalize identically.
	assertStdBalance(t, balance)
}

func TestStandardFetchBalanceRejectsOtherShapes(t *testing.T) {
	for name, payload := range map[string]string{
		"empty array": `[]`,
		"two records": `[` + stdBalanceObject + `,` + stdBalanceObject + `]`,
		"scalar":      `42`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := envelopeServer(t, payload)

			adapter := NewStandardAdapter(newTestClient(srv), testLogger())
			_, err := adapter.FetchBalance(context.Background())
			require.Error(t, err)
			assert.Equal(t, domain.FaultMalformedResponse, domain.KindOf(err))
		})
	}
}

func TestStandardFetchPositionsSideFieldFallback(t *testing.T) {
	srv := envelopeServer(t, `[
		{"symbol":"BTC-USDT","positionSide":"SHORT","positionAmt":"1","currentPrice":"43000"},
		{"symbol":"ETH-USDT","side":"long","positionAmt":"3","entryPrice":"2500"}
	]`)

	adapter := NewStandardAdapter(newTestClient(srv), testLogger())
	positions, err := adapter.FetchPositions(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 2)

	assert.Equal(t, domain.SideShort, positions[0].Side)
	require.NotNil(t, positions[0].MarkPrice)
	assert.Equal(t, 43000.0, *positions[0].MarkPrice, "currentPrice maps to the mark price")

	assert.Equal(t, domain.SideLong, positions[1].Side, "the alternate direction field name maps through the same rule")
	assert.Equal(t, domain.AccountStandard, positions[1].AccountType)
}

func TestStandardFetchPositionsUnknownSide(t *testing.T) {
	srv := envelopeServer(t, `[{"symbol":"BTC-USDT","side":"net","positionAmt":"1"}]`)

	adapter := NewStandardAdapter(newTestClient(srv), testLogger())
	_, err := adapter.FetchPositions(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.FaultMalformedResponse, domain.KindOf(err))
}

func TestStandardFetchOrderHistory(t *testing.T) {
	srv := envelopeServer(t, `[
		{"orderId":123456,"symbol":"BTC-USDT","side":"BUY","price":"42000","origQty":"0.5","status":"FILLED","createTime":1700000000000},
		{"orderId":"789","symbol":"ETH-USDT","side":"SELL","status":"CANCELLED","createTime":1700000060000}
	]`)

	adapter := NewStandardAdapter(newTestClient(srv), testLogger())
	orders, err := adapter.FetchOrderHistory(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	first := orders[0]
	assert.Equal(t, "123456", first.OrderID, "numeric order IDs normalize to strings")
	assert.Equal(t, "BTC-USDT", first.Symbol)
	assert.Equal(t, "BUY", first.Side)
	require.NotNil(t, first.Price)
	assert.Equal(t, 42000.0, *first.Price)
	assert.Equal(t, "FILLED", first.Status)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), first.CreatedAt)

	second := orders[1]
	assert.Equal(t, "789", second.OrderID)
	assert.Nil(t, second.Price)
	assert.Nil(t, second.Quantity)
}

func TestStandardFetchOrderHistoryClampsToLimit(t *testing.T) {
	srv := envelopeServer(t, `[
		{"orderId":"1","symbol":"A","createTime":1},
		{"orderId":"2","symbol":"B","createTime":2},
		{"orderId":"3","symbol":"C","createTime":3}
	]`)

	adapter := NewStandardAdapter(newTestClient(srv), testLogger())
	orders, err := adapter.FetchOrderHistory(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
