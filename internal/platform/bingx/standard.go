package bingx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/avierra/futmon/internal/domain"
)

const (
	stdBalanceEndpoint   = "/openApi/contract/v1/balance"
	stdPositionsEndpoint = "/openApi/contract/v1/allPosition"
	stdOrdersEndpoint    = "/openApi/contract/v1/allOrders"
)

// StandardAdapter fetches and normalizes the standard (contract) futures
// account. Its balance endpoint is known to serve either a bare object or a
// single-element array for the same data; the adapter accepts both shapes.
type StandardAdapter struct {
	client *Client
	logger *slog.Logger
}

// NewStandardAdapter creates an adapter over the given client.
func NewStandardAdapter(client *Client, logger *slog.Logger) *StandardAdapter {
	return &StandardAdapter{
		client: client,
		logger: logger.With(slog.String("adapter", "standard")),
	}
}

// AccountType identifies this adapter's account family.
func (a *StandardAdapter) AccountType() domain.AccountType {
	return domain.AccountStandard
}

// FetchBalance returns the standard account's capital snapshot, normalizing
// the object-or-singleton-array upstream inconsistency. Any other shape,
// including an empty or multi-element array, is a MalformedResponse.
func (a *StandardAdapter) FetchBalance(ctx context.Context) (domain.Balance, error) {
	data, err := a.client.get(ctx, stdBalanceEndpoint, nil)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("standard balance: %w", err)
	}

	raw, err := normalizeStdBalance(data)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("standard balance: %w", err)
	}

	currency := raw.Asset
	if currency == "" {
		currency = "USDT"
	}

	return domain.Balance{
		AccountType:      domain.AccountStandard,
		TotalBalance:     raw.Balance.Float(),
		AvailableBalance: raw.Available.Float(),
		UnrealizedPnl:    raw.UnrealizedProfit.Float(),
		Currency:         currency,
	}, nil
}

// normalizeStdBalance performs the explicit shape detection: a bare object
// and a one-element array decode to the same record.
func normalizeStdBalance(data []byte) (stdBalance, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return stdBalance{}, domain.NewFault(domain.FaultMalformedResponse, "empty balance payload")
	}

	switch trimmed[0] {
	case '{':
		var b stdBalance
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return stdBalance{}, domain.WrapFault(domain.FaultMalformedResponse, err)
		}
		return b, nil
	case '[':
		var list []stdBalance
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return stdBalance{}, domain.WrapFault(domain.FaultMalformedResponse, err)
		}
		if len(list) != 1 {
			return stdBalance{}, domain.NewFault(domain.FaultMalformedResponse,
				fmt.Sprintf("expected 1 balance record, got %d", len(list)))
		}
		return list[0], nil
	default:
		return stdBalance{}, domain.NewFault(domain.FaultMalformedResponse,
			"balance payload is neither object nor array")
	}
}

// FetchPositions returns the standard account's open positions. The
// direction field appears under two names upstream; both map through the
// same LONG/SHORT rule, and an unknown value fails rather than guessing.
func (a *StandardAdapter) FetchPositions(ctx context.Context) ([]domain.Position, error) {
	data, err := a.client.get(ctx, stdPositionsEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("standard positions: %w", err)
	}

	var rows []stdPosition
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, domain.WrapFault(domain.FaultMalformedResponse,
			fmt.Errorf("standard positions: %w", err))
	}

	positions := make([]domain.Position, 0, len(rows))
	for _, row := range rows {
		amt := row.PositionAmt.Value(0)
		if amt == 0 {
			continue
		}

		rawSide := row.PositionSide
		if rawSide == "" {
			rawSide = row.Side
		}
		side, err := parseSide(rawSide)
		if err != nil {
			return nil, fmt.Errorf("standard position %s: %w", row.Symbol, err)
		}

		positions = append(positions, domain.Position{
			Symbol:        row.Symbol,
			Side:          side,
			Size:          math.Abs(amt),
			EntryPrice:    row.EntryPrice.Float(),
			MarkPrice:     row.CurrentPrice.Float(),
			Leverage:      row.Leverage.Value(1),
			Margin:        row.Margin.Float(),
			UnrealizedPnl: row.UnrealizedProfit.Float(),
			AccountType:   domain.AccountStandard,
		})
	}

	a.logger.DebugContext(ctx, "fetched positions", slog.Int("count", len(positions)))
	return positions, nil
}

// FetchOrderHistory returns up to limit historical orders, newest first as
// served upstream, with millisecond timestamps mapped to time.Time.
func (a *StandardAdapter) FetchOrderHistory(ctx context.Context, limit int) ([]domain.OrderRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	data, err := a.client.get(ctx, stdOrdersEndpoint, params)
	if err != nil {
		return nil, fmt.Errorf("standard order history: %w", err)
	}

	var rows []stdOrder
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, domain.WrapFault(domain.FaultMalformedResponse,
			fmt.Errorf("standard order history: %w", err))
	}

	if len(rows) > limit {
		rows = rows[:limit]
	}

	orders := make([]domain.OrderRecord, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, domain.OrderRecord{
			OrderID:   string(row.OrderID),
			Symbol:    row.Symbol,
			Side:      row.Side,
			Price:     row.Price.Float(),
			Quantity:  row.OrigQty.Float(),
			Status:    row.Status,
			CreatedAt: time.UnixMilli(row.CreateTime).UTC(),
		})
	}

	return orders, nil
}
