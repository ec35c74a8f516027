package bingx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/avierra/futmon/internal/domain"
)

const (
	perpBalanceEndpoint   = "/openApi/swap/v2/user/balance"
	perpPositionsEndpoint = "/openApi/swap/v2/user/positions"
)

// PerpetualAdapter fetches and normalizes the perpetual (swap) futures
// account. The balance payload is a single object; positions carry their
// direction in the explicit positionSide field.
type PerpetualAdapter struct {
	client *Client
	logger *slog.Logger
}

// NewPerpetualAdapter creates an adapter over the given client.
func NewPerpetualAdapter(client *Client, logger *slog.Logger) *PerpetualAdapter {
	return &PerpetualAdapter{
		client: client,
		logger: logger.With(slog.String("adapter", "perpetual")),
	}
}

// AccountType identifies this adapter's account family.
func (a *PerpetualAdapter) AccountType() domain.AccountType {
	return domain.AccountPerpetual
}

// FetchBalance returns the perpetual account's capital snapshot.
func (a *PerpetualAdapter) FetchBalance(ctx context.Context) (domain.Balance, error) {
	data, err := a.client.get(ctx, perpBalanceEndpoint, nil)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("perpetual balance: %w", err)
	}

	var payload perpBalanceData
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.Balance{}, domain.WrapFault(domain.FaultMalformedResponse,
			fmt.Errorf("perpetual balance: %w", err))
	}

	raw := payload.Balance
	currency := raw.Asset
	if currency == "" {
		currency = "USDT"
	}

	return domain.Balance{
		AccountType:      domain.AccountPerpetual,
		TotalBalance:     raw.Balance.Float(),
		AvailableBalance: raw.AvailableMargin.Float(),
		UnrealizedPnl:    raw.UnrealizedProfit.Float(),
		Currency:         currency,
	}, nil
}

// FetchPositions returns the perpetual account's open positions. Rows with a
// zero or absent positionAmt are closed and skipped.
func (a *PerpetualAdapter) FetchPositions(ctx context.Context) ([]domain.Position, error) {
	data, err := a.client.get(ctx, perpPositionsEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("perpetual positions: %w", err)
	}

	var rows []perpPosition
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, domain.WrapFault(domain.FaultMalformedResponse,
			fmt.Errorf("perpetual positions: %w", err))
	}

	positions := make([]domain.Position, 0, len(rows))
	for _, row := range rows {
		amt := row.PositionAmt.Value(0)
		if amt == 0 {
			continue
		}

		side, err := parseSide(row.PositionSide)
		if err != nil {
			return nil, fmt.Errorf("perpetual position %s: %w", row.Symbol, err)
		}

		positions = append(positions, domain.Position{
			Symbol:        row.Symbol,
			Side:          side,
			Size:          math.Abs(amt),
			EntryPrice:    row.EntryPrice.Float(),
			MarkPrice:     row.MarkPrice.Float(),
			Leverage:      row.Leverage.Value(1),
			Margin:        row.Margin.Float(),
			UnrealizedPnl: row.UnrealizedProfit.Float(),
			AccountType:   domain.AccountPerpetual,
		})
	}

	a.logger.DebugContext(ctx, "fetched positions", slog.Int("count", len(positions)))
	return positions, nil
}
