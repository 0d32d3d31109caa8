package trading

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/pnl"
	"github.com/rustyeddy/tradejournal/position"
	"github.com/rustyeddy/tradejournal/prices"
)

type brokenPrices struct{}

func (brokenPrices) LatestPrices(context.Context, []string) (map[string]pnl.Quote, error) {
	return nil, errors.New("feed down")
}

func TestValuate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	quotes := prices.Static{"AAPL": {Close: 165, AsOf: now}}
	f := newFixture(t, WithPrices(quotes))
	p := f.opened(t)

	r, err := f.svc.Valuate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, r.Position.ID)
	require.NotNil(t, r.Valuation.UnrealizedPnL)
	assert.InDelta(t, 1500, *r.Valuation.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 15000, r.Valuation.CostBasis, 1e-9)
	assert.InDelta(t, 1000, r.Plan.PlannedRisk, 1e-9)

	_, err = f.svc.Valuate(ctx, "NOPE")
	assert.ErrorIs(t, err, position.ErrPositionNotFound)
}

func TestValuateShortPut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	exp := now.AddDate(0, 0, 7)
	occ := "AAPL" + exp.Format("060102") + "P00150000"
	f := newFixture(t, WithPrices(prices.Static{
		"AAPL": {Close: 155, AsOf: now},
		occ:    {Close: 1.5, AsOf: now},
	}))

	p, _, err := f.svc.CreatePosition(ctx, position.Plan{
		Symbol: "AAPL", Strategy: position.StrategyShortPut,
		TargetEntryPrice: 3, TargetQuantity: 5, ProfitTarget: 1.5, StopLoss: 6,
		PriceBasis: position.BasisOption, OptionType: position.OptionPut,
		StrikePrice: 150, ExpirationDate: &exp, PremiumPerContract: f64(3),
	})
	require.NoError(t, err)

	// Selling to open is logged as a buy at the premium received.
	trades, err := f.svc.AddTrade(ctx, p.ID, tradeReq(position.TradeBuy, 5, 3, now.Add(time.Hour).Format(time.RFC3339)))
	require.NoError(t, err)
	assert.Equal(t, occ, trades[0].Underlying)

	r, err := f.svc.Valuate(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, r.Valuation.UnrealizedPnL)
	assert.InDelta(t, 750, *r.Valuation.UnrealizedPnL, 1e-9)
	require.NotNil(t, r.Valuation.Option)
	assert.Equal(t, pnl.OTM, r.Valuation.Option.Moneyness)
}

func TestValuateWithoutPrices(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for _, opt := range []Option{WithPrices(brokenPrices{}), WithPrices(nil)} {
		f := newFixture(t, opt)
		f.opened(t)

		reports, err := f.svc.ValuateAll(ctx, "")
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Nil(t, reports[0].Valuation.UnrealizedPnL, "no price data is unknown, not zero")
		assert.InDelta(t, 150, reports[0].Valuation.AverageCost, 1e-12)
	}
}
