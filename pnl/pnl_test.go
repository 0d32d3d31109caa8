package pnl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/position"
)

func TestCalculateTradePnL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		trade position.Trade
		price float64
		want  float64
	}{
		{"buy profit", buy("B", 100, 150, 0), 160, 1000},
		{"buy loss", buy("B", 100, 150, 0), 140, -1000},
		{"buy flat", buy("B", 100, 150, 0), 150, 0},
		{"fractional", buy("B", 0.5, 100, 0), 110, 5},
		{"sell is realized", sell("S", 100, 160, 0), 200, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, CalculateTradePnL(tt.trade, tt.price), 1e-9)
		})
	}
}

func TestCalculatePositionPnLUnknownVersusFlat(t *testing.T) {
	t.Parallel()

	trades := []position.Trade{buy("B1", 100, 150, 0)}

	_, ok := CalculatePositionPnL(trades, map[string]Quote{})
	assert.False(t, ok, "no price data must be unknown, not zero")

	_, ok = CalculatePositionPnL(nil, map[string]Quote{"AAPL": {Close: 1}})
	assert.False(t, ok)

	got, ok := CalculatePositionPnL(trades, map[string]Quote{"AAPL": {Close: 150}})
	assert.True(t, ok)
	assert.InDelta(t, 0, got, 1e-12)

	got, ok = CalculatePositionPnL(trades, map[string]Quote{"AAPL": {Close: 155.5}})
	assert.True(t, ok)
	assert.InDelta(t, 550, got, 1e-9)
}

func TestCalculatePositionPnLSkipsUnpricedTrades(t *testing.T) {
	t.Parallel()

	other := buy("X", 10, 50, 1)
	other.Underlying = "MSFT"
	trades := []position.Trade{buy("B1", 100, 150, 0), other}

	got, ok := CalculatePositionPnL(trades, map[string]Quote{"MSFT": {Close: 55}})
	assert.True(t, ok)
	assert.InDelta(t, 50, got, 1e-9)
}

func TestCalculateRealizedPnL(t *testing.T) {
	t.Parallel()

	// Scenario: buy 100 @ 150, sell 100 @ 160 realizes 1000.
	trades := []position.Trade{buy("B1", 100, 150, 0), sell("S1", 100, 160, 1)}
	assert.InDelta(t, 1000, CalculateRealizedPnL(trades), 1e-9)

	status, err := position.ComputeStatus(trades)
	require.NoError(t, err)
	assert.Equal(t, position.StatusClosed, status)

	// Partial sells across two lots.
	trades = []position.Trade{
		buy("B1", 100, 150, 0),
		buy("B2", 50, 160, 1),
		sell("S1", 120, 170, 2),
		sell("S2", 10, 140, 3),
	}
	// S1: 100*(170-150) + 20*(170-160) = 2200; S2: 10*(140-160) = -200
	assert.InDelta(t, 2000, CalculateRealizedPnL(trades), 1e-9)

	// Worthless exit at zero.
	assert.InDelta(t, -300, CalculateRealizedPnL([]position.Trade{buy("B", 100, 3, 0), sell("S", 100, 0, 1)}), 1e-9)
}

func TestCalculatePnLPercentage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, CalculatePnLPercentage(500, 0))
	assert.Equal(t, 6.67, CalculatePnLPercentage(1000, 15000))
	assert.Equal(t, -33.33, CalculatePnLPercentage(-1, 3))
	assert.Equal(t, 100.0, CalculatePnLPercentage(250, 250))
}

func TestOptionDecomposition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		kind      position.OptionType
		strike    float64
		stock     float64
		option    float64
		intrinsic float64
		extrinsic float64
		money     Moneyness
	}{
		{"put itm", position.OptionPut, 150, 140, 12, 10, 2, ITM},
		{"put otm", position.OptionPut, 150, 160, 1.5, 0, 1.5, OTM},
		{"put atm", position.OptionPut, 150, 150, 4, 0, 4, ATM},
		{"call itm", position.OptionCall, 150, 160, 11, 10, 1, ITM},
		{"call otm", position.OptionCall, 150, 140, 0.75, 0, 0.75, OTM},
		{"call atm", position.OptionCall, 150, 150, 3, 0, 3, ATM},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := Decompose(tt.kind, tt.strike, tt.stock, tt.option)
			assert.InDelta(t, tt.intrinsic, v.Intrinsic, 1e-12)
			assert.InDelta(t, tt.extrinsic, v.Extrinsic, 1e-12)
			assert.Equal(t, tt.money, v.Moneyness)
		})
	}
}

func TestShortPutPnL(t *testing.T) {
	t.Parallel()

	// Scenario: premium 3.00, current 1.50, 5 contracts.
	assert.InDelta(t, 750, CalculateShortPutUnrealizedPnL(3.00, 1.50, 5), 1e-9)
	assert.InDelta(t, -500, CalculateShortPutUnrealizedPnL(3.00, 4.00, 5), 1e-9)

	assert.InDelta(t, 200, CalculateShortPutRealizedPnL(3.00, 1.00, 1), 1e-9)
	assert.InDelta(t, 1500, CalculateShortPutRealizedPnL(3.00, 0, 5), 1e-9)

	trades := []position.Trade{buy("OPEN", 5, 3.00, 0), sell("CLOSE", 5, 0.50, 10)}
	assert.InDelta(t, 1250, CalculateShortPutRealizedFromTrades(trades), 1e-9)
}

func TestCalculateProgress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current float64
		want    float64
	}{
		{"at stop", 90, 0},
		{"below stop", 80, 0},
		{"midway", 105, 50},
		{"at target", 120, 100},
		{"beyond target", 130, 100},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := CalculateProgress(tt.current, 90, 120)
			assert.InDelta(t, tt.want, p.Percent, 1e-9)
			assert.InDelta(t, tt.current-90, p.DistanceToStop, 1e-9)
			assert.InDelta(t, 120-tt.current, p.DistanceToTarget, 1e-9)
		})
	}

	// Inverted range for short premium: profit target below the stop.
	p := CalculateProgress(3, 6, 1.5)
	assert.InDelta(t, 66.6666666, p.Percent, 1e-6)

	assert.Equal(t, 0.0, CalculateProgress(10, 5, 5).Percent)
}

func TestPositionPnLLongStock(t *testing.T) {
	t.Parallel()

	p := position.Position{
		ID: "P1", Symbol: "AAPL", Strategy: position.StrategyLongStock,
		TargetEntryPrice: 150, ProfitTarget: 180, StopLoss: 140,
		Trades: []position.Trade{buy("B1", 100, 150, 0)},
	}

	v := PositionPnL(p, map[string]Quote{"AAPL": {Close: 165, AsOf: t0}})
	assert.Equal(t, position.StatusOpen, v.Status)
	assert.InDelta(t, 100, v.OpenQuantity, 1e-12)
	assert.InDelta(t, 150, v.AverageCost, 1e-12)
	assert.InDelta(t, 15000, v.CostBasis, 1e-9)
	require.NotNil(t, v.UnrealizedPnL)
	assert.InDelta(t, 1500, *v.UnrealizedPnL, 1e-9)
	require.NotNil(t, v.UnrealizedPct)
	assert.Equal(t, 10.0, *v.UnrealizedPct)
	require.NotNil(t, v.Progress)
	assert.InDelta(t, 62.5, v.Progress.Percent, 1e-9)

	unknown := PositionPnL(p, nil)
	assert.Nil(t, unknown.UnrealizedPnL)
	assert.Nil(t, unknown.CurrentPrice)
	assert.Nil(t, unknown.Progress)

	planned := PositionPnL(position.Position{Symbol: "AAPL", TargetEntryPrice: 150}, nil)
	assert.Equal(t, position.StatusPlanned, planned.Status)
	assert.InDelta(t, 150, planned.AverageCost, 1e-12)
}

func TestPositionPnLShortPut(t *testing.T) {
	t.Parallel()

	exp := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
	premium := 3.0
	p := position.Position{
		ID: "P2", Symbol: "AAPL", Strategy: position.StrategyShortPut,
		OptionType: position.OptionPut, StrikePrice: 150, ExpirationDate: &exp,
		PremiumPerContract: &premium, PriceBasis: position.BasisOption,
		TargetEntryPrice: 3, ProfitTarget: 1.5, StopLoss: 6,
		Trades: []position.Trade{buy("OPEN", 5, 3, 0)},
	}

	quotes := map[string]Quote{
		"AAPL":                {Close: 155},
		"AAPL250117P00150000": {Close: 1.5},
	}
	assert.ElementsMatch(t, []string{"AAPL", "AAPL250117P00150000"}, Symbols(p))

	v := PositionPnL(p, quotes)
	require.NotNil(t, v.UnrealizedPnL)
	assert.InDelta(t, 750, *v.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 1500, v.CostBasis, 1e-9)
	assert.Equal(t, 50.0, *v.UnrealizedPct)
	require.NotNil(t, v.Option)
	assert.Equal(t, OTM, v.Option.Moneyness)
	assert.InDelta(t, 1.5, v.Option.Extrinsic, 1e-12)
	require.NotNil(t, v.Progress)
	assert.InDelta(t, 100, v.Progress.Percent, 1e-9)

	// Without an option quote nothing is guessed.
	v = PositionPnL(p, map[string]Quote{"AAPL": {Close: 155}})
	assert.Nil(t, v.UnrealizedPnL)
	assert.Nil(t, v.Option)
}
