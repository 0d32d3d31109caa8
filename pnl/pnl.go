package pnl

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/position"
)

// Quote is the latest known close for a symbol.
type Quote struct {
	Close float64   `json:"close"`
	AsOf  time.Time `json:"asof"`
}

// CalculateTradePnL is the unrealized P&L of one trade at price. Sells were
// realized when they executed and contribute nothing.
func CalculateTradePnL(t position.Trade, price float64) float64 {
	if t.Type != position.TradeBuy {
		return 0
	}
	return (price - t.Price) * t.Quantity
}

// CalculatePositionPnL sums CalculateTradePnL over trades whose underlying
// has a quote. ok is false when no trade could be priced, which callers must
// keep distinct from a flat 0.
func CalculatePositionPnL(trades []position.Trade, quotes map[string]Quote) (pnl float64, ok bool) {
	for _, t := range trades {
		q, found := quotes[t.Underlying]
		if !found {
			continue
		}
		ok = true
		pnl += CalculateTradePnL(t, q.Close)
	}
	return pnl, ok
}

// CalculateRealizedPnL sums (sell - lot) * quantity over FIFO matches.
func CalculateRealizedPnL(trades []position.Trade) float64 {
	total := 0.0
	for _, m := range MatchFIFO(trades).Matches {
		total += (m.SellPrice - m.LotPrice) * m.Quantity
	}
	return total
}

// CalculatePnLPercentage returns pnl as a percent of costBasis rounded to two
// decimals. A zero basis yields 0.
func CalculatePnLPercentage(pnl, costBasis float64) float64 {
	if costBasis == 0 {
		return 0
	}
	pct := decimal.NewFromFloat(pnl).
		Div(decimal.NewFromFloat(costBasis)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	f, _ := pct.Float64()
	return f
}
