package pnl

import (
	"gonum.org/v1/gonum/stat"

	"github.com/rustyeddy/tradejournal/position"
)

// CalculateOpenQuantity is buys minus sells.
func CalculateOpenQuantity(trades []position.Trade) float64 {
	return position.OpenQuantity(trades)
}

// CalculateAverageCost is the quantity-weighted price of the open lots, or
// fallback when nothing is open (a planned position shows its target entry).
func CalculateAverageCost(trades []position.Trade, fallback float64) float64 {
	open := OpenLots(trades)
	if len(open) == 0 {
		return fallback
	}

	prices := make([]float64, len(open))
	weights := make([]float64, len(open))
	for i, l := range open {
		prices[i] = l.Price
		weights[i] = l.RemainingQuantity
	}
	return stat.Mean(prices, weights)
}

// CalculateTotalCostBasis is average cost times open quantity.
func CalculateTotalCostBasis(trades []position.Trade) float64 {
	qty := CalculateOpenQuantity(trades)
	if qty <= epsilon {
		return 0
	}
	return CalculateAverageCost(trades, 0) * qty
}
