package pnl

import (
	"math"

	"github.com/rustyeddy/tradejournal/position"
)

// OptionMultiplier is the number of shares one contract controls.
const OptionMultiplier = 100

type Moneyness string

const (
	ITM Moneyness = "ITM"
	ATM Moneyness = "ATM"
	OTM Moneyness = "OTM"
)

// IntrinsicValue is the in-the-money part of an option's price.
func IntrinsicValue(kind position.OptionType, strike, stock float64) float64 {
	if kind == position.OptionCall {
		return math.Max(0, stock-strike)
	}
	return math.Max(0, strike-stock)
}

// ExtrinsicValue is whatever the option trades for beyond intrinsic value.
func ExtrinsicValue(kind position.OptionType, strike, stock, option float64) float64 {
	return option - IntrinsicValue(kind, strike, stock)
}

func ClassifyMoneyness(kind position.OptionType, strike, stock float64) Moneyness {
	if IntrinsicValue(kind, strike, stock) > 0 {
		return ITM
	}
	if stock == strike {
		return ATM
	}
	return OTM
}

type OptionValue struct {
	StockPrice  float64   `json:"stock_price"`
	OptionPrice float64   `json:"option_price"`
	Intrinsic   float64   `json:"intrinsic_value"`
	Extrinsic   float64   `json:"extrinsic_value"`
	Moneyness   Moneyness `json:"moneyness"`
}

// Decompose splits an option price into intrinsic and extrinsic value.
func Decompose(kind position.OptionType, strike, stock, option float64) OptionValue {
	return OptionValue{
		StockPrice:  stock,
		OptionPrice: option,
		Intrinsic:   IntrinsicValue(kind, strike, stock),
		Extrinsic:   ExtrinsicValue(kind, strike, stock, option),
		Moneyness:   ClassifyMoneyness(kind, strike, stock),
	}
}

// CalculateShortPutUnrealizedPnL: the credit was received up front, so the
// position gains as the option gets cheaper to buy back.
func CalculateShortPutUnrealizedPnL(premium, currentOption, contracts float64) float64 {
	return (premium - currentOption) * contracts * OptionMultiplier
}

// CalculateShortPutRealizedPnL: profit when closing costs less than the
// premium received on opening.
func CalculateShortPutRealizedPnL(openPremium, closePremium, contracts float64) float64 {
	return (openPremium - closePremium) * contracts * OptionMultiplier
}

// CalculateShortPutRealizedFromTrades applies CalculateShortPutRealizedPnL to
// each FIFO match. Opening trades are logged as buys at the premium received,
// closing trades as sells at the premium paid.
func CalculateShortPutRealizedFromTrades(trades []position.Trade) float64 {
	total := 0.0
	for _, m := range MatchFIFO(trades).Matches {
		total += CalculateShortPutRealizedPnL(m.LotPrice, m.SellPrice, m.Quantity)
	}
	return total
}
