package pnl

import (
	"github.com/rustyeddy/tradejournal/position"
)

// Valuation is the strategy-aware P&L summary of one position.
type Valuation struct {
	PositionID    string            `json:"position_id"`
	Symbol        string            `json:"symbol"`
	Strategy      position.Strategy `json:"strategy_type"`
	Status        position.Status   `json:"status"`
	OpenQuantity  float64           `json:"open_quantity"`
	AverageCost   float64           `json:"average_cost"`
	CostBasis     float64           `json:"cost_basis"`
	RealizedPnL   float64           `json:"realized_pnl"`
	UnrealizedPnL *float64          `json:"unrealized_pnl"`
	UnrealizedPct *float64          `json:"unrealized_pnl_pct"`
	CurrentPrice  *float64          `json:"current_price"`
	Option        *OptionValue      `json:"option,omitempty"`
	Progress      *Progress         `json:"progress,omitempty"`
}

// Symbols lists the quote keys PositionPnL reads for p.
func Symbols(p position.Position) []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	add(p.Symbol)
	if p.Strategy.IsOption() {
		add(p.OptionSymbol())
		return out
	}
	for _, t := range p.Trades {
		add(t.Underlying)
	}
	return out
}

// PositionPnL values p against quotes. Missing quotes leave the nullable
// fields nil rather than reporting zero.
func PositionPnL(p position.Position, quotes map[string]Quote) Valuation {
	v := Valuation{
		PositionID:   p.ID,
		Symbol:       p.Symbol,
		Strategy:     p.Strategy,
		Status:       p.Status(),
		OpenQuantity: CalculateOpenQuantity(p.Trades),
		AverageCost:  CalculateAverageCost(p.Trades, p.TargetEntryPrice),
	}
	if p.Strategy.IsOption() {
		shortPut(&v, p, quotes)
		return v
	}
	longStock(&v, p, quotes)
	return v
}

func longStock(v *Valuation, p position.Position, quotes map[string]Quote) {
	v.CostBasis = CalculateTotalCostBasis(p.Trades)
	v.RealizedPnL = CalculateRealizedPnL(p.Trades)

	if q, ok := quotes[p.Symbol]; ok {
		v.CurrentPrice = ptr(q.Close)
		prog := CalculateProgress(q.Close, p.StopLoss, p.ProfitTarget)
		v.Progress = &prog
	}
	if v.Status != position.StatusOpen {
		return
	}
	if u, ok := CalculatePositionPnL(p.Trades, quotes); ok {
		v.UnrealizedPnL = ptr(u)
		v.UnrealizedPct = ptr(CalculatePnLPercentage(u, v.CostBasis))
	}
}

func shortPut(v *Valuation, p position.Position, quotes map[string]Quote) {
	premium := v.AverageCost
	if p.PremiumPerContract != nil {
		premium = *p.PremiumPerContract
	}
	contracts := v.OpenQuantity
	if contracts < 0 {
		contracts = 0
	}
	v.CostBasis = premium * contracts * OptionMultiplier
	v.RealizedPnL = CalculateShortPutRealizedFromTrades(p.Trades)

	stockQ, haveStock := quotes[p.Symbol]
	optQ, haveOpt := quotes[p.OptionSymbol()]

	if haveOpt {
		v.CurrentPrice = ptr(optQ.Close)
		if v.Status == position.StatusOpen {
			u := CalculateShortPutUnrealizedPnL(premium, optQ.Close, contracts)
			v.UnrealizedPnL = ptr(u)
			v.UnrealizedPct = ptr(CalculatePnLPercentage(u, v.CostBasis))
		}
	}
	if haveStock && haveOpt {
		ov := Decompose(p.OptionType, p.StrikePrice, stockQ.Close, optQ.Close)
		v.Option = &ov
	}

	var (
		current float64
		have    bool
	)
	if p.PriceBasis == position.BasisOption {
		current, have = optQ.Close, haveOpt
	} else {
		current, have = stockQ.Close, haveStock
	}
	if have {
		prog := CalculateProgress(current, p.StopLoss, p.ProfitTarget)
		v.Progress = &prog
	}
}

func ptr(f float64) *float64 { return &f }
