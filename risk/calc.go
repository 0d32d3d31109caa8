package risk

import (
	"math"

	"github.com/rustyeddy/tradejournal/pnl"
	"github.com/rustyeddy/tradejournal/position"
)

// PlannedRisk is the dollar loss if the stop is hit on the full planned
// quantity. Option plans are scaled by the contract multiplier.
func PlannedRisk(quantity, entry, stop, multiplier float64) float64 {
	return quantity * math.Abs(entry-stop) * multiplier
}

func RR(entry, stop, target float64) float64 {
	risk := math.Abs(entry - stop)
	reward := math.Abs(target - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}

func RiskPct(plannedRisk, equity float64) float64 {
	if equity <= 0 {
		return math.Inf(1)
	}
	return plannedRisk / equity
}

// SuggestQuantity sizes a position so that hitting the stop loses riskPct of
// equity. Stock quantities are whole shares; option quantities whole
// contracts.
func SuggestQuantity(equity, riskPct, entry, stop, multiplier float64) float64 {
	perUnit := math.Abs(entry-stop) * multiplier
	if perUnit == 0 || equity <= 0 || riskPct <= 0 {
		return 0
	}
	return math.Floor(equity * riskPct / perUnit)
}

// PlanMetrics summarises the risk shape of a position's plan.
type PlanMetrics struct {
	RiskPerUnit   float64 `json:"risk_per_unit"`
	RewardPerUnit float64 `json:"reward_per_unit"`
	RR            float64 `json:"risk_reward"`
	PlannedRisk   float64 `json:"planned_risk"`
	PlannedReward float64 `json:"planned_reward"`
}

func Metrics(p position.Position) PlanMetrics {
	mult := 1.0
	if p.Strategy.IsOption() {
		mult = pnl.OptionMultiplier
	}
	entry := p.TargetEntryPrice
	return PlanMetrics{
		RiskPerUnit:   math.Abs(entry - p.StopLoss),
		RewardPerUnit: math.Abs(p.ProfitTarget - entry),
		RR:            RR(entry, p.StopLoss, p.ProfitTarget),
		PlannedRisk:   PlannedRisk(p.TargetQuantity, entry, p.StopLoss, mult),
		PlannedReward: PlannedRisk(p.TargetQuantity, entry, p.ProfitTarget, mult),
	}
}
