package risk

import (
	"fmt"

	"github.com/rustyeddy/tradejournal/position"
)

// Policy holds the soft limits a plan is reviewed against. Zero values
// disable a check.
type Policy struct {
	Equity           float64 `json:"equity" yaml:"equity"`
	MaxRiskPct       float64 `json:"max_risk_pct" yaml:"max_risk_pct"`
	MinRR            float64 `json:"min_rr" yaml:"min_rr"`
	MaxOpenPositions int     `json:"max_open_positions" yaml:"max_open_positions"`
}

type Violation struct {
	Code string `json:"code"`
	Msg  string `json:"message"`
}

// Decision lists every soft limit a plan breaks. Plans are still created;
// violations are warnings for the journal.
type Decision struct {
	Allowed    bool        `json:"allowed"`
	Violations []Violation `json:"violations,omitempty"`
	Metrics    PlanMetrics `json:"metrics"`
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Review evaluates p against the policy. openPositions is the number of
// positions currently open.
func Review(pol Policy, p position.Position, openPositions int) Decision {
	d := Decision{Allowed: true, Metrics: Metrics(p)}

	if !stopOnLosingSide(p) {
		d.add("STOP_WRONG_SIDE",
			fmt.Sprintf("stop loss %.2f is not on the losing side of entry %.2f", p.StopLoss, p.TargetEntryPrice))
	}
	if pol.MinRR > 0 && d.Metrics.RR < pol.MinRR {
		d.add("RR_TOO_LOW", fmt.Sprintf("RR %.2f below minimum %.2f", d.Metrics.RR, pol.MinRR))
	}
	if pol.MaxRiskPct > 0 && pol.Equity > 0 {
		pct := RiskPct(d.Metrics.PlannedRisk, pol.Equity)
		if pct > pol.MaxRiskPct {
			d.add("RISK_TOO_HIGH",
				fmt.Sprintf("planned risk %.2f%% exceeds max %.2f%%", 100*pct, 100*pol.MaxRiskPct))
		}
	}
	if pol.MaxOpenPositions > 0 && openPositions >= pol.MaxOpenPositions {
		d.add("TOO_MANY_OPEN_POSITIONS",
			fmt.Sprintf("open positions %d >= max %d", openPositions, pol.MaxOpenPositions))
	}
	return d
}

// stopOnLosingSide: a long stock loses when price falls; a short put's
// premium loses when it rises, so its stop sits above entry when quoted in
// option terms. Stock-basis option stops are not comparable to a premium
// entry and always pass.
func stopOnLosingSide(p position.Position) bool {
	if p.Strategy.IsOption() {
		if p.PriceBasis == position.BasisOption {
			return p.StopLoss > p.TargetEntryPrice
		}
		return true
	}
	return p.StopLoss < p.TargetEntryPrice
}
