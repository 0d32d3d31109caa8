package position

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

// Plan holds the immutable fields a Position is created with.
type Plan struct {
	Symbol           string     `json:"symbol" yaml:"symbol"`
	Strategy         Strategy   `json:"strategy_type" yaml:"strategy_type"`
	TargetEntryPrice float64    `json:"target_entry_price" yaml:"target_entry_price"`
	TargetQuantity   float64    `json:"target_quantity" yaml:"target_quantity"`
	ProfitTarget     float64    `json:"profit_target" yaml:"profit_target"`
	StopLoss         float64    `json:"stop_loss" yaml:"stop_loss"`
	Thesis           string     `json:"position_thesis" yaml:"position_thesis"`
	PriceBasis       PriceBasis `json:"profit_stop_basis,omitempty" yaml:"profit_stop_basis,omitempty"`

	OptionType         OptionType `json:"option_type,omitempty" yaml:"option_type,omitempty"`
	StrikePrice        float64    `json:"strike_price,omitempty" yaml:"strike_price,omitempty"`
	ExpirationDate     *time.Time `json:"expiration_date,omitempty" yaml:"expiration_date,omitempty"`
	PremiumPerContract *float64   `json:"premium_per_contract,omitempty" yaml:"premium_per_contract,omitempty"`
}

// ValidatePlan checks a plan against the creation rules. now is the creation
// instant used for the expiration check.
func ValidatePlan(pl Plan, now time.Time) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(pl.Symbol) == "" {
		add("symbol is required")
	}
	if !pl.Strategy.Valid() {
		add("unknown strategy %q", pl.Strategy)
	}
	if pl.TargetEntryPrice <= 0 {
		add("target entry price must be positive")
	}
	if pl.TargetQuantity <= 0 {
		add("target quantity must be positive")
	}
	if pl.ProfitTarget <= 0 {
		add("profit target must be positive")
	}
	if pl.StopLoss <= 0 {
		add("stop loss must be positive")
	}
	if pl.PriceBasis != "" && pl.PriceBasis != BasisStock && pl.PriceBasis != BasisOption {
		add("profit/stop basis %q must be stock or option", pl.PriceBasis)
	}

	if pl.Strategy.IsOption() {
		if pl.OptionType != OptionPut {
			add("option type %q is not supported (only put)", pl.OptionType)
		}
		if pl.StrikePrice <= 0 {
			add("strike price must be positive")
		}
		if pl.ExpirationDate == nil {
			add("expiration date is required")
		} else if !pl.ExpirationDate.After(now) {
			add("expiration date %s must be in the future", pl.ExpirationDate.Format("2006-01-02"))
		}
		if pl.PremiumPerContract != nil && *pl.PremiumPerContract <= 0 {
			add("premium per contract must be positive")
		}
	} else if pl.Strategy.Valid() {
		if pl.OptionType != "" || pl.StrikePrice != 0 || pl.ExpirationDate != nil || pl.PremiumPerContract != nil {
			add("option fields are only allowed on option strategies")
		}
		if pl.PriceBasis == BasisOption {
			add("option price basis requires an option strategy")
		}
	}

	if len(problems) > 0 {
		return Errorf(KindInvalidPosition, "invalid position plan: %s", strings.Join(problems, "; "))
	}
	return nil
}

// New validates pl and returns a planned Position with a fresh id.
func New(pl Plan, now time.Time) (Position, error) {
	if err := ValidatePlan(pl, now); err != nil {
		return Position{}, err
	}

	p := Position{
		ID:                 id.New(),
		Symbol:             strings.ToUpper(strings.TrimSpace(pl.Symbol)),
		Strategy:           pl.Strategy,
		TargetEntryPrice:   pl.TargetEntryPrice,
		TargetQuantity:     pl.TargetQuantity,
		ProfitTarget:       pl.ProfitTarget,
		StopLoss:           pl.StopLoss,
		Thesis:             pl.Thesis,
		CreatedAt:          now.UTC(),
		PriceBasis:         pl.PriceBasis,
		OptionType:         pl.OptionType,
		StrikePrice:        pl.StrikePrice,
		ExpirationDate:     pl.ExpirationDate,
		PremiumPerContract: pl.PremiumPerContract,
	}
	p.Normalize()
	return p.Clone(), nil
}
