package trading

import (
	"context"

	"github.com/rustyeddy/tradejournal/pnl"
	"github.com/rustyeddy/tradejournal/position"
	"github.com/rustyeddy/tradejournal/risk"
)

// Report is a position valued against the latest prices.
type Report struct {
	Position  position.Position `json:"position"`
	Valuation pnl.Valuation     `json:"valuation"`
	Plan      risk.PlanMetrics  `json:"plan"`
}

func (s *Service) Valuate(ctx context.Context, positionID string) (Report, error) {
	p, err := s.load(ctx, positionID)
	if err != nil {
		return Report{}, err
	}
	quotes := s.quotes(ctx, pnl.Symbols(p))
	return Report{Position: p, Valuation: pnl.PositionPnL(p, quotes), Plan: risk.Metrics(p)}, nil
}

// ValuateAll values every position with status (all when empty) using one
// price lookup.
func (s *Service) ValuateAll(ctx context.Context, status position.Status) ([]Report, error) {
	ps, err := s.ListPositions(ctx, status)
	if err != nil {
		return nil, err
	}

	var symbols []string
	for _, p := range ps {
		symbols = append(symbols, pnl.Symbols(p)...)
	}
	quotes := s.quotes(ctx, symbols)

	out := make([]Report, 0, len(ps))
	for _, p := range ps {
		out = append(out, Report{Position: p, Valuation: pnl.PositionPnL(p, quotes), Plan: risk.Metrics(p)})
	}
	return out, nil
}

// quotes never fails: a lookup error is logged and treated as no data.
func (s *Service) quotes(ctx context.Context, symbols []string) map[string]pnl.Quote {
	if s.prices == nil || len(symbols) == 0 {
		return map[string]pnl.Quote{}
	}
	q, err := s.prices.LatestPrices(ctx, symbols)
	if err != nil {
		s.log.Warn().Err(err).Strs("symbols", symbols).Msg("price lookup failed, valuing without prices")
		return map[string]pnl.Quote{}
	}
	return q
}
