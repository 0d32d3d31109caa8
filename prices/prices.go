// Package prices answers "what is the latest price of these symbols".
// A symbol missing from the result means no data; callers must not treat it
// as zero.
package prices

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradejournal/pnl"
)

type Lookup interface {
	LatestPrices(ctx context.Context, symbols []string) (map[string]pnl.Quote, error)
}

// Setter records a manual quote.
type Setter interface {
	SetPrice(ctx context.Context, symbol string, close float64, asOf time.Time) error
}

// Static is a fixed price map.
type Static map[string]pnl.Quote

func (s Static) LatestPrices(ctx context.Context, symbols []string) (map[string]pnl.Quote, error) {
	out := make(map[string]pnl.Quote, len(symbols))
	for _, sym := range symbols {
		if q, ok := s[sym]; ok {
			out[sym] = q
		}
	}
	return out, nil
}

// Chain asks each lookup in turn for the symbols still missing. The first
// lookup's error is returned; later lookups are best effort.
type Chain struct {
	lookups []Lookup
	log     zerolog.Logger
}

func NewChain(log zerolog.Logger, lookups ...Lookup) *Chain {
	return &Chain{lookups: lookups, log: log.With().Str("component", "prices").Logger()}
}

func (c *Chain) LatestPrices(ctx context.Context, symbols []string) (map[string]pnl.Quote, error) {
	out := make(map[string]pnl.Quote, len(symbols))
	missing := dedupe(symbols)

	for i, l := range c.lookups {
		if len(missing) == 0 {
			break
		}
		got, err := l.LatestPrices(ctx, missing)
		if err != nil {
			if i == 0 {
				return nil, err
			}
			c.log.Warn().Err(err).Strs("symbols", missing).Msg("price lookup failed, skipping")
			continue
		}

		var still []string
		for _, sym := range missing {
			if q, ok := got[sym]; ok {
				out[sym] = q
			} else {
				still = append(still, sym)
			}
		}
		missing = still
	}
	if len(missing) > 0 {
		c.log.Debug().Strs("symbols", missing).Msg("no price data")
	}
	return out, nil
}

func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
