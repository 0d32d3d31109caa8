package prices

import (
	"context"
	"fmt"
	"regexp"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradejournal/pnl"
)

// BarsClient is the part of *marketdata.Client used here.
type BarsClient interface {
	GetLatestBars(symbols []string, req marketdata.GetLatestBarRequest) (map[string]marketdata.Bar, error)
}

// Alpaca prices stock symbols from the latest bar close. Option symbols are
// left for other lookups.
type Alpaca struct {
	client BarsClient
	feed   marketdata.Feed
	log    zerolog.Logger
}

func NewAlpaca(apiKey, apiSecret, feed string, log zerolog.Logger) *Alpaca {
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})
	return NewAlpacaWithClient(client, feed, log)
}

func NewAlpacaWithClient(client BarsClient, feed string, log zerolog.Logger) *Alpaca {
	f := marketdata.IEX
	if feed == "sip" {
		f = marketdata.SIP
	}
	return &Alpaca{
		client: client,
		feed:   f,
		log:    log.With().Str("component", "alpaca").Logger(),
	}
}

var occSymbol = regexp.MustCompile(`^[A-Z.]{1,6}\d{6}[CP]\d{8}$`)

func (a *Alpaca) LatestPrices(ctx context.Context, symbols []string) (map[string]pnl.Quote, error) {
	out := make(map[string]pnl.Quote, len(symbols))

	var stocks []string
	for _, s := range symbols {
		if !occSymbol.MatchString(s) {
			stocks = append(stocks, s)
		}
	}
	if len(stocks) == 0 {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bars, err := a.client.GetLatestBars(stocks, marketdata.GetLatestBarRequest{Feed: a.feed})
	if err != nil {
		return nil, fmt.Errorf("alpaca latest bars: %w", err)
	}
	for sym, bar := range bars {
		if bar.Close <= 0 {
			continue
		}
		out[sym] = pnl.Quote{Close: bar.Close, AsOf: bar.Timestamp.UTC()}
	}
	a.log.Debug().Int("requested", len(stocks)).Int("priced", len(out)).Msg("latest bars")
	return out, nil
}
