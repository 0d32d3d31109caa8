package pnl

import (
	"sort"
	"time"

	"github.com/rustyeddy/tradejournal/position"
)

// Lot is the quantity opened by a single buy trade.
type Lot struct {
	TradeID           string    `json:"trade_id"`
	OriginalQuantity  float64   `json:"original_quantity"`
	RemainingQuantity float64   `json:"remaining_quantity"`
	Price             float64   `json:"price"`
	Timestamp         time.Time `json:"timestamp"`
	Instrument        string    `json:"instrument"`
}

// Match records a sell consuming part or all of a lot.
type Match struct {
	SellTradeID string  `json:"sell_trade_id"`
	LotTradeID  string  `json:"lot_trade_id"`
	Instrument  string  `json:"instrument"`
	Quantity    float64 `json:"quantity"`
	LotPrice    float64 `json:"lot_price"`
	SellPrice   float64 `json:"sell_price"`
}

type FIFOResult struct {
	Lots    []Lot
	Matches []Match
}

// epsilon below which a remaining lot quantity counts as fully consumed.
const epsilon = 1e-9

// MatchFIFO groups trades by instrument, orders each group by timestamp and
// lets sells consume the oldest open lots first. Sells beyond the open
// quantity are assumed to have been rejected upstream; any excess is dropped.
func MatchFIFO(trades []position.Trade) FIFOResult {
	var (
		order  []string
		groups = map[string][]position.Trade{}
	)
	for _, t := range trades {
		if _, ok := groups[t.Underlying]; !ok {
			order = append(order, t.Underlying)
		}
		groups[t.Underlying] = append(groups[t.Underlying], t)
	}

	var res FIFOResult
	for _, inst := range order {
		g := groups[inst]
		sort.SliceStable(g, func(i, j int) bool {
			return g[i].Timestamp.Before(g[j].Timestamp)
		})

		lots := make([]Lot, 0, len(g))
		head := 0
		for _, t := range g {
			switch t.Type {
			case position.TradeBuy:
				lots = append(lots, Lot{
					TradeID:           t.ID,
					OriginalQuantity:  t.Quantity,
					RemainingQuantity: t.Quantity,
					Price:             t.Price,
					Timestamp:         t.Timestamp,
					Instrument:        inst,
				})
			case position.TradeSell:
				need := t.Quantity
				for need > epsilon && head < len(lots) {
					lot := &lots[head]
					take := lot.RemainingQuantity
					if take > need {
						take = need
					}
					lot.RemainingQuantity -= take
					need -= take
					res.Matches = append(res.Matches, Match{
						SellTradeID: t.ID,
						LotTradeID:  lot.TradeID,
						Instrument:  inst,
						Quantity:    take,
						LotPrice:    lot.Price,
						SellPrice:   t.Price,
					})
					if lot.RemainingQuantity <= epsilon {
						lot.RemainingQuantity = 0
						head++
					}
				}
			}
		}
		res.Lots = append(res.Lots, lots...)
	}
	return res
}

// ApplyFIFOMatching returns every lot with its remaining quantity after all
// sells have been applied.
func ApplyFIFOMatching(trades []position.Trade) []Lot {
	return MatchFIFO(trades).Lots
}

// OpenLots returns lots that still hold quantity.
func OpenLots(trades []position.Trade) []Lot {
	var open []Lot
	for _, l := range ApplyFIFOMatching(trades) {
		if l.RemainingQuantity > epsilon {
			open = append(open, l)
		}
	}
	return open
}
