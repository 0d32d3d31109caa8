package journal

import (
	"time"

	"github.com/rustyeddy/tradejournal/pnl"
	"github.com/rustyeddy/tradejournal/position"
)

var t0 = time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)

func longRecord() Record {
	p := position.Position{
		ID: "01JH4Q3W8XK2ZP9M7RT5VB6NAA", Symbol: "AAPL", Strategy: position.StrategyLongStock,
		TargetEntryPrice: 150, TargetQuantity: 100, ProfitTarget: 180, StopLoss: 140,
		Thesis: "Services growth re-rates the multiple", CreatedAt: t0, PriceBasis: position.BasisStock,
		Trades: []position.Trade{{
			ID: "01JH4Q3W8XK2ZP9M7RT5VB6T01", PositionID: "01JH4Q3W8XK2ZP9M7RT5VB6NAA", Type: position.TradeBuy,
			Quantity: 100, Price: 150.25, Timestamp: t0, Underlying: "AAPL", Notes: "filled at open, a|b",
		}},
	}
	executed := t0
	return Record{
		Position:  p,
		Valuation: pnl.PositionPnL(p, map[string]pnl.Quote{"AAPL": {Close: 165, AsOf: t0}}),
		Entries: []position.JournalEntry{{
			ID: "01JH4Q3W8XK2ZP9M7RT5VB6J01", PositionID: p.ID, TradeID: p.Trades[0].ID,
			EntryType: position.EntryTradeExecution, CreatedAt: t0, ExecutedAt: &executed,
			Fields: []position.JournalField{
				{Name: "entry_reasoning", Prompt: "Why now?", Response: "Broke out of the base"},
				{Name: "emotional_state", Prompt: "How do you feel?", Response: "Calm, \"patient\""},
			},
		}},
	}
}
