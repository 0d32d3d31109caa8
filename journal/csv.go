package journal

import (
	"encoding/csv"
	"io"

	"github.com/rustyeddy/tradejournal/position"
)

var (
	positionHeader = []string{"position_id", "symbol", "strategy", "status", "open_quantity", "average_cost",
		"cost_basis", "realized_pnl", "unrealized_pnl", "created"}
	tradeHeader = []string{"trade_id", "position_id", "symbol", "trade_type", "quantity", "price",
		"timestamp", "underlying", "notes"}
	journalHeader = []string{"journal_id", "position_id", "trade_id", "entry_type", "created_at",
		"executed_at", "field", "prompt", "response"}
)

// WritePositionsCSV writes one summary row per position. Unknown unrealized
// P&L is left blank.
func WritePositionsCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(positionHeader); err != nil {
		return err
	}
	for _, r := range records {
		v := r.Valuation
		if err := cw.Write([]string{
			r.Position.ID,
			r.Position.Symbol,
			string(r.Position.Strategy),
			string(v.Status),
			qty(v.OpenQuantity),
			money(v.AverageCost),
			money(v.CostBasis),
			money(v.RealizedPnL),
			optMoney(v.UnrealizedPnL),
			stamp(r.Position.CreatedAt),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteTradesCSV(w io.Writer, positions []position.Position) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradeHeader); err != nil {
		return err
	}
	for _, p := range positions {
		for _, t := range p.Trades {
			if err := cw.Write([]string{
				t.ID,
				p.ID,
				p.Symbol,
				string(t.Type),
				qty(t.Quantity),
				money(t.Price),
				stamp(t.Timestamp),
				t.Underlying,
				t.Notes,
			}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJournalCSV writes one row per journal field.
func WriteJournalCSV(w io.Writer, entries []position.JournalEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(journalHeader); err != nil {
		return err
	}
	for _, e := range entries {
		executed := ""
		if e.ExecutedAt != nil {
			executed = stamp(*e.ExecutedAt)
		}
		for _, f := range e.Fields {
			if err := cw.Write([]string{
				e.ID,
				e.PositionID,
				e.TradeID,
				string(e.EntryType),
				stamp(e.CreatedAt),
				executed,
				f.Name,
				f.Prompt,
				f.Response,
			}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
