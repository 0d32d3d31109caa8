// Package journal renders positions, their trades and journal entries for
// reading outside the app: Org-mode for notes, CSV for spreadsheets.
package journal

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/pnl"
	"github.com/rustyeddy/tradejournal/position"
)

// Record is one position with everything written about it.
type Record struct {
	Position  position.Position
	Valuation pnl.Valuation
	Entries   []position.JournalEntry
}

func money(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

// optMoney renders unknown values as empty rather than zero.
func optMoney(x *float64) string {
	if x == nil {
		return ""
	}
	return money(*x)
}

func qty(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
