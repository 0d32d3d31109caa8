package position

import (
	"fmt"
	"math"
	"strings"
)

// OptionSymbol returns the OCC-style contract identifier for an option
// position, e.g. AAPL250117P00150000. Stock positions return their symbol.
func (p Position) OptionSymbol() string {
	if !p.Strategy.IsOption() || p.ExpirationDate == nil {
		return p.Symbol
	}
	cp := "P"
	if p.OptionType == OptionCall {
		cp = "C"
	}
	strike := int64(math.Round(p.StrikePrice * 1000))
	return fmt.Sprintf("%s%s%s%08d", strings.ToUpper(p.Symbol), p.ExpirationDate.UTC().Format("060102"), cp, strike)
}

// Instrument is the key trades are grouped and priced under.
func (p Position) Instrument() string {
	if p.Strategy.IsOption() {
		return p.OptionSymbol()
	}
	return p.Symbol
}
