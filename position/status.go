package position

import "math"

// ComputeStatus derives the lifecycle state from a trade log.
//
//	planned: no trades
//	open:    buys - sells > 0
//	closed:  at least one trade and nothing left open
//
// A negative net can only come from a log that skipped exit validation; it is
// reported as closed and left to the caller that produced it.
func ComputeStatus(trades []Trade) (Status, error) {
	if len(trades) == 0 {
		return StatusPlanned, nil
	}

	net := 0.0
	for i, t := range trades {
		if err := checkTradeData(t); err != nil {
			return "", Errorf(KindInvalidTradeData, "trade %d (%q): %s", i, t.ID, err.Msg)
		}
		switch t.Type {
		case TradeBuy:
			net += t.Quantity
		case TradeSell:
			net -= t.Quantity
		}
	}

	if net > quantityEpsilon {
		return StatusOpen, nil
	}
	return StatusClosed, nil
}

// quantityEpsilon absorbs float noise from fractional share arithmetic.
const quantityEpsilon = 1e-9

func checkTradeData(t Trade) *Error {
	if t.Type != TradeBuy && t.Type != TradeSell {
		return Errorf(KindInvalidTradeData, "unknown trade type %q", t.Type)
	}
	if math.IsNaN(t.Quantity) || math.IsInf(t.Quantity, 0) || t.Quantity <= 0 {
		return Errorf(KindInvalidTradeData, "invalid quantity %v", t.Quantity)
	}
	if math.IsNaN(t.Price) || math.IsInf(t.Price, 0) || t.Price < 0 {
		return Errorf(KindInvalidTradeData, "invalid price %v", t.Price)
	}
	return nil
}

// OpenQuantity is buys minus sells over the whole log.
func OpenQuantity(trades []Trade) float64 {
	net := 0.0
	for _, t := range trades {
		switch t.Type {
		case TradeBuy:
			net += t.Quantity
		case TradeSell:
			net -= t.Quantity
		}
	}
	return net
}
