package position

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts RFC3339 and a few date/time forms. Zone-less
// values are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ValidateTrade checks the shape of a candidate trade. It has no side
// effects and does not look at the position.
func ValidateTrade(req TradeRequest) error {
	var missing []string
	if strings.TrimSpace(req.PositionID) == "" {
		missing = append(missing, "position_id")
	}
	if req.Type == "" {
		missing = append(missing, "trade_type")
	}
	if req.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if req.Price == nil {
		missing = append(missing, "price")
	}
	if strings.TrimSpace(req.Timestamp) == "" {
		missing = append(missing, "timestamp")
	}
	if len(missing) > 0 {
		return Errorf(KindMissingFields, "missing required trade fields: %s", strings.Join(missing, ", "))
	}

	if req.Type != TradeBuy && req.Type != TradeSell {
		return Errorf(KindInvalidTradeType, "trade type %q must be buy or sell", req.Type)
	}
	if q := *req.Quantity; q <= 0 || !finite(q) {
		return Errorf(KindNonPositiveQuantity, "quantity (%s) must be a finite number greater than 0", fmtQty(q))
	}
	if pr := *req.Price; pr < 0 || !finite(pr) {
		return Errorf(KindNegativePrice, "price (%s) must be a finite number, not negative", fmtQty(pr))
	}
	if _, err := ParseTimestamp(req.Timestamp); err != nil {
		return Errorf(KindInvalidTimestamp, "timestamp %q is not a valid date/time", req.Timestamp)
	}
	if req.Underlying != nil && strings.TrimSpace(*req.Underlying) == "" {
		return Errorf(KindEmptyUnderlying, "underlying cannot be empty")
	}
	return nil
}

// ValidateExitTrade checks that a sell of qty at price can be applied to p.
func ValidateExitTrade(p Position, qty, price float64) error {
	status, err := p.CheckStatus()
	if err != nil {
		return err
	}
	switch status {
	case StatusPlanned:
		return Errorf(KindExitFromPlanned, "cannot exit position %s: no trades have been executed", p.ID)
	case StatusClosed:
		return Errorf(KindExitFromClosed, "cannot exit position %s: position is already closed", p.ID)
	}

	if qty <= 0 || !finite(qty) {
		return Errorf(KindNonPositiveQuantity, "exit quantity (%s) must be a finite number greater than 0", fmtQty(qty))
	}
	open := OpenQuantity(p.Trades)
	if qty > open+quantityEpsilon {
		return Errorf(KindOversellRejected, "Exit quantity (%s) exceeds open quantity (%s)", fmtQty(qty), fmtQty(open))
	}
	if price < 0 || !finite(price) {
		return Errorf(KindNegativePrice, "exit price (%s) cannot be negative", fmtQty(price))
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func fmtQty(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
