package position

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func validRequest() TradeRequest {
	return TradeRequest{
		PositionID: "P1",
		Type:       TradeBuy,
		Quantity:   f64(100),
		Price:      f64(150),
		Timestamp:  "2024-01-15T10:30:00Z",
	}
}

func TestValidateTrade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(r *TradeRequest)
		kind   Kind
		msg    string
	}{
		{"valid", func(r *TradeRequest) {}, "", ""},
		{"missing position", func(r *TradeRequest) { r.PositionID = "" }, KindMissingFields, "position_id"},
		{"missing type", func(r *TradeRequest) { r.Type = "" }, KindMissingFields, "trade_type"},
		{"missing quantity", func(r *TradeRequest) { r.Quantity = nil }, KindMissingFields, "quantity"},
		{"missing price", func(r *TradeRequest) { r.Price = nil }, KindMissingFields, "price"},
		{"missing timestamp", func(r *TradeRequest) { r.Timestamp = " " }, KindMissingFields, "timestamp"},
		{"bad type", func(r *TradeRequest) { r.Type = "short" }, KindInvalidTradeType, "short"},
		{"zero quantity", func(r *TradeRequest) { r.Quantity = f64(0) }, KindNonPositiveQuantity, "0"},
		{"negative quantity", func(r *TradeRequest) { r.Quantity = f64(-5) }, KindNonPositiveQuantity, "-5"},
		{"nan quantity", func(r *TradeRequest) { r.Quantity = f64(math.NaN()) }, KindNonPositiveQuantity, "NaN"},
		{"infinite quantity", func(r *TradeRequest) { r.Quantity = f64(math.Inf(1)) }, KindNonPositiveQuantity, "+Inf"},
		{"fractional quantity", func(r *TradeRequest) { r.Quantity = f64(0.25) }, "", ""},
		{"negative price", func(r *TradeRequest) { r.Price = f64(-0.01) }, KindNegativePrice, "-0.01"},
		{"nan price", func(r *TradeRequest) { r.Price = f64(math.NaN()) }, KindNegativePrice, "NaN"},
		{"infinite price", func(r *TradeRequest) { r.Price = f64(math.Inf(1)) }, KindNegativePrice, "+Inf"},
		{"negative infinite price", func(r *TradeRequest) { r.Price = f64(math.Inf(-1)) }, KindNegativePrice, "-Inf"},
		{"zero price sell", func(r *TradeRequest) { r.Price = f64(0); r.Type = TradeSell }, "", ""},
		{"bad timestamp", func(r *TradeRequest) { r.Timestamp = "yesterday" }, KindInvalidTimestamp, "yesterday"},
		{"date only timestamp", func(r *TradeRequest) { r.Timestamp = "2024-01-15" }, "", ""},
		{"blank underlying", func(r *TradeRequest) { r.Underlying = str("   ") }, KindEmptyUnderlying, "underlying"},
		{"underlying set", func(r *TradeRequest) { r.Underlying = str("AAPL") }, "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := validRequest()
			tt.mutate(&r)
			err := ValidateTrade(r)
			if tt.kind == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidateTradeZeroPriceNeverFailsOnPrice(t *testing.T) {
	t.Parallel()

	for _, q := range []float64{0.001, 1, 10, 1e6} {
		r := validRequest()
		r.Type = TradeSell
		r.Quantity = f64(q)
		r.Price = f64(0)
		assert.NoError(t, ValidateTrade(r))
	}
}

func openPosition(qty float64) Position {
	return Position{
		ID:     "P1",
		Symbol: "AAPL",
		Trades: []Trade{{ID: "T1", Type: TradeBuy, Quantity: qty, Price: 150}},
	}
}

func TestValidateExitTrade(t *testing.T) {
	t.Parallel()

	planned := Position{ID: "P0"}
	closed := Position{ID: "P2", Trades: []Trade{
		{ID: "T1", Type: TradeBuy, Quantity: 100, Price: 150},
		{ID: "T2", Type: TradeSell, Quantity: 100, Price: 160},
	}}

	assert.True(t, errors.Is(ValidateExitTrade(planned, 1, 10), ErrExitFromPlanned))
	assert.True(t, errors.Is(ValidateExitTrade(closed, 1, 10), ErrExitFromClosed))
	assert.True(t, errors.Is(ValidateExitTrade(openPosition(100), 10, -1), ErrNegativePrice))
	assert.True(t, errors.Is(ValidateExitTrade(openPosition(100), math.NaN(), 155), ErrNonPositiveQuantity))
	assert.True(t, errors.Is(ValidateExitTrade(openPosition(100), math.Inf(1), 155), ErrNonPositiveQuantity))
	assert.True(t, errors.Is(ValidateExitTrade(openPosition(100), 10, math.NaN()), ErrNegativePrice))
	assert.True(t, errors.Is(ValidateExitTrade(openPosition(100), 10, math.Inf(1)), ErrNegativePrice))
	assert.NoError(t, ValidateExitTrade(openPosition(100), 100, 0))
	assert.NoError(t, ValidateExitTrade(openPosition(100), 40, 155))
}

func TestValidateExitTradeOversellMessage(t *testing.T) {
	t.Parallel()

	err := ValidateExitTrade(openPosition(100), 150, 155)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOversellRejected))
	assert.Contains(t, err.Error(), "150")
	assert.Contains(t, err.Error(), "100")
	assert.Equal(t, "Exit quantity (150) exceeds open quantity (100)", err.Error())
}

func TestValidateExitTradeNoOversellProperty(t *testing.T) {
	t.Parallel()

	p := openPosition(100)
	p.Trades = append(p.Trades, Trade{ID: "T2", Type: TradeSell, Quantity: 37.5, Price: 151})
	open := OpenQuantity(p.Trades)
	require.InDelta(t, 62.5, open, 1e-12)

	for _, q := range []float64{0.5, 10, 62, 62.5} {
		assert.NoError(t, ValidateExitTrade(p, q, 150), "q=%v", q)
	}
	for _, q := range []float64{62.51, 63, 100, 1000} {
		err := ValidateExitTrade(p, q, 150)
		assert.True(t, errors.Is(err, ErrOversellRejected), "q=%v", q)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	got, err := ParseTimestamp("2024-03-01T09:30:00-05:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)))

	got, err = ParseTimestamp("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseTimestamp("03/01/2024")
	assert.Error(t, err)
}
