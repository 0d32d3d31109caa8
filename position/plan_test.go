package position

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func stockPlan() Plan {
	return Plan{
		Symbol:           "aapl",
		Strategy:         StrategyLongStock,
		TargetEntryPrice: 150,
		TargetQuantity:   100,
		ProfitTarget:     180,
		StopLoss:         135,
		Thesis:           "Services growth re-rates the multiple",
	}
}

func putPlan() Plan {
	exp := now.AddDate(0, 1, 0)
	return Plan{
		Symbol:             "AAPL",
		Strategy:           StrategyShortPut,
		TargetEntryPrice:   3,
		TargetQuantity:     5,
		ProfitTarget:       1.5,
		StopLoss:           6,
		PriceBasis:         BasisOption,
		OptionType:         OptionPut,
		StrikePrice:        150,
		ExpirationDate:     &exp,
		PremiumPerContract: f64(3),
	}
}

func TestNewPosition(t *testing.T) {
	t.Parallel()

	p, err := New(stockPlan(), now)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "AAPL", p.Symbol)
	assert.Equal(t, StatusPlanned, p.Status())
	assert.Equal(t, BasisStock, p.PriceBasis)
	assert.NotNil(t, p.Trades)
	assert.NotNil(t, p.JournalEntryIDs)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, int64(0), p.Version)
}

func TestValidatePlan(t *testing.T) {
	t.Parallel()

	past := now.AddDate(0, 0, -1)

	tests := []struct {
		name   string
		plan   func() Plan
		errMsg string
	}{
		{"stock ok", stockPlan, ""},
		{"put ok", putPlan, ""},
		{"missing symbol", func() Plan { p := stockPlan(); p.Symbol = " "; return p }, "symbol is required"},
		{"unknown strategy", func() Plan { p := stockPlan(); p.Strategy = "iron_condor"; return p }, "unknown strategy"},
		{"zero quantity", func() Plan { p := stockPlan(); p.TargetQuantity = 0; return p }, "target quantity"},
		{"zero stop", func() Plan { p := stockPlan(); p.StopLoss = 0; return p }, "stop loss"},
		{"stock with strike", func() Plan { p := stockPlan(); p.StrikePrice = 100; return p }, "option fields"},
		{"stock with option basis", func() Plan { p := stockPlan(); p.PriceBasis = BasisOption; return p }, "option price basis"},
		{"call unsupported", func() Plan { p := putPlan(); p.OptionType = OptionCall; return p }, "only put"},
		{"no strike", func() Plan { p := putPlan(); p.StrikePrice = 0; return p }, "strike price"},
		{"expired", func() Plan { p := putPlan(); p.ExpirationDate = &past; return p }, "must be in the future"},
		{"expires now", func() Plan { p := putPlan(); n := now; p.ExpirationDate = &n; return p }, "must be in the future"},
		{"no expiration", func() Plan { p := putPlan(); p.ExpirationDate = nil; return p }, "expiration date is required"},
		{"zero premium", func() Plan { p := putPlan(); p.PremiumPerContract = f64(0); return p }, "premium"},
		{"no premium ok", func() Plan { p := putPlan(); p.PremiumPerContract = nil; return p }, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePlan(tt.plan(), now)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPosition))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestOptionSymbol(t *testing.T) {
	t.Parallel()

	exp := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
	p := Position{Symbol: "aapl", Strategy: StrategyShortPut, OptionType: OptionPut, StrikePrice: 150, ExpirationDate: &exp}
	assert.Equal(t, "AAPL250117P00150000", p.OptionSymbol())
	assert.Equal(t, p.OptionSymbol(), p.Instrument())

	p.StrikePrice = 42.5
	assert.Equal(t, "AAPL250117P00042500", p.OptionSymbol())

	stock := Position{Symbol: "MSFT", Strategy: StrategyLongStock}
	assert.Equal(t, "MSFT", stock.Instrument())
}

func TestValidateJournalEntry(t *testing.T) {
	t.Parallel()

	thesis := func(s string) []JournalField {
		return []JournalField{{Name: "thesis", Prompt: "Why?", Response: s}}
	}

	_, err := NewJournalEntry("", "", EntryTradeExecution, thesis("long enough text"), nil, now)
	assert.True(t, errors.Is(err, ErrMissingFields))

	_, err = NewJournalEntry("P1", "", EntryTradeExecution, nil, nil, now)
	assert.True(t, errors.Is(err, ErrEmptyJournalFields))

	_, err = NewJournalEntry("P1", "", EntryTradeExecution, thesis("short"), nil, now)
	assert.True(t, errors.Is(err, ErrInvalidJournalEntry))

	_, err = NewJournalEntry("P1", "", EntryTradeExecution, thesis(strings.Repeat("x", 2001)), nil, now)
	assert.True(t, errors.Is(err, ErrInvalidJournalEntry))

	_, err = NewJournalEntry("P1", "", "diary", thesis("long enough text"), nil, now)
	assert.True(t, errors.Is(err, ErrInvalidJournalEntry))

	_, err = NewJournalEntry("P1", "", EntryPositionPlan,
		[]JournalField{{Name: "emotion", Prompt: "How do you feel?", Required: true}}, nil, now)
	assert.True(t, errors.Is(err, ErrInvalidJournalEntry))

	e, err := NewJournalEntry("P1", "T1", EntryTradeExecution, thesis(strings.Repeat("x", 2000)), nil, now)
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	f, ok := e.Field("thesis")
	assert.True(t, ok)
	assert.Len(t, f.Response, 2000)
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	base := Errorf(KindPersistence, "write failed")
	wrapped := Wrap(KindPersistence, errors.New("disk full"), "save position %s", "P1")

	assert.True(t, errors.Is(base, ErrPersistence))
	assert.False(t, errors.Is(base, ErrPositionNotFound))
	assert.Equal(t, "save position P1: disk full", wrapped.Error())
	assert.Equal(t, KindPersistence, KindOf(wrapped))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))

	rb := &RollbackError{Original: base, Compensation: errors.New("still broken")}
	assert.True(t, errors.Is(rb, ErrRollbackFailed))
	assert.True(t, errors.Is(rb, ErrPersistence))
	assert.Equal(t, KindRollbackFailed, KindOf(rb))
}
