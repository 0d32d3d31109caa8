package position

import (
	"time"
)

type Strategy string

const (
	StrategyLongStock Strategy = "long_stock"
	StrategyShortPut  Strategy = "short_put"
)

// IsOption reports whether the strategy trades option contracts.
func (s Strategy) IsOption() bool {
	return s == StrategyShortPut
}

func (s Strategy) Valid() bool {
	return s == StrategyLongStock || s == StrategyShortPut
}

// PriceBasis says whether profit target and stop loss are quoted against the
// underlying stock or the option premium.
type PriceBasis string

const (
	BasisStock  PriceBasis = "stock"
	BasisOption PriceBasis = "option"
)

type OptionType string

const (
	OptionPut  OptionType = "put"
	OptionCall OptionType = "call"
)

type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

type Status string

const (
	StatusPlanned Status = "planned"
	StatusOpen    Status = "open"
	StatusClosed  Status = "closed"
)

// Position is a planned or active trade idea. Plan fields are fixed at
// creation; only Trades and JournalEntryIDs grow afterwards.
type Position struct {
	ID               string     `json:"id"`
	Symbol           string     `json:"symbol"`
	Strategy         Strategy   `json:"strategy_type"`
	TargetEntryPrice float64    `json:"target_entry_price"`
	TargetQuantity   float64    `json:"target_quantity"`
	ProfitTarget     float64    `json:"profit_target"`
	StopLoss         float64    `json:"stop_loss"`
	Thesis           string     `json:"position_thesis"`
	CreatedAt        time.Time  `json:"created_date"`
	PriceBasis       PriceBasis `json:"profit_stop_basis,omitempty"`

	// Option strategies only.
	OptionType         OptionType `json:"option_type,omitempty"`
	StrikePrice        float64    `json:"strike_price,omitempty"`
	ExpirationDate     *time.Time `json:"expiration_date,omitempty"`
	PremiumPerContract *float64   `json:"premium_per_contract,omitempty"`

	Trades          []Trade  `json:"trades"`
	JournalEntryIDs []string `json:"journal_entry_ids"`

	// Version is the compare-and-swap token checked by stores on write.
	Version int64 `json:"version"`
}

// Status is always derived from the trade log. A corrupt log reports closed;
// use CheckStatus to see the error.
func (p Position) Status() Status {
	s, err := ComputeStatus(p.Trades)
	if err != nil {
		return StatusClosed
	}
	return s
}

func (p Position) CheckStatus() (Status, error) {
	return ComputeStatus(p.Trades)
}

// Normalize heals documents written before trades and journal ids existed.
func (p *Position) Normalize() {
	if p.Trades == nil {
		p.Trades = []Trade{}
	}
	if p.JournalEntryIDs == nil {
		p.JournalEntryIDs = []string{}
	}
	if p.PriceBasis == "" {
		p.PriceBasis = BasisStock
	}
}

// Clone returns a deep copy so callers can mutate without aliasing a stored
// document.
func (p Position) Clone() Position {
	c := p
	if p.Trades != nil {
		c.Trades = append([]Trade(nil), p.Trades...)
	}
	if p.JournalEntryIDs != nil {
		c.JournalEntryIDs = append([]string(nil), p.JournalEntryIDs...)
	}
	if p.ExpirationDate != nil {
		t := *p.ExpirationDate
		c.ExpirationDate = &t
	}
	if p.PremiumPerContract != nil {
		v := *p.PremiumPerContract
		c.PremiumPerContract = &v
	}
	return c
}

// FindTrade returns the index of the trade with id, or -1.
func (p Position) FindTrade(id string) int {
	for i, t := range p.Trades {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// RemoveTrade drops the trade with id. It reports false when the trade is
// already gone, which keeps compensation idempotent.
func (p *Position) RemoveTrade(id string) bool {
	i := p.FindTrade(id)
	if i < 0 {
		return false
	}
	p.Trades = append(p.Trades[:i:i], p.Trades[i+1:]...)
	return true
}

func (p *Position) HasJournalEntry(id string) bool {
	for _, j := range p.JournalEntryIDs {
		if j == id {
			return true
		}
	}
	return false
}

// LinkJournalEntry appends id unless already present.
func (p *Position) LinkJournalEntry(id string) {
	if p.HasJournalEntry(id) {
		return
	}
	p.JournalEntryIDs = append(p.JournalEntryIDs, id)
}

func (p *Position) UnlinkJournalEntry(id string) bool {
	for i, j := range p.JournalEntryIDs {
		if j == id {
			p.JournalEntryIDs = append(p.JournalEntryIDs[:i:i], p.JournalEntryIDs[i+1:]...)
			return true
		}
	}
	return false
}

// Trade is an executed fill against a Position. Trades are never edited once
// appended.
type Trade struct {
	ID         string    `json:"id"`
	PositionID string    `json:"position_id"`
	Type       TradeType `json:"trade_type"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Timestamp  time.Time `json:"timestamp"`
	Underlying string    `json:"underlying"`
	Notes      string    `json:"notes,omitempty"`
}

// TradeRequest is a candidate trade as submitted by a caller. Nil pointers
// and empty strings mean the field was not supplied.
type TradeRequest struct {
	PositionID string    `json:"position_id"`
	Type       TradeType `json:"trade_type"`
	Quantity   *float64  `json:"quantity"`
	Price      *float64  `json:"price"`
	Timestamp  string    `json:"timestamp"`
	Underlying *string   `json:"underlying,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}

type EntryType string

const (
	EntryPositionPlan   EntryType = "position_plan"
	EntryTradeExecution EntryType = "trade_execution"
)

type JournalField struct {
	Name     string `json:"name"`
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
	Required bool   `json:"required,omitempty"`
}

// JournalEntry is a free-form reflection tied to a position, a trade, or both.
type JournalEntry struct {
	ID         string         `json:"id"`
	PositionID string         `json:"position_id,omitempty"`
	TradeID    string         `json:"trade_id,omitempty"`
	EntryType  EntryType      `json:"entry_type"`
	Fields     []JournalField `json:"fields"`
	CreatedAt  time.Time      `json:"created_at"`
	ExecutedAt *time.Time     `json:"executed_at,omitempty"`
}

// Field returns the named field, if present.
func (e JournalEntry) Field(name string) (JournalField, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return JournalField{}, false
}
