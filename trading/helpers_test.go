package trading

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/position"
	"github.com/rustyeddy/tradejournal/store"
)

var now = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func stockPlan() position.Plan {
	return position.Plan{
		Symbol:           "AAPL",
		Strategy:         position.StrategyLongStock,
		TargetEntryPrice: 150,
		TargetQuantity:   100,
		ProfitTarget:     180,
		StopLoss:         140,
		Thesis:           "Services growth re-rates the multiple",
	}
}

func tradeReq(kind position.TradeType, qty, price float64, ts string) position.TradeRequest {
	return position.TradeRequest{Type: kind, Quantity: f64(qty), Price: f64(price), Timestamp: ts}
}

func fields() []position.JournalField {
	return []position.JournalField{
		{Name: "execution_notes", Prompt: "How was the fill?", Response: "Limit order at the planned entry", Required: true},
	}
}

// positionStore wraps a real store so tests can count calls and inject
// failures on the nth write.
type positionStore struct {
	store.PositionStore

	mu      sync.Mutex
	gets    int
	puts    int
	failPut func(n int) error
}

func (s *positionStore) GetPosition(ctx context.Context, id string) (position.Position, error) {
	s.mu.Lock()
	s.gets++
	s.mu.Unlock()
	return s.PositionStore.GetPosition(ctx, id)
}

func (s *positionStore) PutPosition(ctx context.Context, p position.Position) (position.Position, error) {
	s.mu.Lock()
	s.puts++
	n, fail := s.puts, s.failPut
	s.mu.Unlock()
	if fail != nil {
		if err := fail(n); err != nil {
			return position.Position{}, err
		}
	}
	return s.PositionStore.PutPosition(ctx, p)
}

func (s *positionStore) reset() {
	s.mu.Lock()
	s.gets, s.puts, s.failPut = 0, 0, nil
	s.mu.Unlock()
}

type journalStore struct {
	store.JournalStore
	failPut    error
	failDelete error
}

func (s *journalStore) PutJournalEntry(ctx context.Context, e position.JournalEntry) error {
	if s.failPut != nil {
		return s.failPut
	}
	return s.JournalStore.PutJournalEntry(ctx, e)
}

func (s *journalStore) DeleteJournalEntry(ctx context.Context, id string) error {
	if s.failDelete != nil {
		return s.failDelete
	}
	return s.JournalStore.DeleteJournalEntry(ctx, id)
}

type fixture struct {
	svc       *Service
	mem       *store.Memory
	positions *positionStore
	journal   *journalStore
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	mem := store.NewMemory(store.JSON, zerolog.Nop())
	f := &fixture{
		mem:       mem,
		positions: &positionStore{PositionStore: mem},
		journal:   &journalStore{JournalStore: mem},
	}
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	f.svc = NewService(f.positions, f.journal, zerolog.Nop(), opts...)
	return f
}

// planned stores a fresh long stock position and resets the call counters.
func (f *fixture) planned(t *testing.T) position.Position {
	t.Helper()
	p, _, err := f.svc.CreatePosition(context.Background(), stockPlan())
	require.NoError(t, err)
	f.positions.reset()
	return p
}

// opened stores a position holding 100 shares bought at 150.
func (f *fixture) opened(t *testing.T) position.Position {
	t.Helper()
	p := f.planned(t)
	_, err := f.svc.AddTrade(context.Background(), p.ID, tradeReq(position.TradeBuy, 100, 150, "2025-01-10T14:30:00Z"))
	require.NoError(t, err)
	p, err = f.svc.GetPosition(context.Background(), p.ID)
	require.NoError(t, err)
	f.positions.reset()
	return p
}

var errDisk = errors.New("disk full")
