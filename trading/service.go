// Package trading records trades against position plans and keeps the
// journal in step with them.
package trading

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradejournal/pkg/id"
	"github.com/rustyeddy/tradejournal/position"
	"github.com/rustyeddy/tradejournal/prices"
	"github.com/rustyeddy/tradejournal/risk"
	"github.com/rustyeddy/tradejournal/store"
)

const defaultCompensationRetries = 3

type Service struct {
	positions store.PositionStore
	journal   store.JournalStore
	prices    prices.Lookup
	policy    risk.Policy
	retries   int
	log       zerolog.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPrices sets the lookup used by Valuate. Without one every position is
// valued with no price data.
func WithPrices(l prices.Lookup) Option {
	return func(s *Service) { s.prices = l }
}

func WithRiskPolicy(p risk.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithCompensationRetries bounds the retries a rollback step makes after a
// version conflict.
func WithCompensationRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.retries = n
		}
	}
}

func NewService(positions store.PositionStore, journal store.JournalStore, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		positions: positions,
		journal:   journal,
		retries:   defaultCompensationRetries,
		log:       log.With().Str("service", "trading").Logger(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreatePosition validates the plan and stores a planned position. Risk
// policy violations do not block creation; they are returned and logged.
func (s *Service) CreatePosition(ctx context.Context, pl position.Plan) (position.Position, risk.Decision, error) {
	p, err := position.New(pl, s.now())
	if err != nil {
		return position.Position{}, risk.Decision{}, err
	}

	open, err := s.countOpen(ctx)
	if err != nil {
		return position.Position{}, risk.Decision{}, err
	}
	decision := risk.Review(s.policy, p, open)
	for _, v := range decision.Violations {
		s.log.Warn().Str("symbol", p.Symbol).Str("code", v.Code).Msg(v.Msg)
	}

	saved, err := s.save(ctx, p)
	if err != nil {
		return position.Position{}, risk.Decision{}, err
	}
	s.log.Info().
		Str("position_id", saved.ID).
		Str("symbol", saved.Symbol).
		Str("strategy", string(saved.Strategy)).
		Msg("position planned")
	return saved, decision, nil
}

func (s *Service) GetPosition(ctx context.Context, positionID string) (position.Position, error) {
	return s.load(ctx, positionID)
}

// ListPositions returns every position, or only those in status when it is
// not empty.
func (s *Service) ListPositions(ctx context.Context, status position.Status) ([]position.Position, error) {
	all, err := s.positions.ListPositions(ctx)
	if err != nil {
		return nil, position.Wrap(position.KindPersistence, err, "list positions")
	}
	if status == "" {
		return all, nil
	}
	out := make([]position.Position, 0, len(all))
	for _, p := range all {
		if p.Status() == status {
			out = append(out, p)
		}
	}
	return out, nil
}

// DeletePosition removes a position and every journal entry written for it.
func (s *Service) DeletePosition(ctx context.Context, positionID string) error {
	if _, err := s.load(ctx, positionID); err != nil {
		return err
	}
	n, err := s.journal.DeleteJournalEntriesByPosition(ctx, positionID)
	if err != nil {
		return position.Wrap(position.KindPersistence, err, "delete journal entries of position %s", positionID)
	}
	if err := s.positions.DeletePosition(ctx, positionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return position.Errorf(position.KindPositionNotFound, "position %s not found", positionID)
		}
		return position.Wrap(position.KindPersistence, err, "delete position %s", positionID)
	}
	s.log.Info().Str("position_id", positionID).Int("journal_entries", n).Msg("position deleted")
	return nil
}

// AddTrade validates req against the position, appends it and persists the
// position with one read and one compare-and-swap write. It returns the
// updated trade log.
func (s *Service) AddTrade(ctx context.Context, positionID string, req position.TradeRequest) ([]position.Trade, error) {
	p, _, err := s.addTrade(ctx, positionID, req)
	if err != nil {
		return nil, err
	}
	return p.Trades, nil
}

func (s *Service) addTrade(ctx context.Context, positionID string, req position.TradeRequest) (position.Position, position.Trade, error) {
	p, err := s.load(ctx, positionID)
	if err != nil {
		return position.Position{}, position.Trade{}, err
	}

	if req.PositionID == "" {
		req.PositionID = positionID
	}
	if err := position.ValidateTrade(req); err != nil {
		return position.Position{}, position.Trade{}, err
	}
	if req.PositionID != positionID {
		return position.Position{}, position.Trade{}, position.Errorf(position.KindInvalidTradeData,
			"trade position_id %s does not match position %s", req.PositionID, positionID)
	}
	underlying := p.Instrument()
	if req.Underlying != nil {
		if u := strings.ToUpper(strings.TrimSpace(*req.Underlying)); u != underlying {
			return position.Position{}, position.Trade{}, position.Errorf(position.KindInvalidTradeData,
				"trade underlying %s does not match position instrument %s", u, underlying)
		}
	}

	qty, price := *req.Quantity, *req.Price
	if req.Type == position.TradeSell {
		if err := position.ValidateExitTrade(p, qty, price); err != nil {
			return position.Position{}, position.Trade{}, err
		}
	}

	ts, err := position.ParseTimestamp(req.Timestamp)
	if err != nil {
		return position.Position{}, position.Trade{}, position.Wrap(position.KindInvalidTimestamp, err, "timestamp %q", req.Timestamp)
	}

	trade := position.Trade{
		ID:         id.New(),
		PositionID: positionID,
		Type:       req.Type,
		Quantity:   qty,
		Price:      price,
		Timestamp:  ts.UTC(),
		Underlying: underlying,
		Notes:      strings.TrimSpace(req.Notes),
	}
	p.Trades = append(p.Trades, trade)

	status, err := p.CheckStatus()
	if err != nil {
		return position.Position{}, position.Trade{}, err
	}

	saved, err := s.save(ctx, p)
	if err != nil {
		return position.Position{}, position.Trade{}, err
	}

	s.log.Info().
		Str("position_id", positionID).
		Str("trade_id", trade.ID).
		Str("type", string(trade.Type)).
		Float64("quantity", qty).
		Float64("price", price).
		Str("status", string(status)).
		Msg("trade recorded")
	return saved, trade, nil
}

func (s *Service) load(ctx context.Context, positionID string) (position.Position, error) {
	p, err := s.positions.GetPosition(ctx, positionID)
	if errors.Is(err, store.ErrNotFound) {
		return position.Position{}, position.Errorf(position.KindPositionNotFound, "position %s not found", positionID)
	}
	if err != nil {
		return position.Position{}, position.Wrap(position.KindPersistence, err, "load position %s", positionID)
	}
	return p, nil
}

func (s *Service) save(ctx context.Context, p position.Position) (position.Position, error) {
	saved, err := s.positions.PutPosition(ctx, p)
	if errors.Is(err, store.ErrConflict) {
		return position.Position{}, position.Wrap(position.KindConcurrentModification, err,
			"position %s changed since version %d", p.ID, p.Version)
	}
	if err != nil {
		return position.Position{}, position.Wrap(position.KindPersistence, err, "save position %s", p.ID)
	}
	return saved, nil
}

func (s *Service) countOpen(ctx context.Context) (int, error) {
	open, err := s.ListPositions(ctx, position.StatusOpen)
	if err != nil {
		return 0, fmt.Errorf("count open positions: %w", err)
	}
	return len(open), nil
}
