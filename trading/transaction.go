package trading

import (
	"context"
	"errors"

	"github.com/rustyeddy/tradejournal/position"
	"github.com/rustyeddy/tradejournal/store"
)

// JournalInput is the reflection captured alongside a trade.
type JournalInput struct {
	Fields []position.JournalField `json:"fields"`
}

// ExecuteTradeWithJournal records a trade and its trade_execution journal
// entry together. Steps that completed are undone when a later one fails, so
// the caller sees the position exactly as it was: same trades, same journal
// ids, same status.
//
// A crash between writing the journal entry and linking it leaves an
// orphaned entry carrying the position id; ListJournalEntries still finds it.
func (s *Service) ExecuteTradeWithJournal(ctx context.Context, positionID string, req position.TradeRequest, in JournalInput) (position.Position, error) {
	if _, err := s.load(ctx, positionID); err != nil {
		return position.Position{}, err
	}
	if err := position.ValidateJournalFields(in.Fields); err != nil {
		return position.Position{}, err
	}

	var (
		withTrade position.Position
		trade     position.Trade
		entry     position.JournalEntry
		result    position.Position
	)

	sg := newSaga("trade-with-journal", s.log.With().Str("position_id", positionID).Logger(),
		step{
			name: "record-trade",
			run: func(ctx context.Context) error {
				var err error
				withTrade, trade, err = s.addTrade(ctx, positionID, req)
				return err
			},
			compensate: func(ctx context.Context) error {
				return s.removeTrade(ctx, positionID, trade.ID)
			},
		},
		step{
			name: "write-journal",
			run: func(ctx context.Context) error {
				executed := trade.Timestamp
				var err error
				entry, err = position.NewJournalEntry(positionID, trade.ID, position.EntryTradeExecution, in.Fields, &executed, s.now())
				if err != nil {
					return err
				}
				if err := s.journal.PutJournalEntry(ctx, entry); err != nil {
					return position.Wrap(position.KindPersistence, err, "write journal entry for trade %s", trade.ID)
				}
				return nil
			},
			compensate: func(ctx context.Context) error {
				return s.dropJournalEntry(ctx, entry.ID)
			},
		},
		step{
			name: "link-journal",
			run: func(ctx context.Context) error {
				p := withTrade.Clone()
				p.LinkJournalEntry(entry.ID)
				var err error
				result, err = s.save(ctx, p)
				return err
			},
		},
	)

	if err := sg.run(ctx); err != nil {
		return position.Position{}, err
	}
	s.log.Info().
		Str("position_id", positionID).
		Str("trade_id", trade.ID).
		Str("journal_id", entry.ID).
		Msg("trade journaled")
	return result, nil
}

// removeTrade takes tradeID back out of the position. It reloads and writes
// with compare-and-swap, retrying on version conflicts. A trade (or position)
// that is already gone is success.
func (s *Service) removeTrade(ctx context.Context, positionID, tradeID string) error {
	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		var p position.Position
		p, err = s.load(ctx, positionID)
		if errors.Is(err, position.ErrPositionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !p.RemoveTrade(tradeID) {
			return nil
		}
		if _, err = s.save(ctx, p); err == nil {
			s.log.Info().Str("position_id", positionID).Str("trade_id", tradeID).Msg("trade removed")
			return nil
		}
		if !errors.Is(err, position.ErrConcurrentModification) {
			return err
		}
		s.log.Warn().Int("attempt", attempt+1).Str("position_id", positionID).Msg("version conflict during rollback, retrying")
	}
	return err
}

// dropJournalEntry deletes an entry, treating one that is already gone as
// deleted.
func (s *Service) dropJournalEntry(ctx context.Context, entryID string) error {
	if entryID == "" {
		return nil
	}
	err := s.journal.DeleteJournalEntry(ctx, entryID)
	if err == nil || errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return position.Wrap(position.KindPersistence, err, "delete journal entry %s", entryID)
}
