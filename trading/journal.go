package trading

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/tradejournal/position"
	"github.com/rustyeddy/tradejournal/store"
)

// NewEntry is a standalone journal entry, e.g. the plan reflection written
// when a position is created.
type NewEntry struct {
	PositionID string                  `json:"position_id,omitempty"`
	TradeID    string                  `json:"trade_id,omitempty"`
	EntryType  position.EntryType      `json:"entry_type"`
	Fields     []position.JournalField `json:"fields"`
	ExecutedAt *time.Time              `json:"executed_at,omitempty"`
}

// CreateJournalEntry validates and stores an entry. When it names a position
// the entry id is linked onto the position; if that write fails the entry
// is removed again.
func (s *Service) CreateJournalEntry(ctx context.Context, in NewEntry) (position.JournalEntry, error) {
	entry, err := position.NewJournalEntry(in.PositionID, in.TradeID, in.EntryType, in.Fields, in.ExecutedAt, s.now())
	if err != nil {
		return position.JournalEntry{}, err
	}

	var p position.Position
	if in.PositionID != "" {
		if p, err = s.load(ctx, in.PositionID); err != nil {
			return position.JournalEntry{}, err
		}
		if in.TradeID != "" && p.FindTrade(in.TradeID) < 0 {
			return position.JournalEntry{}, position.Errorf(position.KindInvalidJournalEntry,
				"trade %s does not belong to position %s", in.TradeID, in.PositionID)
		}
	}

	steps := []step{{
		name: "write-journal",
		run: func(ctx context.Context) error {
			if err := s.journal.PutJournalEntry(ctx, entry); err != nil {
				return position.Wrap(position.KindPersistence, err, "write journal entry")
			}
			return nil
		},
		compensate: func(ctx context.Context) error {
			return s.dropJournalEntry(ctx, entry.ID)
		},
	}}
	if in.PositionID != "" {
		steps = append(steps, step{
			name: "link-journal",
			run: func(ctx context.Context) error {
				p.LinkJournalEntry(entry.ID)
				_, err := s.save(ctx, p)
				return err
			},
		})
	}

	if err := newSaga("journal-entry", s.log, steps...).run(ctx); err != nil {
		return position.JournalEntry{}, err
	}
	s.log.Info().
		Str("journal_id", entry.ID).
		Str("position_id", entry.PositionID).
		Str("entry_type", string(entry.EntryType)).
		Msg("journal entry written")
	return entry, nil
}

func (s *Service) GetJournalEntry(ctx context.Context, entryID string) (position.JournalEntry, error) {
	e, err := s.journal.GetJournalEntry(ctx, entryID)
	if errors.Is(err, store.ErrNotFound) {
		return position.JournalEntry{}, position.Errorf(position.KindJournalEntryNotFound, "journal entry %s not found", entryID)
	}
	if err != nil {
		return position.JournalEntry{}, position.Wrap(position.KindPersistence, err, "load journal entry %s", entryID)
	}
	return e, nil
}

// ListJournalEntries lists entries oldest first; an empty positionID lists
// all of them.
func (s *Service) ListJournalEntries(ctx context.Context, positionID string) ([]position.JournalEntry, error) {
	es, err := s.journal.ListJournalEntries(ctx, positionID)
	if err != nil {
		return nil, position.Wrap(position.KindPersistence, err, "list journal entries")
	}
	return es, nil
}

// DeleteJournalEntry unlinks the entry from its position, then deletes it.
func (s *Service) DeleteJournalEntry(ctx context.Context, entryID string) error {
	e, err := s.GetJournalEntry(ctx, entryID)
	if err != nil {
		return err
	}

	if e.PositionID != "" {
		p, err := s.load(ctx, e.PositionID)
		switch {
		case errors.Is(err, position.ErrPositionNotFound):
		case err != nil:
			return err
		case p.UnlinkJournalEntry(entryID):
			if _, err := s.save(ctx, p); err != nil {
				return err
			}
		}
	}

	if err := s.dropJournalEntry(ctx, entryID); err != nil {
		return err
	}
	s.log.Info().Str("journal_id", entryID).Msg("journal entry deleted")
	return nil
}

// DeleteJournalEntriesByPosition removes every entry of a position and
// clears its journal id list.
func (s *Service) DeleteJournalEntriesByPosition(ctx context.Context, positionID string) (int, error) {
	p, err := s.load(ctx, positionID)
	if err != nil {
		return 0, err
	}
	if len(p.JournalEntryIDs) > 0 {
		p.JournalEntryIDs = []string{}
		if _, err := s.save(ctx, p); err != nil {
			return 0, err
		}
	}
	n, err := s.journal.DeleteJournalEntriesByPosition(ctx, positionID)
	if err != nil {
		return 0, position.Wrap(position.KindPersistence, err, "delete journal entries of position %s", positionID)
	}
	return n, nil
}
