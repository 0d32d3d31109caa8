// Package store persists positions and journal entries as versioned
// documents.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/position"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: version conflict")
)

// PositionStore holds positions. PutPosition is a compare-and-swap on
// p.Version: zero means the position must not exist yet, anything else must
// match the stored version. The returned copy carries the new version.
type PositionStore interface {
	GetPosition(ctx context.Context, id string) (position.Position, error)
	ListPositions(ctx context.Context) ([]position.Position, error)
	PutPosition(ctx context.Context, p position.Position) (position.Position, error)
	DeletePosition(ctx context.Context, id string) error
}

// JournalStore holds journal entries. An empty positionID lists every entry.
type JournalStore interface {
	GetJournalEntry(ctx context.Context, id string) (position.JournalEntry, error)
	ListJournalEntries(ctx context.Context, positionID string) ([]position.JournalEntry, error)
	PutJournalEntry(ctx context.Context, e position.JournalEntry) error
	DeleteJournalEntry(ctx context.Context, id string) error
	DeleteJournalEntriesByPosition(ctx context.Context, positionID string) (int, error)
}

type Store interface {
	PositionStore
	JournalStore
	Close() error
}

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig, log zerolog.Logger) (Store, error) {
	codec, err := CodecByName(cfg.Codec)
	if err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case "memory":
		return NewMemory(codec, log), nil
	case "sqlite":
		return NewSQLite(cfg.Path, codec, log)
	case "dynamodb":
		return NewDynamo(ctx, cfg.Table, cfg.Region, codec, log)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func conflict(id string, version int64) error {
	return fmt.Errorf("%w: position %s at version %d", ErrConflict, id, version)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}

// sortPositions orders positions by id.
func sortPositions(ps []position.Position) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
}

// sortJournal orders entries oldest first; ids break ties.
func sortJournal(es []position.JournalEntry) {
	sort.Slice(es, func(i, j int) bool {
		if !es[i].CreatedAt.Equal(es[j].CreatedAt) {
			return es[i].CreatedAt.Before(es[j].CreatedAt)
		}
		return es[i].ID < es[j].ID
	})
}
