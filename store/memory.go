package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradejournal/position"
)

type memDoc struct {
	version    int64
	positionID string
	body       []byte
}

// Memory keeps encoded documents in maps so callers never share memory with
// the store.
type Memory struct {
	mu        sync.RWMutex
	codec     Codec
	log       zerolog.Logger
	positions map[string]memDoc
	journal   map[string]memDoc
}

func NewMemory(codec Codec, log zerolog.Logger) *Memory {
	return &Memory{
		codec:     codec,
		log:       log.With().Str("store", "memory").Logger(),
		positions: make(map[string]memDoc),
		journal:   make(map[string]memDoc),
	}
}

func (m *Memory) GetPosition(ctx context.Context, id string) (position.Position, error) {
	m.mu.RLock()
	doc, ok := m.positions[id]
	m.mu.RUnlock()
	if !ok {
		return position.Position{}, notFound("position", id)
	}
	p, err := decodePosition(m.codec, doc.body, m.log)
	if err != nil {
		return position.Position{}, err
	}
	p.Version = doc.version
	return p, nil
}

func (m *Memory) ListPositions(ctx context.Context) ([]position.Position, error) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.positions))
	for id := range m.positions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)

	out := make([]position.Position, 0, len(ids))
	for _, id := range ids {
		p, err := m.GetPosition(ctx, id)
		if err != nil {
			// deleted between listing and reading
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *Memory) PutPosition(ctx context.Context, p position.Position) (position.Position, error) {
	next := p.Clone()
	next.Version = p.Version + 1
	body, err := encodePosition(m.codec, next)
	if err != nil {
		return position.Position{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.positions[p.ID]
	if (!ok && p.Version != 0) || (ok && cur.version != p.Version) {
		return position.Position{}, conflict(p.ID, p.Version)
	}
	m.positions[p.ID] = memDoc{version: next.Version, body: body}
	return next, nil
}

func (m *Memory) DeletePosition(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.positions[id]; !ok {
		return notFound("position", id)
	}
	delete(m.positions, id)
	return nil
}

func (m *Memory) GetJournalEntry(ctx context.Context, id string) (position.JournalEntry, error) {
	m.mu.RLock()
	doc, ok := m.journal[id]
	m.mu.RUnlock()
	if !ok {
		return position.JournalEntry{}, notFound("journal entry", id)
	}
	return decodeJournal(m.codec, doc.body)
}

func (m *Memory) ListJournalEntries(ctx context.Context, positionID string) ([]position.JournalEntry, error) {
	m.mu.RLock()
	docs := make([]memDoc, 0, len(m.journal))
	for _, doc := range m.journal {
		if positionID == "" || doc.positionID == positionID {
			docs = append(docs, doc)
		}
	}
	m.mu.RUnlock()

	out := make([]position.JournalEntry, 0, len(docs))
	for _, doc := range docs {
		e, err := decodeJournal(m.codec, doc.body)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	sortJournal(out)
	return out, nil
}

func (m *Memory) PutJournalEntry(ctx context.Context, e position.JournalEntry) error {
	body, err := encodeJournal(m.codec, e)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.journal[e.ID] = memDoc{positionID: e.PositionID, body: body}
	m.mu.Unlock()
	return nil
}

func (m *Memory) DeleteJournalEntry(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.journal[id]; !ok {
		return notFound("journal entry", id)
	}
	delete(m.journal, id)
	return nil
}

func (m *Memory) DeleteJournalEntriesByPosition(ctx context.Context, positionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, doc := range m.journal {
		if doc.positionID == positionID {
			delete(m.journal, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) Close() error { return nil }
