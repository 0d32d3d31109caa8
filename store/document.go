package store

import (
	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradejournal/position"
)

// positionDoc is the persisted form. Status is written for readers of the
// raw document and recomputed on every read.
type positionDoc struct {
	position.Position
	Status position.Status `json:"status"`
}

func encodePosition(c Codec, p position.Position) ([]byte, error) {
	return c.Marshal(positionDoc{Position: p, Status: p.Status()})
}

// decodePosition normalizes legacy documents and warns when the stored
// status disagrees with the trade log.
func decodePosition(c Codec, data []byte, log zerolog.Logger) (position.Position, error) {
	var doc positionDoc
	if err := c.Unmarshal(data, &doc); err != nil {
		return position.Position{}, err
	}
	p := doc.Position
	p.Normalize()
	positionUTC(&p)

	derived, err := p.CheckStatus()
	if err != nil {
		log.Warn().Err(err).Str("position_id", p.ID).Msg("position has an invalid trade log")
	} else if doc.Status != "" && doc.Status != derived {
		log.Warn().
			Str("position_id", p.ID).
			Str("stored", string(doc.Status)).
			Str("derived", string(derived)).
			Msg("stored status diverges from trade log, using derived")
	}
	return p, nil
}

func encodeJournal(c Codec, e position.JournalEntry) ([]byte, error) {
	return c.Marshal(e)
}

func decodeJournal(c Codec, data []byte) (position.JournalEntry, error) {
	var e position.JournalEntry
	if err := c.Unmarshal(data, &e); err != nil {
		return position.JournalEntry{}, err
	}
	if e.Fields == nil {
		e.Fields = []position.JournalField{}
	}
	e.CreatedAt = e.CreatedAt.UTC()
	if e.ExecutedAt != nil {
		t := e.ExecutedAt.UTC()
		e.ExecutedAt = &t
	}
	return e, nil
}

// msgpack decodes timestamps in the local zone; documents are always UTC.
func positionUTC(p *position.Position) {
	p.CreatedAt = p.CreatedAt.UTC()
	if p.ExpirationDate != nil {
		t := p.ExpirationDate.UTC()
		p.ExpirationDate = &t
	}
	for i := range p.Trades {
		p.Trades[i].Timestamp = p.Trades[i].Timestamp.UTC()
	}
}
