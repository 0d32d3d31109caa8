package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradejournal/position"
)

type SQLite struct {
	db    *sql.DB
	codec Codec
	log   zerolog.Logger
	now   func() time.Time
}

func NewSQLite(path string, codec Codec, log zerolog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases and write ordering sane
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{
		db:    db,
		codec: codec,
		log:   log.With().Str("store", "sqlite").Str("path", path).Logger(),
		now:   time.Now,
	}, nil
}

// DB exposes the handle so other tables (manual price quotes) can share the
// file.
func (s *SQLite) DB() *sql.DB { return s.db }

func (s *SQLite) GetPosition(ctx context.Context, id string) (position.Position, error) {
	var (
		codec   string
		version int64
		body    []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT codec, version, body FROM documents WHERE kind = ? AND id = ?`,
		kindPosition, id,
	).Scan(&codec, &version, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return position.Position{}, notFound("position", id)
	}
	if err != nil {
		return position.Position{}, err
	}

	p, err := decodePosition(s.codecFor(codec), body, s.log)
	if err != nil {
		return position.Position{}, fmt.Errorf("decode position %s: %w", id, err)
	}
	p.Version = version
	return p, nil
}

func (s *SQLite) ListPositions(ctx context.Context) ([]position.Position, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, codec, version, body FROM documents WHERE kind = ? ORDER BY id ASC`,
		kindPosition,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []position.Position{}
	for rows.Next() {
		var (
			id      string
			codec   string
			version int64
			body    []byte
		)
		if err := rows.Scan(&id, &codec, &version, &body); err != nil {
			return nil, err
		}
		p, err := decodePosition(s.codecFor(codec), body, s.log)
		if err != nil {
			return nil, fmt.Errorf("decode position %s: %w", id, err)
		}
		p.Version = version
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLite) PutPosition(ctx context.Context, p position.Position) (position.Position, error) {
	next := p.Clone()
	next.Version = p.Version + 1
	body, err := encodePosition(s.codec, next)
	if err != nil {
		return position.Position{}, err
	}

	var res sql.Result
	if p.Version == 0 {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO documents (kind, id, position_id, version, codec, body, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(kind, id) DO NOTHING`,
			kindPosition, p.ID, p.ID, next.Version, s.codec.Name(), body, s.now().UTC(),
		)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE documents SET version = ?, codec = ?, body = ?, updated_at = ?
			WHERE kind = ? AND id = ? AND version = ?`,
			next.Version, s.codec.Name(), body, s.now().UTC(),
			kindPosition, p.ID, p.Version,
		)
	}
	if err != nil {
		return position.Position{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return position.Position{}, err
	}
	if n == 0 {
		return position.Position{}, conflict(p.ID, p.Version)
	}
	return next, nil
}

func (s *SQLite) DeletePosition(ctx context.Context, id string) error {
	return s.delete(ctx, kindPosition, "position", id)
}

func (s *SQLite) GetJournalEntry(ctx context.Context, id string) (position.JournalEntry, error) {
	var (
		codec string
		body  []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT codec, body FROM documents WHERE kind = ? AND id = ?`,
		kindJournal, id,
	).Scan(&codec, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return position.JournalEntry{}, notFound("journal entry", id)
	}
	if err != nil {
		return position.JournalEntry{}, err
	}
	return decodeJournal(s.codecFor(codec), body)
}

func (s *SQLite) ListJournalEntries(ctx context.Context, positionID string) ([]position.JournalEntry, error) {
	q := `SELECT codec, body FROM documents WHERE kind = ?`
	args := []any{kindJournal}
	if positionID != "" {
		q += ` AND position_id = ?`
		args = append(args, positionID)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []position.JournalEntry{}
	for rows.Next() {
		var (
			codec string
			body  []byte
		)
		if err := rows.Scan(&codec, &body); err != nil {
			return nil, err
		}
		e, err := decodeJournal(s.codecFor(codec), body)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortJournal(out)
	return out, nil
}

func (s *SQLite) PutJournalEntry(ctx context.Context, e position.JournalEntry) error {
	body, err := encodeJournal(s.codec, e)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (kind, id, position_id, version, codec, body, updated_at)
		VALUES (?, ?, ?, 0, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET
			position_id = excluded.position_id,
			codec = excluded.codec,
			body = excluded.body,
			updated_at = excluded.updated_at`,
		kindJournal, e.ID, e.PositionID, s.codec.Name(), body, s.now().UTC(),
	)
	return err
}

func (s *SQLite) DeleteJournalEntry(ctx context.Context, id string) error {
	return s.delete(ctx, kindJournal, "journal entry", id)
}

func (s *SQLite) DeleteJournalEntriesByPosition(ctx context.Context, positionID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE kind = ? AND position_id = ?`,
		kindJournal, positionID,
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLite) delete(ctx context.Context, kind, label, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE kind = ? AND id = ?`, kind, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(label, id)
	}
	return nil
}

// codecFor decodes rows written before a codec switch with the codec that
// wrote them.
func (s *SQLite) codecFor(name string) Codec {
	if c, err := CodecByName(name); err == nil {
		return c
	}
	return s.codec
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
