package prices

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tradejournal/pnl"
)

const Schema = `
CREATE TABLE IF NOT EXISTS prices (
	symbol TEXT PRIMARY KEY,
	close REAL NOT NULL,
	asof DATETIME NOT NULL
);
`

// SQLiteBook holds manually entered quotes.
type SQLiteBook struct {
	db    *sql.DB
	owned bool
}

// NewSQLiteBook adds the prices table to an existing database.
func NewSQLiteBook(db *sql.DB) (*SQLiteBook, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("apply prices schema: %w", err)
	}
	return &SQLiteBook{db: db}, nil
}

// OpenSQLiteBook opens its own database file.
func OpenSQLiteBook(path string) (*SQLiteBook, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	b, err := NewSQLiteBook(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	b.owned = true
	return b, nil
}

func (b *SQLiteBook) SetPrice(ctx context.Context, symbol string, close float64, asOf time.Time) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if close < 0 {
		return fmt.Errorf("price (%g) cannot be negative", close)
	}
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO prices (symbol, close, asof) VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET close = excluded.close, asof = excluded.asof`,
		symbol, close, asOf.UTC(),
	)
	return err
}

func (b *SQLiteBook) LatestPrices(ctx context.Context, symbols []string) (map[string]pnl.Quote, error) {
	out := make(map[string]pnl.Quote, len(symbols))
	if len(symbols) == 0 {
		return out, nil
	}

	args := make([]any, len(symbols))
	for i, s := range symbols {
		args[i] = s
	}
	query := `SELECT symbol, close, asof FROM prices WHERE symbol IN (?` +
		strings.Repeat(", ?", len(symbols)-1) + `)`

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sym string
			q   pnl.Quote
		)
		if err := rows.Scan(&sym, &q.Close, &q.AsOf); err != nil {
			return nil, err
		}
		q.AsOf = q.AsOf.UTC()
		out[sym] = q
	}
	return out, rows.Err()
}

// Close closes the database only when the book opened it.
func (b *SQLiteBook) Close() error {
	if b.owned {
		return b.db.Close()
	}
	return nil
}
