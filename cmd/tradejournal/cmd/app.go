package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/logger"
	"github.com/rustyeddy/tradejournal/position"
	"github.com/rustyeddy/tradejournal/prices"
	"github.com/rustyeddy/tradejournal/store"
	"github.com/rustyeddy/tradejournal/trading"
)

// app is everything a command needs, built from the loaded config.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  store.Store
	book   *prices.SQLiteBook
	prices prices.Lookup
	svc    *trading.Service
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	st, err := store.Open(ctx, cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// Manual quotes share the document database when there is one.
	var book *prices.SQLiteBook
	if s, ok := st.(*store.SQLite); ok {
		book, err = prices.NewSQLiteBook(s.DB())
	} else {
		book, err = prices.OpenSQLiteBook(cfg.Store.Path)
	}
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("open price book: %w", err)
	}

	lookups := []prices.Lookup{book}
	if a := cfg.Prices.Alpaca; a.Enabled {
		lookups = append(lookups, prices.NewAlpaca(a.APIKey, a.APISecret, a.Feed, log))
	}
	chain := prices.NewChain(log, lookups...)

	svc := trading.NewService(st, st, log,
		trading.WithPrices(chain),
		trading.WithRiskPolicy(cfg.Trading.Risk),
		trading.WithCompensationRetries(cfg.Trading.CompensationRetries),
	)
	return &app{cfg: cfg, log: log, store: st, book: book, prices: chain, svc: svc}, nil
}

func (a *app) Close() error {
	return errors.Join(a.book.Close(), a.store.Close())
}

// parseFields turns name=response pairs into journal fields.
func parseFields(pairs []string) ([]position.JournalField, error) {
	out := make([]position.JournalField, 0, len(pairs))
	for _, kv := range pairs {
		name, resp, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("journal field %q must be name=response", kv)
		}
		out = append(out, position.JournalField{Name: name, Prompt: prompts[name], Response: resp})
	}
	return out, nil
}

var prompts = map[string]string{
	"thesis":          "Why this trade, why now?",
	"entry_reasoning": "What made you enter here?",
	"exit_reasoning":  "What made you exit here?",
	"execution_notes": "How was the fill?",
	"emotional_state": "How are you feeling about this trade?",
	"lessons":         "What would you do differently?",
}
