package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/position"
	"github.com/rustyeddy/tradejournal/risk"
	"github.com/rustyeddy/tradejournal/trading"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/positions?status=open
func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	status := position.Status(r.URL.Query().Get("status"))
	switch status {
	case "", position.StatusPlanned, position.StatusOpen, position.StatusClosed:
	default:
		s.badRequest(w, "status must be planned, open or closed")
		return
	}

	ps, err := s.svc.ListPositions(r.Context(), status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]positionView, 0, len(ps))
	for _, p := range ps {
		out = append(out, viewOf(p))
	}
	s.writeJSON(w, http.StatusOK, out)
}

type createdPosition struct {
	Position positionView  `json:"position"`
	Risk     risk.Decision `json:"risk"`
}

// POST /api/positions
func (s *Server) handleCreatePosition(w http.ResponseWriter, r *http.Request) {
	var pl position.Plan
	if err := decode(r, &pl); err != nil {
		s.badRequest(w, "invalid position plan: "+err.Error())
		return
	}
	p, d, err := s.svc.CreatePosition(r.Context(), pl)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, createdPosition{Position: viewOf(p), Risk: d})
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.GetPosition(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, viewOf(p))
}

func (s *Server) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeletePosition(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// tradeBody is a trade request with an optional reflection. When Journal is
// present the trade and its journal entry are recorded together.
type tradeBody struct {
	position.TradeRequest
	Journal *trading.JournalInput `json:"journal,omitempty"`
}

// POST /api/positions/{id}/trades
func (s *Server) handleAddTrade(w http.ResponseWriter, r *http.Request) {
	var body tradeBody
	if err := decode(r, &body); err != nil {
		s.badRequest(w, "invalid trade: "+err.Error())
		return
	}
	id := chi.URLParam(r, "id")

	if body.Journal != nil {
		p, err := s.svc.ExecuteTradeWithJournal(r.Context(), id, body.TradeRequest, *body.Journal)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, viewOf(p))
		return
	}

	trades, err := s.svc.AddTrade(r.Context(), id, body.TradeRequest)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, trades)
}

func (s *Server) handlePositionPnL(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.Valuate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

// GET /api/pnl?status=open
func (s *Server) handleAllPnL(w http.ResponseWriter, r *http.Request) {
	reps, err := s.svc.ValuateAll(r.Context(), position.Status(r.URL.Query().Get("status")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reps)
}

func (s *Server) handlePositionJournal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.svc.GetPosition(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.listJournal(w, r, id)
}

// GET /api/journal?position_id=...
func (s *Server) handleListJournal(w http.ResponseWriter, r *http.Request) {
	s.listJournal(w, r, r.URL.Query().Get("position_id"))
}

func (s *Server) listJournal(w http.ResponseWriter, r *http.Request, positionID string) {
	es, err := s.svc.ListJournalEntries(r.Context(), positionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, es)
}

func (s *Server) handleCreateJournal(w http.ResponseWriter, r *http.Request) {
	var in trading.NewEntry
	if err := decode(r, &in); err != nil {
		s.badRequest(w, "invalid journal entry: "+err.Error())
		return
	}
	e, err := s.svc.CreateJournalEntry(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleGetJournal(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.GetJournalEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteJournal(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteJournalEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type priceBody struct {
	Close *float64  `json:"close"`
	AsOf  time.Time `json:"as_of"`
}

// PUT /api/prices/{symbol}
func (s *Server) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	if s.prices == nil {
		s.writeJSON(w, http.StatusNotImplemented,
			errorBody{Error: kindInvalidRequest, Message: "manual prices are not enabled"})
		return
	}
	var body priceBody
	if err := decode(r, &body); err != nil {
		s.badRequest(w, "invalid price: "+err.Error())
		return
	}
	if body.Close == nil || *body.Close < 0 {
		s.badRequest(w, "close is required and cannot be negative")
		return
	}
	if body.AsOf.IsZero() {
		body.AsOf = s.now()
	}
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if err := s.prices.SetPrice(r.Context(), symbol, *body.Close, body.AsOf.UTC()); err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to set price")
		s.writeJSON(w, http.StatusInternalServerError,
			errorBody{Error: string(position.KindPersistence), Message: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// records gathers every position with its valuation and journal.
func (s *Server) records(r *http.Request) ([]journal.Record, error) {
	reps, err := s.svc.ValuateAll(r.Context(), position.Status(r.URL.Query().Get("status")))
	if err != nil {
		return nil, err
	}
	out := make([]journal.Record, 0, len(reps))
	for _, rep := range reps {
		es, err := s.svc.ListJournalEntries(r.Context(), rep.Position.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, journal.Record{Position: rep.Position, Valuation: rep.Valuation, Entries: es})
	}
	return out, nil
}

func (s *Server) handleExportOrg(w http.ResponseWriter, r *http.Request) {
	recs, err := s.records(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/org; charset=utf-8")
	if err := journal.WriteOrg(w, recs); err != nil {
		s.log.Error().Err(err).Msg("Failed to write org export")
	}
}

// GET /api/export/csv/{positions|trades|journal}
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if kind != "positions" && kind != "trades" && kind != "journal" {
		s.badRequest(w, "export kind must be positions, trades or journal")
		return
	}
	recs, err := s.records(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	switch kind {
	case "positions":
		err = journal.WritePositionsCSV(w, recs)
	case "trades":
		ps := make([]position.Position, 0, len(recs))
		for _, rec := range recs {
			ps = append(ps, rec.Position)
		}
		err = journal.WriteTradesCSV(w, ps)
	case "journal":
		var es []position.JournalEntry
		for _, rec := range recs {
			es = append(es, rec.Entries...)
		}
		err = journal.WriteJournalCSV(w, es)
	}
	if err != nil {
		s.log.Error().Err(err).Str("kind", kind).Msg("Failed to write csv export")
	}
}
