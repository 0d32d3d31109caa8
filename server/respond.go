package server

import (
	"encoding/json"
	"net/http"

	"github.com/rustyeddy/tradejournal/position"
)

const kindInvalidRequest = "INVALID_REQUEST"

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// positionView adds the derived status to a position.
type positionView struct {
	position.Position
	Status position.Status `json:"status"`
}

func viewOf(p position.Position) positionView {
	return positionView{Position: p, Status: p.Status()}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := position.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("kind", string(kind)).Msg("Request failed")
	}
	if kind == "" {
		kind = position.KindPersistence
	}
	s.writeJSON(w, status, errorBody{Error: string(kind), Message: err.Error()})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorBody{Error: kindInvalidRequest, Message: msg})
}

func statusFor(kind position.Kind) int {
	switch kind {
	case position.KindPositionNotFound, position.KindJournalEntryNotFound:
		return http.StatusNotFound
	case position.KindConcurrentModification:
		return http.StatusConflict
	case position.KindMissingFields,
		position.KindInvalidTradeType,
		position.KindNonPositiveQuantity,
		position.KindNegativePrice,
		position.KindInvalidTimestamp,
		position.KindEmptyUnderlying,
		position.KindExitFromPlanned,
		position.KindExitFromClosed,
		position.KindOversellRejected,
		position.KindEmptyJournalFields,
		position.KindInvalidTradeData,
		position.KindInvalidPosition,
		position.KindInvalidJournalEntry:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
