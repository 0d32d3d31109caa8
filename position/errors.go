package position

import (
	"errors"
	"fmt"
)

// Kind names the rule an Error violated.
type Kind string

const (
	KindMissingFields          Kind = "MISSING_FIELDS"
	KindInvalidTradeType       Kind = "INVALID_TRADE_TYPE"
	KindNonPositiveQuantity    Kind = "NON_POSITIVE_QUANTITY"
	KindNegativePrice          Kind = "NEGATIVE_PRICE"
	KindInvalidTimestamp       Kind = "INVALID_TIMESTAMP"
	KindEmptyUnderlying        Kind = "EMPTY_UNDERLYING"
	KindExitFromPlanned        Kind = "EXIT_FROM_PLANNED"
	KindExitFromClosed         Kind = "EXIT_FROM_CLOSED"
	KindOversellRejected       Kind = "OVERSELL_REJECTED"
	KindPositionNotFound       Kind = "POSITION_NOT_FOUND"
	KindEmptyJournalFields     Kind = "EMPTY_JOURNAL_FIELDS"
	KindInvalidTradeData       Kind = "INVALID_TRADE_DATA"
	KindPersistence            Kind = "PERSISTENCE_ERROR"
	KindRollbackFailed         Kind = "ROLLBACK_FAILED"
	KindConcurrentModification Kind = "CONCURRENT_MODIFICATION"
	KindInvalidPosition        Kind = "INVALID_POSITION"
	KindInvalidJournalEntry    Kind = "INVALID_JOURNAL_ENTRY"
	KindJournalEntryNotFound   Kind = "JOURNAL_ENTRY_NOT_FOUND"
)

// Sentinels for errors.Is. Any *Error with the same Kind matches.
var (
	ErrMissingFields          = &Error{Kind: KindMissingFields}
	ErrInvalidTradeType       = &Error{Kind: KindInvalidTradeType}
	ErrNonPositiveQuantity    = &Error{Kind: KindNonPositiveQuantity}
	ErrNegativePrice          = &Error{Kind: KindNegativePrice}
	ErrInvalidTimestamp       = &Error{Kind: KindInvalidTimestamp}
	ErrEmptyUnderlying        = &Error{Kind: KindEmptyUnderlying}
	ErrExitFromPlanned        = &Error{Kind: KindExitFromPlanned}
	ErrExitFromClosed         = &Error{Kind: KindExitFromClosed}
	ErrOversellRejected       = &Error{Kind: KindOversellRejected}
	ErrPositionNotFound       = &Error{Kind: KindPositionNotFound}
	ErrEmptyJournalFields     = &Error{Kind: KindEmptyJournalFields}
	ErrInvalidTradeData       = &Error{Kind: KindInvalidTradeData}
	ErrPersistence            = &Error{Kind: KindPersistence}
	ErrRollbackFailed         = &Error{Kind: KindRollbackFailed}
	ErrConcurrentModification = &Error{Kind: KindConcurrentModification}
	ErrInvalidPosition        = &Error{Kind: KindInvalidPosition}
	ErrInvalidJournalEntry    = &Error{Kind: KindInvalidJournalEntry}
	ErrJournalEntryNotFound   = &Error{Kind: KindJournalEntryNotFound}
)

// Error is the domain error. Msg is human readable and names the offending
// values; Err optionally carries the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so callers can write errors.Is(err, position.ErrOversellRejected).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Errorf builds an Error of the given kind.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the Kind of the outermost *Error in err's chain, or "".
// A RollbackError anywhere in the chain always reports KindRollbackFailed.
func KindOf(err error) Kind {
	var rb *RollbackError
	if errors.As(err, &rb) {
		return KindRollbackFailed
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// RollbackError is returned when a compensating write fails. The position is
// left inconsistent and needs operator attention.
type RollbackError struct {
	Original     error
	Compensation error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback failed (%v) after: %v", e.Compensation, e.Original)
}

func (e *RollbackError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == KindRollbackFailed
}

// Unwrap exposes both the original failure and the compensation failure.
func (e *RollbackError) Unwrap() []error {
	return []error{e.Original, e.Compensation}
}
