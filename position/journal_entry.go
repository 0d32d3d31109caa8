package position

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

const (
	ThesisMinLength = 10
	ThesisMaxLength = 2000
)

// ValidateJournalEntry checks the journal entry invariants.
func ValidateJournalEntry(e JournalEntry) error {
	if e.PositionID == "" && e.TradeID == "" {
		return Errorf(KindMissingFields, "journal entry needs a position id or a trade id")
	}
	if e.EntryType != EntryPositionPlan && e.EntryType != EntryTradeExecution {
		return Errorf(KindInvalidJournalEntry, "entry type %q must be position_plan or trade_execution", e.EntryType)
	}
	return ValidateJournalFields(e.Fields)
}

// ValidateJournalFields checks the field list on its own so callers can fail
// fast before touching any other state.
func ValidateJournalFields(fields []JournalField) error {
	if len(fields) == 0 {
		return Errorf(KindEmptyJournalFields, "journal entry must have at least one field")
	}
	for _, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			return Errorf(KindInvalidJournalEntry, "journal field name cannot be empty")
		}
		if f.Required && strings.TrimSpace(f.Response) == "" {
			return Errorf(KindInvalidJournalEntry, "journal field %q is required", f.Name)
		}
		if f.Name == "thesis" {
			n := utf8.RuneCountInString(f.Response)
			if n < ThesisMinLength || n > ThesisMaxLength {
				return Errorf(KindInvalidJournalEntry,
					"thesis response must be %d-%d characters (got %d)", ThesisMinLength, ThesisMaxLength, n)
			}
		}
	}
	return nil
}

// NewJournalEntry validates and stamps a journal entry.
func NewJournalEntry(positionID, tradeID string, kind EntryType, fields []JournalField, executedAt *time.Time, now time.Time) (JournalEntry, error) {
	e := JournalEntry{
		ID:         id.New(),
		PositionID: positionID,
		TradeID:    tradeID,
		EntryType:  kind,
		Fields:     append([]JournalField(nil), fields...),
		CreatedAt:  now.UTC(),
		ExecutedAt: executedAt,
	}
	if err := ValidateJournalEntry(e); err != nil {
		return JournalEntry{}, err
	}
	return e, nil
}
