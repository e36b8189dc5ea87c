package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the row shape of the journal_entries table.
type JournalEntry struct {
	EntryID          string          `db:"entry_id"`
	EntryNumber      int64           `db:"entry_number"`
	EntryDate        time.Time       `db:"entry_date"`
	Reference        string          `db:"reference"`
	Description      string          `db:"description"`
	Status           string          `db:"status"`
	OriginalEntryID  *string         `db:"original_entry_id"`
	ReversingEntryID *string         `db:"reversing_entry_id"`
	TotalDebit       decimal.Decimal `db:"total_debit"`
	TotalCredit      decimal.Decimal `db:"total_credit"`
	AuditFields
}

// JournalLine is the row shape of the journal_lines table. EntryNumber and
// EntryDate are populated from a join when lines are listed per ledger.
type JournalLine struct {
	LineID         string          `db:"line_id"`
	EntryID        string          `db:"entry_id"`
	LedgerID       string          `db:"ledger_id"`
	Debit          decimal.Decimal `db:"debit"`
	Credit         decimal.Decimal `db:"credit"`
	Description    string          `db:"description"`
	RunningBalance decimal.Decimal `db:"running_balance"`

	EntryNumber int64     `db:"entry_number"`
	EntryDate   time.Time `db:"entry_date"`
}
