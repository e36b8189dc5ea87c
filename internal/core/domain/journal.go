package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// JournalEntry is one atomic, balanced financial event. Once posted it is
// immutable; corrections go through a new reversing entry, never an edit.
type JournalEntry struct {
	EntryID     string        `json:"entryID"`
	EntryNumber int64         `json:"entryNumber"` // monotonic, never reused
	EntryDate   time.Time     `json:"entryDate"`
	Reference   string        `json:"reference"`
	Description string        `json:"description"`
	Status      JournalStatus `json:"status"`
	IsPosted    bool          `json:"isPosted"`
	// Reversal linkage: a reversing entry points at its original, and the
	// original records which entry reversed it.
	OriginalEntryID  *string         `json:"originalEntryID,omitempty"`
	ReversingEntryID *string         `json:"reversingEntryID,omitempty"`
	TotalDebit       decimal.Decimal `json:"totalDebit"`
	TotalCredit      decimal.Decimal `json:"totalCredit"`
	Lines            []JournalLine   `json:"lines,omitempty"`
	AuditFields
}

// JournalLine is a single debit or credit against one ledger account.
// Exactly one of Debit/Credit is non-zero.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	LedgerID    string          `json:"ledgerID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	// Balance of the ledger after this line was applied, in entry-number
	// order. Set by the repository at post time.
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// SignedAmount is the line's effect on a ledger of the given nature: positive
// grows the balance, negative shrinks it.
func (l JournalLine) SignedAmount(nature BalanceType) decimal.Decimal {
	if nature == DebitBalance {
		return l.Debit.Sub(l.Credit)
	}
	return l.Credit.Sub(l.Debit)
}
