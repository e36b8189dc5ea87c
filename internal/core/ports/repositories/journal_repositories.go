package repositories

import (
	"context"
	"time"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryReader defines read operations for journal entries
type EntryReader interface {
	// FindEntryByID retrieves a specific journal entry with its lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of journal entries using
	// token-based pagination. It returns the entries, a token for the next
	// page, and an error.
	ListEntries(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error)
}

// EntryWriter defines write operations for journal entries
type EntryWriter interface {
	// SaveEntry persists an entry and its lines, updating ledger balances
	// within one database transaction. The entry number is drawn from the
	// entry number sequence inside the same transaction.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, balanceChanges map[string]decimal.Decimal) (int64, error)

	// UpdateEntryStatusAndLinks updates the status and reversal linkage
	// (original/reversing IDs) of an entry.
	UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.JournalStatus, reversingEntryID *string, originalEntryID *string, userID string, now time.Time) error
}

// LineReader defines read operations for journal lines
type LineReader interface {
	// FindLinesByEntryID retrieves all lines of a single entry.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// FindLinesByEntryIDs retrieves lines for multiple entries, grouped by
	// entry ID.
	FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error)

	// ListLinesByLedgerID retrieves a paginated list of lines for a specific
	// ledger using token-based pagination.
	ListLinesByLedgerID(ctx context.Context, ledgerID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error)

	// FindLinesByLedgerIDUpTo retrieves all lines for a ledger posted at or
	// before a cutoff date, in entry-number order. Used for as-of balances and
	// balance replay.
	FindLinesByLedgerIDUpTo(ctx context.Context, ledgerID string, asOf time.Time) ([]domain.JournalLine, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
// This is a facade for clients that need access to all operations
type JournalRepositoryFacade interface {
	EntryReader
	EntryWriter
	LineReader
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
