package services

import (
	"context"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
)

// EntryReaderSvc defines read operations for journal entries
type EntryReaderSvc interface {
	// GetEntryByID retrieves a specific journal entry with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of journal entries.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// ListLinesByLedger retrieves a paginated list of lines for one ledger.
	ListLinesByLedger(ctx context.Context, ledgerID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error)
}

// EntryWriterSvc defines write operations for journal entries
type EntryWriterSvc interface {
	// PostEntry validates and persists a new journal entry, moving ledger
	// balances atomically.
	PostEntry(ctx context.Context, req dto.PostEntryRequest, userID string) (*domain.JournalEntry, error)

	// ReverseEntry creates a new entry with the debit and credit sides of the
	// original swapped, and links the two.
	ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	EntryReaderSvc
	EntryWriterSvc
}
