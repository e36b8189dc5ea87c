package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/cache"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
	"github.com/fincore-erp/gl_budget_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

var (
	ErrEntryMinLines       = errors.New("journal entry must have at least two lines")
	ErrEntryMinLedgers     = errors.New("journal entry must affect at least two different ledger accounts")
	ErrLedgerNotFound      = errors.New("ledger account not found")
	ErrCurrencyMismatch    = errors.New("all ledger accounts of an entry must share one currency")
	ErrEntryNotPosted      = errors.New("journal entry is not in posted status")
	ErrDescriptionMissing  = errors.New("journal entry description is required")
	ErrEntryDateInFuture   = errors.New("journal entry date must not be in the future")
)

const reversalDescriptionPrefix = "Reversal of: "

// journalService provides journal posting, reversal and line queries.
type journalService struct {
	BaseService
	chartRepo    portsrepo.ChartRepositoryFacade
	journalRepo  portsrepo.JournalRepositoryFacade
	balanceCache cache.Cache[string, decimal.Decimal]
}

// NewJournalService creates a new JournalService. The balance cache is
// invalidated for every ledger an entry touches so balance reads never trail
// a posting.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, chartRepo portsrepo.ChartRepositoryFacade, balanceCache cache.Cache[string, decimal.Decimal]) portssvc.JournalSvcFacade {
	if balanceCache == nil {
		balanceCache = cache.NoopCache[string, decimal.Decimal]{}
	}
	return &journalService{
		chartRepo:    chartRepo,
		journalRepo:  journalRepo,
		balanceCache: balanceCache,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// buildLines converts request lines to domain lines, rounding all amounts to
// money precision.
func buildLines(entryID string, inputs []dto.JournalLineInput) []domain.JournalLine {
	lines := make([]domain.JournalLine, len(inputs))
	for i, in := range inputs {
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			LedgerID:    in.LedgerID,
			Debit:       accounting.Round(in.Debit),
			Credit:      accounting.Round(in.Credit),
			Description: in.Description,
		}
	}
	return lines
}

// validateLedgers fetches all referenced ledgers and enforces existence,
// active status and a single shared currency. Returns the ledgers keyed by ID.
func (s *journalService) validateLedgers(ctx context.Context, lines []domain.JournalLine) (map[string]domain.AccountLedger, error) {
	ledgerIDs := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.LedgerID]; !ok {
			seen[line.LedgerID] = struct{}{}
			ledgerIDs = append(ledgerIDs, line.LedgerID)
		}
	}
	if len(ledgerIDs) < 2 {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrEntryMinLedgers)
	}

	ledgers, err := s.chartRepo.FindLedgersByIDs(ctx, ledgerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ledger accounts: %w", err)
	}

	currency := ""
	for _, id := range ledgerIDs {
		ledger, found := ledgers[id]
		if !found {
			return nil, fmt.Errorf("%w: %w: %s", apperrors.ErrNotFound, ErrLedgerNotFound, id)
		}
		if !ledger.IsActive {
			return nil, &apperrors.InactiveAccountError{LedgerID: id}
		}
		if currency == "" {
			currency = ledger.CurrencyCode
		} else if ledger.CurrencyCode != currency {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrCurrencyMismatch)
		}
	}
	return ledgers, nil
}

// balanceChanges nets each line's signed effect per ledger.
func balanceChanges(lines []domain.JournalLine, ledgers map[string]domain.AccountLedger) map[string]decimal.Decimal {
	changes := make(map[string]decimal.Decimal, len(ledgers))
	for _, line := range lines {
		nature := ledgers[line.LedgerID].BalanceType
		changes[line.LedgerID] = changes[line.LedgerID].Add(line.SignedAmount(nature))
	}
	return changes
}

// PostEntry validates and persists a new journal entry, moving ledger
// balances atomically with the insert.
func (s *journalService) PostEntry(ctx context.Context, req dto.PostEntryRequest, userID string) (*domain.JournalEntry, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrDescriptionMissing)
	}
	if len(req.Lines) < 2 {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrEntryMinLines)
	}

	now := time.Now().UTC()
	if req.EntryDate.After(now) {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrEntryDateInFuture)
	}

	entryID := uuid.NewString()
	lines := buildLines(entryID, req.Lines)

	totalDebit, totalCredit, err := accounting.ValidateEntryBalance(lines)
	if err != nil {
		if !totalDebit.Equal(totalCredit) {
			return nil, &apperrors.UnbalancedEntryError{Delta: totalDebit.Sub(totalCredit)}
		}
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	ledgers, err := s.validateLedgers(ctx, lines)
	if err != nil {
		return nil, err
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   req.EntryDate,
		Reference:   req.Reference,
		Description: req.Description,
		Status:      domain.Posted,
		IsPosted:    true,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Lines:       lines,
		AuditFields: domain.NewAuditFields(userID, now),
	}

	changes := balanceChanges(lines, ledgers)
	entryNumber, err := s.journalRepo.SaveEntry(ctx, entry, changes)
	if err != nil {
		s.LogError(ctx, err, "Failed to save journal entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}
	entry.EntryNumber = entryNumber

	for ledgerID := range changes {
		s.balanceCache.Delete(ledgerID)
	}

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", entryID),
		slog.Int64("entry_number", entryNumber),
		slog.String("total", totalDebit.String()),
	)
	return &entry, nil
}

// GetEntryByID retrieves a specific journal entry with its lines.
func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}

	if len(entry.Lines) == 0 {
		lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
		if err != nil {
			s.LogError(ctx, err, "Failed to fetch entry lines", slog.String("entry_id", entryID))
			return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", entryID, apperrors.ErrInternal)
		}
		entry.Lines = lines
	}
	return entry, nil
}

// ListEntries retrieves a paginated list of journal entries.
func (s *journalService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, limit, params.NextToken, params.IncludeReversals)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries")
		return nil, fmt.Errorf("failed to retrieve journal entries: %w", err)
	}

	responses := make([]dto.EntryResponse, len(entries))
	for i := range entries {
		responses[i] = dto.ToEntryResponse(&entries[i])
	}

	return &dto.ListEntriesResponse{
		Entries:   responses,
		NextToken: nextToken,
	}, nil
}

// ListLinesByLedger retrieves a paginated list of lines for one ledger.
func (s *journalService) ListLinesByLedger(ctx context.Context, ledgerID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	if _, err := s.chartRepo.FindLedgerByID(ctx, ledgerID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	lines, nextToken, err := s.journalRepo.ListLinesByLedgerID(ctx, ledgerID, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger lines", slog.String("ledger_id", ledgerID))
		return nil, fmt.Errorf("failed to retrieve lines: %w", err)
	}

	responses := make([]dto.JournalLineResponse, len(lines))
	for i := range lines {
		responses[i] = dto.ToJournalLineResponse(&lines[i])
	}

	return &dto.ListLinesResponse{
		Lines:     responses,
		NextToken: nextToken,
	}, nil
}

// ReverseEntry creates a new entry with the debit and credit sides of the
// original swapped, links the two, and marks the original reversed. The
// original's amounts and lines are never edited.
func (s *journalService) ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	original, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to fetch entry for reversal", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to retrieve entry: %w", err)
	}

	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: %w: status is %s", apperrors.ErrWorkflow, ErrEntryNotPosted, original.Status)
	}

	originalLines := original.Lines
	if len(originalLines) == 0 {
		originalLines, err = s.journalRepo.FindLinesByEntryID(ctx, entryID)
		if err != nil {
			s.LogError(ctx, err, "Failed to fetch lines for reversal", slog.String("entry_id", entryID))
			return nil, fmt.Errorf("failed to retrieve original lines: %w", err)
		}
	}

	ledgers, err := s.validateLedgers(ctx, originalLines)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	newEntryID := uuid.NewString()

	reversingEntry := domain.JournalEntry{
		EntryID:     newEntryID,
		EntryDate:   original.EntryDate,
		Reference:   original.Reference,
		Status:      domain.Posted,
		IsPosted:    true,
		TotalDebit:  original.TotalCredit,
		TotalCredit: original.TotalDebit,
		AuditFields: domain.NewAuditFields(userID, now),
	}

	// Every reversing entry links back to the entry it cancels, even when that
	// entry is itself a reversal. Reversing a reversal restores the original
	// wording instead of stacking prefixes.
	reversingEntry.OriginalEntryID = &original.EntryID
	if original.OriginalEntryID != nil {
		reversingEntry.Description = strings.TrimPrefix(original.Description, reversalDescriptionPrefix)
	} else {
		reversingEntry.Description = reversalDescriptionPrefix + original.Description
	}

	reversedLines := make([]domain.JournalLine, len(originalLines))
	for i, line := range originalLines {
		reversedLines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     newEntryID,
			LedgerID:    line.LedgerID,
			Debit:       line.Credit,
			Credit:      line.Debit,
			Description: line.Description,
		}
	}
	reversingEntry.Lines = reversedLines

	changes := balanceChanges(reversedLines, ledgers)
	entryNumber, err := s.journalRepo.SaveEntry(ctx, reversingEntry, changes)
	if err != nil {
		s.LogError(ctx, err, "Failed to save reversing entry", slog.String("original_entry_id", entryID))
		return nil, fmt.Errorf("failed to save reversing entry: %w", err)
	}
	reversingEntry.EntryNumber = entryNumber

	// The reversed entry is terminal: status REVERSED and a forward link to
	// the entry that cancelled it, so it can never be reversed again.
	if err := s.journalRepo.UpdateEntryStatusAndLinks(ctx, original.EntryID, domain.Reversed, &newEntryID, original.OriginalEntryID, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to mark original entry reversed",
			slog.String("original_entry_id", original.EntryID),
			slog.String("reversing_entry_id", newEntryID),
		)
		return nil, fmt.Errorf("failed to update original entry status: %w", err)
	}

	for ledgerID := range changes {
		s.balanceCache.Delete(ledgerID)
	}

	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("original_entry_id", entryID),
		slog.String("reversing_entry_id", newEntryID),
	)
	return &reversingEntry, nil
}
