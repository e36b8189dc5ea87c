package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
	"github.com/fincore-erp/gl_budget_engine/internal/models"
	"github.com/fincore-erp/gl_budget_engine/internal/utils/mapping"
	"github.com/fincore-erp/gl_budget_engine/internal/utils/pagination"
)

// PgxJournalRepository persists journal entries and lines. Posting an entry,
// stamping running balances on its lines and moving ledger balances all happen
// in one transaction, so the ledger lock support of the chart repository is
// injected here.
type PgxJournalRepository struct {
	BaseRepository
	chartRepo portsrepo.LedgerTransactionSupport
}

// newPgxJournalRepository creates a new repository for journal data.
func newPgxJournalRepository(pool *pgxpool.Pool, chartRepo portsrepo.LedgerTransactionSupport) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		chartRepo:      chartRepo,
	}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryWithTx
var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, entry_number, entry_date, reference, description, status, original_entry_id, reversing_entry_id, total_debit, total_credit, created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.EntryNumber,
		&m.EntryDate,
		&m.Reference,
		&m.Description,
		&m.Status,
		&m.OriginalEntryID,
		&m.ReversingEntryID,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

const lineColumns = `line_id, entry_id, ledger_id, debit, credit, description, running_balance`

func scanLine(row pgx.Row) (models.JournalLine, error) {
	var m models.JournalLine
	err := row.Scan(
		&m.LineID,
		&m.EntryID,
		&m.LedgerID,
		&m.Debit,
		&m.Credit,
		&m.Description,
		&m.RunningBalance,
	)
	return m, err
}

// assertLedgersActive rejects posting against a deactivated ledger. The
// service validates activity before calling in, but a ledger can be
// deactivated between that read and the row lock, so the locked rows are
// checked again as the authoritative state.
func assertLedgersActive(lockedLedgers map[string]domain.AccountLedger, ledgerIDs []string) error {
	for _, id := range ledgerIDs {
		if ledger, ok := lockedLedgers[id]; ok && !ledger.IsActive {
			return &apperrors.InactiveAccountError{LedgerID: id}
		}
	}
	return nil
}

// SaveEntry persists a journal entry with its lines and applies the given
// balance deltas to the affected ledgers, all within one transaction. Ledger
// rows are locked first, the entry number is drawn from the database sequence,
// and each line gets its running balance stamped from the locked state. The
// assigned entry number is returned.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, balanceChanges map[string]decimal.Decimal) (int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil {
			slog.ErrorContext(ctx, "Failed to rollback journal entry transaction", "entry_id", entry.EntryID, "error", rbErr)
		}
	}()

	ledgerIDs := make([]string, 0, len(balanceChanges))
	for id := range balanceChanges {
		ledgerIDs = append(ledgerIDs, id)
	}
	sort.Strings(ledgerIDs)

	lockedLedgers, err := r.chartRepo.FindLedgersByIDsForUpdate(ctx, tx, ledgerIDs)
	if err != nil {
		return 0, err
	}

	if err := assertLedgersActive(lockedLedgers, ledgerIDs); err != nil {
		return 0, err
	}

	var entryNumber int64
	if err := tx.QueryRow(ctx, `SELECT nextval('journal_entry_number_seq');`).Scan(&entryNumber); err != nil {
		return 0, fmt.Errorf("failed to assign entry number: %w", err)
	}

	m := mapping.ToModelEntry(entry)
	m.EntryNumber = entryNumber

	insertEntry := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = tx.Exec(ctx, insertEntry,
		m.EntryID, m.EntryNumber, m.EntryDate, m.Reference, m.Description, m.Status,
		m.OriginalEntryID, m.ReversingEntryID, m.TotalDebit, m.TotalCredit,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, fmt.Errorf("%w: journal entry %s already exists", apperrors.ErrDuplicate, m.EntryID)
		}
		return 0, fmt.Errorf("failed to insert journal entry %s: %w", m.EntryID, err)
	}

	// Running balances start from the locked ledger state and advance line by
	// line in the order the lines appear on the entry.
	running := make(map[string]decimal.Decimal, len(lockedLedgers))
	for id, ledger := range lockedLedgers {
		running[id] = ledger.CurrentBalance
	}

	insertLine := `
		INSERT INTO journal_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	batch := &pgx.Batch{}
	for _, line := range entry.Lines {
		ledger, found := lockedLedgers[line.LedgerID]
		if !found {
			return 0, fmt.Errorf("%w: line %s references ledger %s outside the locked set", apperrors.ErrConsistency, line.LineID, line.LedgerID)
		}
		next := running[line.LedgerID].Add(line.SignedAmount(ledger.BalanceType))
		running[line.LedgerID] = next

		lm := mapping.ToModelLine(line)
		lm.EntryID = m.EntryID
		lm.RunningBalance = next
		batch.Queue(insertLine, lm.LineID, lm.EntryID, lm.LedgerID, lm.Debit, lm.Credit, lm.Description, lm.RunningBalance)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = fmt.Errorf("failed to insert journal line for entry %s: %w", m.EntryID, err)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close journal line batch: %w", err)
	}
	if batchErr != nil {
		return 0, batchErr
	}

	if err := r.chartRepo.UpdateLedgerBalancesInTx(ctx, tx, balanceChanges, entry.CreatedBy, entry.CreatedAt); err != nil {
		return 0, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return entryNumber, nil
}

// FindEntryByID retrieves a journal entry together with its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	m, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}

	lines, err := r.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	entry := mapping.ToDomainEntry(m)
	entry.Lines = lines
	return &entry, nil
}

// ListEntries retrieves a page of journal entries, newest first, using
// token-based pagination on (entry_date, created_at). When includeReversals is
// false, reversed entries and the entries that reverse them are filtered out.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	args := []any{}
	conditions := []string{}

	if !includeReversals {
		conditions = append(conditions, `status != 'REVERSED' AND reversing_entry_id IS NULL AND original_entry_id IS NULL`)
	}

	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		args = append(args, entryDate, createdAt)
		conditions = append(conditions, fmt.Sprintf(`(entry_date, created_at) < ($%d, $%d)`, len(args)-1, len(args)))
	}

	for i, cond := range conditions {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}
	args = append(args, fetchLimit)
	query += fmt.Sprintf(` ORDER BY entry_date DESC, created_at DESC LIMIT $%d;`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	entryModels := []models.JournalEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		entryModels = append(entryModels, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating journal entry rows: %w", err)
	}

	var newNextToken *string
	if len(entryModels) == fetchLimit {
		entryModels = entryModels[:limit]
		last := entryModels[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		newNextToken = &token
	}

	entries := make([]domain.JournalEntry, len(entryModels))
	for i, m := range entryModels {
		entries[i] = mapping.ToDomainEntry(m)
	}
	return entries, newNextToken, nil
}

// UpdateEntryStatusAndLinks updates the status and reversal linkage of an
// entry. Nothing else on a posted entry is mutable.
func (r *PgxJournalRepository) UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.JournalStatus, reversingEntryID *string, originalEntryID *string, userID string, now time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $2, reversing_entry_id = $3, original_entry_id = $4, last_updated_at = $5, last_updated_by = $6
		WHERE entry_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, entryID, string(status), reversingEntryID, originalEntryID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update status of journal entry %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindLinesByEntryID retrieves all lines of one entry, in line order.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE entry_id = $1 ORDER BY line_id;`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := []models.JournalLine{}
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal line row: %w", err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal line rows: %w", err)
	}
	return mapping.ToDomainLineSlice(lines), nil
}

// FindLinesByEntryIDs retrieves lines for multiple entries in one query,
// grouped by entry ID. Entries without lines map to empty slices.
func (r *PgxJournalRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error) {
	result := make(map[string][]domain.JournalLine, len(entryIDs))
	for _, id := range entryIDs {
		result[id] = []domain.JournalLine{}
	}
	if len(entryIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE entry_id = ANY($1) ORDER BY entry_id, line_id;`
	rows, err := r.Pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal line row during batch fetch: %w", err)
		}
		result[m.EntryID] = append(result[m.EntryID], mapping.ToDomainLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal line rows during batch fetch: %w", err)
	}
	return result, nil
}

// ListLinesByLedgerID retrieves a page of lines for one ledger, newest entry
// first, using token-based pagination on (entry_number, line_id).
func (r *PgxJournalRepository) ListLinesByLedgerID(ctx context.Context, ledgerID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `
		SELECT l.line_id, l.entry_id, l.ledger_id, l.debit, l.credit, l.description, l.running_balance, e.entry_number
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE l.ledger_id = $1
	`
	args := []any{ledgerID}

	if nextToken != nil && *nextToken != "" {
		fields, err := pagination.DecodeMultiFieldToken(*nextToken)
		if err != nil || len(fields) != 2 {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		entryNumber, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		args = append(args, entryNumber, fields[1])
		query += fmt.Sprintf(` AND (e.entry_number, l.line_id) < ($%d, $%d)`, len(args)-1, len(args))
	}

	args = append(args, fetchLimit)
	query += fmt.Sprintf(` ORDER BY e.entry_number DESC, l.line_id DESC LIMIT $%d;`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query lines for ledger %s: %w", ledgerID, err)
	}
	defer rows.Close()

	lineModels := []models.JournalLine{}
	for rows.Next() {
		var m models.JournalLine
		if err := rows.Scan(&m.LineID, &m.EntryID, &m.LedgerID, &m.Debit, &m.Credit, &m.Description, &m.RunningBalance, &m.EntryNumber); err != nil {
			return nil, nil, fmt.Errorf("failed to scan ledger line row: %w", err)
		}
		lineModels = append(lineModels, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating ledger line rows: %w", err)
	}

	var newNextToken *string
	if len(lineModels) == fetchLimit {
		lineModels = lineModels[:limit]
		last := lineModels[limit-1]
		token := pagination.EncodeMultiFieldToken(strconv.FormatInt(last.EntryNumber, 10), last.LineID)
		newNextToken = &token
	}

	return mapping.ToDomainLineSlice(lineModels), newNextToken, nil
}

// FindLinesByLedgerIDUpTo retrieves all lines for a ledger whose entry date is
// at or before the cutoff, in entry-number order. Balance replay depends on
// this ordering matching the order the lines were applied in.
func (r *PgxJournalRepository) FindLinesByLedgerIDUpTo(ctx context.Context, ledgerID string, asOf time.Time) ([]domain.JournalLine, error) {
	query := `
		SELECT l.line_id, l.entry_id, l.ledger_id, l.debit, l.credit, l.description, l.running_balance
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE l.ledger_id = $1 AND e.entry_date <= $2
		ORDER BY e.entry_number ASC, l.line_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, ledgerID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical lines for ledger %s: %w", ledgerID, err)
	}
	defer rows.Close()

	lines := []models.JournalLine{}
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan historical line row: %w", err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating historical line rows: %w", err)
	}
	return mapping.ToDomainLineSlice(lines), nil
}
