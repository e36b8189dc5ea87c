package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
	"github.com/fincore-erp/gl_budget_engine/internal/models"
	"github.com/fincore-erp/gl_budget_engine/internal/utils/mapping"
)

// PgxTransferRepository persists budget transfer requests.
type PgxTransferRepository struct {
	BaseRepository
}

// newPgxTransferRepository creates a new repository for budget transfers.
func newPgxTransferRepository(pool *pgxpool.Pool) portsrepo.TransferRepositoryFacade {
	return &PgxTransferRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTransferRepository implements portsrepo.TransferRepositoryFacade
var _ portsrepo.TransferRepositoryFacade = (*PgxTransferRepository)(nil)

const transferColumns = `transfer_id, transfer_number, from_budget_id, to_budget_id, amount, fiscal_year, reason, status, requested_by, decided_by, decided_at, rejection_reason, created_at, created_by, last_updated_at, last_updated_by`

func scanTransfer(row pgx.Row) (models.BudgetTransfer, error) {
	var m models.BudgetTransfer
	err := row.Scan(
		&m.TransferID,
		&m.TransferNumber,
		&m.FromBudgetID,
		&m.ToBudgetID,
		&m.Amount,
		&m.FiscalYear,
		&m.Reason,
		&m.Status,
		&m.RequestedBy,
		&m.DecidedBy,
		&m.DecidedAt,
		&m.RejectionReason,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveTransfer persists a new transfer request and returns its assigned
// transfer number. The number is drawn from a per-fiscal-year counter inside
// the insert transaction, so numbering is gapless per year.
func (r *PgxTransferRepository) SaveTransfer(ctx context.Context, transfer domain.BudgetTransfer) (string, error) {
	m := mapping.ToModelTransfer(transfer)

	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil {
			slog.ErrorContext(ctx, "Failed to rollback transfer save transaction", "transfer_id", m.TransferID, "error", rbErr)
		}
	}()

	var seq int64
	err = tx.QueryRow(ctx, `
		INSERT INTO budget_transfer_sequences (fiscal_year, last_number)
		VALUES ($1, 1)
		ON CONFLICT (fiscal_year)
		DO UPDATE SET last_number = budget_transfer_sequences.last_number + 1
		RETURNING last_number;
	`, m.FiscalYear).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("failed to assign transfer number for fiscal year %d: %w", m.FiscalYear, err)
	}
	m.TransferNumber = fmt.Sprintf("BT-%d-%05d", m.FiscalYear, seq)

	query := `
		INSERT INTO budget_transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, query,
		m.TransferID, m.TransferNumber, m.FromBudgetID, m.ToBudgetID, m.Amount, m.FiscalYear,
		m.Reason, m.Status, m.RequestedBy, m.DecidedBy, m.DecidedAt, m.RejectionReason,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return "", fmt.Errorf("%w: transfer %s already exists", apperrors.ErrDuplicate, m.TransferID)
		}
		return "", fmt.Errorf("failed to save transfer %s: %w", m.TransferID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return "", err
	}
	return m.TransferNumber, nil
}

// FindTransferByID retrieves a transfer by its ID.
func (r *PgxTransferRepository) FindTransferByID(ctx context.Context, transferID string) (*domain.BudgetTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM budget_transfers WHERE transfer_id = $1;`
	m, err := scanTransfer(r.Pool.QueryRow(ctx, query, transferID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transfer %s: %w", transferID, err)
	}
	transfer := mapping.ToDomainTransfer(m)
	return &transfer, nil
}

// ListTransfersByBudgetID retrieves transfers where the budget is the source
// or the destination, newest first.
func (r *PgxTransferRepository) ListTransfersByBudgetID(ctx context.Context, budgetID string, limit int, offset int) ([]domain.BudgetTransfer, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + transferColumns + `
		FROM budget_transfers
		WHERE from_budget_id = $1 OR to_budget_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, budgetID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers for budget %s: %w", budgetID, err)
	}
	defer rows.Close()

	transfers := []domain.BudgetTransfer{}
	for rows.Next() {
		m, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer row: %w", err)
		}
		transfers = append(transfers, mapping.ToDomainTransfer(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer rows: %w", err)
	}
	return transfers, nil
}

const updateTransferQuery = `
	UPDATE budget_transfers
	SET status = $2, decided_by = $3, decided_at = $4, rejection_reason = $5, last_updated_at = $6, last_updated_by = $7
	WHERE transfer_id = $1;
`

// UpdateTransferInTx writes a transfer's decision fields within a given
// transaction.
func (r *PgxTransferRepository) UpdateTransferInTx(ctx context.Context, tx pgx.Tx, transfer domain.BudgetTransfer) error {
	m := mapping.ToModelTransfer(transfer)
	cmdTag, err := tx.Exec(ctx, updateTransferQuery,
		m.TransferID, m.Status, m.DecidedBy, m.DecidedAt, m.RejectionReason, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update transfer %s: %w", m.TransferID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateTransfer writes a transfer's decision fields outside any caller
// transaction.
func (r *PgxTransferRepository) UpdateTransfer(ctx context.Context, transfer domain.BudgetTransfer) error {
	m := mapping.ToModelTransfer(transfer)
	cmdTag, err := r.Pool.Exec(ctx, updateTransferQuery,
		m.TransferID, m.Status, m.DecidedBy, m.DecidedAt, m.RejectionReason, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update transfer %s: %w", m.TransferID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
