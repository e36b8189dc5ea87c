package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
	"github.com/fincore-erp/gl_budget_engine/internal/models"
	"github.com/fincore-erp/gl_budget_engine/internal/utils/mapping"
)

// PgxBudgetRepository persists budgets. Every increase of actual_spent is
// mirrored into budget_spend_history, which feeds the forecasting actuals
// series.
type PgxBudgetRepository struct {
	BaseRepository
}

// newPgxBudgetRepository creates a new repository for budget data.
func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepositoryWithTx {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxBudgetRepository implements portsrepo.BudgetRepositoryWithTx
var _ portsrepo.BudgetRepositoryWithTx = (*PgxBudgetRepository)(nil)

const budgetColumns = `budget_id, name, fiscal_year, department_id, project_id, kind, status, currency_code, total_budget, actual_spent, remaining, utilization, categories, created_at, created_by, last_updated_at, last_updated_by`

func scanBudget(row pgx.Row) (models.Budget, error) {
	var m models.Budget
	err := row.Scan(
		&m.BudgetID,
		&m.Name,
		&m.FiscalYear,
		&m.DepartmentID,
		&m.ProjectID,
		&m.Kind,
		&m.Status,
		&m.CurrencyCode,
		&m.TotalBudget,
		&m.ActualSpent,
		&m.Remaining,
		&m.Utilization,
		&m.Categories,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveBudget inserts a new budget.
func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	m, err := mapping.ToModelBudget(budget)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err = r.Pool.Exec(ctx, query,
		m.BudgetID, m.Name, m.FiscalYear, m.DepartmentID, m.ProjectID, m.Kind, m.Status,
		m.CurrencyCode, m.TotalBudget, m.ActualSpent, m.Remaining, m.Utilization, m.Categories,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: budget %s already exists", apperrors.ErrDuplicate, m.BudgetID)
		}
		return fmt.Errorf("failed to save budget %s: %w", m.BudgetID, err)
	}
	return nil
}

// FindBudgetByID retrieves a budget by its ID.
func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE budget_id = $1;`
	m, err := scanBudget(r.Pool.QueryRow(ctx, query, budgetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	budget, err := mapping.ToDomainBudget(m)
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// ListBudgets retrieves a paginated list of budgets, optionally filtered by
// fiscal year.
func (r *PgxBudgetRepository) ListBudgets(ctx context.Context, fiscalYear *int, limit int, offset int) ([]domain.Budget, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + budgetColumns + ` FROM budgets`
	args := []any{}
	if fiscalYear != nil {
		args = append(args, *fiscalYear)
		query += fmt.Sprintf(` WHERE fiscal_year = $%d`, len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY fiscal_year DESC, name LIMIT $%d OFFSET $%d;`, len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		m, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		budget, err := mapping.ToDomainBudget(m)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget rows: %w", err)
	}
	return budgets, nil
}

// ListBudgetIDs retrieves the IDs of all budgets in the given statuses.
func (r *PgxBudgetRepository) ListBudgetIDs(ctx context.Context, statuses []domain.BudgetStatus) ([]string, error) {
	if len(statuses) == 0 {
		return []string{}, nil
	}
	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	rows, err := r.Pool.Query(ctx, `SELECT budget_id FROM budgets WHERE status = ANY($1) ORDER BY budget_id;`, statusStrings)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget IDs: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan budget ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget ID rows: %w", err)
	}
	return ids, nil
}

// UpdateBudget writes a budget back, and records any increase of actual_spent
// in budget_spend_history. The previous spend is read under a row lock so the
// delta is computed against a stable value.
func (r *PgxBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	m, err := mapping.ToModelBudget(budget)
	if err != nil {
		return err
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil {
			slog.ErrorContext(ctx, "Failed to rollback budget update transaction", "budget_id", m.BudgetID, "error", rbErr)
		}
	}()

	var previousSpent decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT actual_spent FROM budgets WHERE budget_id = $1 FOR UPDATE;`, m.BudgetID).Scan(&previousSpent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock budget %s for update: %w", m.BudgetID, err)
	}

	if err := updateBudgetRow(ctx, tx, m); err != nil {
		return err
	}

	if delta := m.ActualSpent.Sub(previousSpent); delta.IsPositive() {
		_, err = tx.Exec(ctx, `
			INSERT INTO budget_spend_history (history_id, budget_id, amount, occurred_at, recorded_by)
			VALUES ($1, $2, $3, $4, $5);
		`, uuid.NewString(), m.BudgetID, delta, m.LastUpdatedAt, m.LastUpdatedBy)
		if err != nil {
			return fmt.Errorf("failed to record spend history for budget %s: %w", m.BudgetID, err)
		}
	}

	return r.Commit(ctx, tx)
}

func updateBudgetRow(ctx context.Context, tx pgx.Tx, m models.Budget) error {
	query := `
		UPDATE budgets
		SET name = $2, status = $3, total_budget = $4, actual_spent = $5, remaining = $6,
			utilization = $7, categories = $8, last_updated_at = $9, last_updated_by = $10
		WHERE budget_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.BudgetID, m.Name, m.Status, m.TotalBudget, m.ActualSpent, m.Remaining,
		m.Utilization, m.Categories, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget %s: %w", m.BudgetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindBudgetsByIDsForUpdate retrieves budgets by IDs and locks the rows for
// update. Rows are locked in ID order so concurrent transfers touching the
// same budgets cannot deadlock. Must be called within a transaction.
func (r *PgxBudgetRepository) FindBudgetsByIDsForUpdate(ctx context.Context, tx pgx.Tx, budgetIDs []string) (map[string]domain.Budget, error) {
	if len(budgetIDs) == 0 {
		return map[string]domain.Budget{}, nil
	}

	sorted := make([]string, len(budgetIDs))
	copy(sorted, budgetIDs)
	sort.Strings(sorted)

	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE budget_id = ANY($1)
		ORDER BY budget_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets for update: %w", err)
	}
	defer rows.Close()

	budgets := make(map[string]domain.Budget)
	for rows.Next() {
		m, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked budget row: %w", err)
		}
		budget, err := mapping.ToDomainBudget(m)
		if err != nil {
			return nil, err
		}
		budgets[m.BudgetID] = budget
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked budget rows: %w", err)
	}

	if len(budgets) != len(sorted) {
		missing := []string{}
		for _, id := range sorted {
			if _, found := budgets[id]; !found {
				missing = append(missing, id)
			}
		}
		slog.WarnContext(ctx, "Some budgets requested for update lock were not found", "missing_budgets", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested budgets, missing: %v", apperrors.ErrNotFound, missing)
	}

	return budgets, nil
}

// UpdateBudgetsInTx writes multiple budgets within a given transaction. Used
// by transfer approval, which moves total_budget between budgets and never
// touches actual_spent, so no spend history is written here.
func (r *PgxBudgetRepository) UpdateBudgetsInTx(ctx context.Context, tx pgx.Tx, budgets []domain.Budget) error {
	for _, budget := range budgets {
		m, err := mapping.ToModelBudget(budget)
		if err != nil {
			return err
		}
		if err := updateBudgetRow(ctx, tx, m); err != nil {
			return err
		}
	}
	return nil
}
