package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
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
)

const pgUniqueViolation = "23505"

// PgxChartRepository persists the three-level chart of accounts.
type PgxChartRepository struct {
	BaseRepository
}

// newPgxChartRepository creates a new repository for chart-of-accounts data.
func newPgxChartRepository(pool *pgxpool.Pool) portsrepo.ChartRepositoryWithTx {
	return &PgxChartRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxChartRepository implements portsrepo.ChartRepositoryWithTx
var _ portsrepo.ChartRepositoryWithTx = (*PgxChartRepository)(nil)

const groupColumns = `group_id, code, name, group_type, description, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanGroup(row pgx.Row) (models.AccountGroup, error) {
	var m models.AccountGroup
	err := row.Scan(
		&m.GroupID,
		&m.Code,
		&m.Name,
		&m.GroupType,
		&m.Description,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveGroup inserts a new account group.
func (r *PgxChartRepository) SaveGroup(ctx context.Context, group domain.AccountGroup) error {
	m := mapping.ToModelGroup(group)
	query := `
		INSERT INTO account_groups (` + groupColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.GroupID, m.Code, m.Name, m.GroupType, m.Description, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: group code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to save group %s: %w", m.GroupID, err)
	}
	return nil
}

// FindGroupByID retrieves an account group by its ID.
func (r *PgxChartRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.AccountGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM account_groups WHERE group_id = $1;`
	m, err := scanGroup(r.Pool.QueryRow(ctx, query, groupID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find group by ID %s: %w", groupID, err)
	}
	group := mapping.ToDomainGroup(m)
	return &group, nil
}

// FindGroupByCode retrieves an account group by its code.
func (r *PgxChartRepository) FindGroupByCode(ctx context.Context, code string) (*domain.AccountGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM account_groups WHERE code = $1;`
	m, err := scanGroup(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find group by code %s: %w", code, err)
	}
	group := mapping.ToDomainGroup(m)
	return &group, nil
}

// ListGroups retrieves all account groups, optionally including inactive ones.
func (r *PgxChartRepository) ListGroups(ctx context.Context, includeInactive bool) ([]domain.AccountGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM account_groups`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY code;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := []models.AccountGroup{}
	for rows.Next() {
		m, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}
	return mapping.ToDomainGroupSlice(groups), nil
}

// UpdateGroup updates a group's mutable details.
func (r *PgxChartRepository) UpdateGroup(ctx context.Context, group domain.AccountGroup) error {
	m := mapping.ToModelGroup(group)
	query := `
		UPDATE account_groups
		SET name = $2, description = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE group_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, m.GroupID, m.Name, m.Description, m.IsActive, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update group %s: %w", m.GroupID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateGroup marks a group as inactive.
func (r *PgxChartRepository) DeactivateGroup(ctx context.Context, groupID string, userID string, now time.Time) error {
	query := `
		UPDATE account_groups
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE group_id = $1 AND is_active = TRUE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, groupID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate group %s: %w", groupID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either missing or already inactive; distinguish for the caller.
		if _, findErr := r.FindGroupByID(ctx, groupID); errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return fmt.Errorf("failed to check group status after deactivation attempt for %s: %w", groupID, findErr)
		}
		return fmt.Errorf("%w: group %s is already inactive", apperrors.ErrValidation, groupID)
	}
	return nil
}

// CountSubGroupsByGroupID counts sub-groups referencing a group.
func (r *PgxChartRepository) CountSubGroupsByGroupID(ctx context.Context, groupID string) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM account_sub_groups WHERE group_id = $1 AND is_active = TRUE;`, groupID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sub-groups for group %s: %w", groupID, err)
	}
	return count, nil
}

const subGroupColumns = `sub_group_id, code, name, group_id, parent_sub_group_id, level, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanSubGroup(row pgx.Row) (models.AccountSubGroup, error) {
	var m models.AccountSubGroup
	err := row.Scan(
		&m.SubGroupID,
		&m.Code,
		&m.Name,
		&m.GroupID,
		&m.ParentSubGroupID,
		&m.Level,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveSubGroup inserts a new sub-group.
func (r *PgxChartRepository) SaveSubGroup(ctx context.Context, subGroup domain.AccountSubGroup) error {
	m := mapping.ToModelSubGroup(subGroup)
	query := `
		INSERT INTO account_sub_groups (` + subGroupColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.SubGroupID, m.Code, m.Name, m.GroupID, m.ParentSubGroupID, m.Level, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: sub-group code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to save sub-group %s: %w", m.SubGroupID, err)
	}
	return nil
}

// FindSubGroupByID retrieves a sub-group by its ID.
func (r *PgxChartRepository) FindSubGroupByID(ctx context.Context, subGroupID string) (*domain.AccountSubGroup, error) {
	query := `SELECT ` + subGroupColumns + ` FROM account_sub_groups WHERE sub_group_id = $1;`
	m, err := scanSubGroup(r.Pool.QueryRow(ctx, query, subGroupID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find sub-group by ID %s: %w", subGroupID, err)
	}
	subGroup := mapping.ToDomainSubGroup(m)
	return &subGroup, nil
}

// FindSubGroupByCode retrieves a sub-group by its code.
func (r *PgxChartRepository) FindSubGroupByCode(ctx context.Context, code string) (*domain.AccountSubGroup, error) {
	query := `SELECT ` + subGroupColumns + ` FROM account_sub_groups WHERE code = $1;`
	m, err := scanSubGroup(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find sub-group by code %s: %w", code, err)
	}
	subGroup := mapping.ToDomainSubGroup(m)
	return &subGroup, nil
}

// ListSubGroupsByGroupID retrieves all sub-groups belonging to a group.
func (r *PgxChartRepository) ListSubGroupsByGroupID(ctx context.Context, groupID string) ([]domain.AccountSubGroup, error) {
	query := `SELECT ` + subGroupColumns + ` FROM account_sub_groups WHERE group_id = $1 ORDER BY level, code;`
	rows, err := r.Pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub-groups for group %s: %w", groupID, err)
	}
	defer rows.Close()

	subGroups := []models.AccountSubGroup{}
	for rows.Next() {
		m, err := scanSubGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sub-group row: %w", err)
		}
		subGroups = append(subGroups, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sub-group rows: %w", err)
	}
	return mapping.ToDomainSubGroupSlice(subGroups), nil
}

// UpdateSubGroup updates a sub-group's mutable details, including its parent
// linkage and derived level.
func (r *PgxChartRepository) UpdateSubGroup(ctx context.Context, subGroup domain.AccountSubGroup) error {
	m := mapping.ToModelSubGroup(subGroup)
	query := `
		UPDATE account_sub_groups
		SET name = $2, parent_sub_group_id = $3, level = $4, is_active = $5, last_updated_at = $6, last_updated_by = $7
		WHERE sub_group_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, m.SubGroupID, m.Name, m.ParentSubGroupID, m.Level, m.IsActive, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update sub-group %s: %w", m.SubGroupID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateSubGroup marks a sub-group as inactive.
func (r *PgxChartRepository) DeactivateSubGroup(ctx context.Context, subGroupID string, userID string, now time.Time) error {
	query := `
		UPDATE account_sub_groups
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE sub_group_id = $1 AND is_active = TRUE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, subGroupID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate sub-group %s: %w", subGroupID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, findErr := r.FindSubGroupByID(ctx, subGroupID); errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return fmt.Errorf("failed to check sub-group status after deactivation attempt for %s: %w", subGroupID, findErr)
		}
		return fmt.Errorf("%w: sub-group %s is already inactive", apperrors.ErrValidation, subGroupID)
	}
	return nil
}

// CountLedgersBySubGroupID counts ledgers referencing a sub-group.
func (r *PgxChartRepository) CountLedgersBySubGroupID(ctx context.Context, subGroupID string) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM account_ledgers WHERE sub_group_id = $1 AND is_active = TRUE;`, subGroupID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count ledgers for sub-group %s: %w", subGroupID, err)
	}
	return count, nil
}

// CountChildSubGroups counts sub-groups nested under a parent sub-group.
func (r *PgxChartRepository) CountChildSubGroups(ctx context.Context, parentSubGroupID string) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM account_sub_groups WHERE parent_sub_group_id = $1 AND is_active = TRUE;`, parentSubGroupID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count child sub-groups for %s: %w", parentSubGroupID, err)
	}
	return count, nil
}

const ledgerColumns = `ledger_id, code, name, sub_group_id, balance_type, opening_balance, current_balance, currency_code, description, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanLedger(row pgx.Row) (models.AccountLedger, error) {
	var m models.AccountLedger
	err := row.Scan(
		&m.LedgerID,
		&m.Code,
		&m.Name,
		&m.SubGroupID,
		&m.BalanceType,
		&m.OpeningBalance,
		&m.CurrentBalance,
		&m.CurrencyCode,
		&m.Description,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveLedger inserts a new ledger account.
func (r *PgxChartRepository) SaveLedger(ctx context.Context, ledger domain.AccountLedger) error {
	m := mapping.ToModelLedger(ledger)
	query := `
		INSERT INTO account_ledgers (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.LedgerID, m.Code, m.Name, m.SubGroupID, m.BalanceType, m.OpeningBalance, m.CurrentBalance,
		m.CurrencyCode, m.Description, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: ledger code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to save ledger %s: %w", m.LedgerID, err)
	}
	return nil
}

// FindLedgerByID retrieves a ledger account by its ID.
func (r *PgxChartRepository) FindLedgerByID(ctx context.Context, ledgerID string) (*domain.AccountLedger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM account_ledgers WHERE ledger_id = $1;`
	m, err := scanLedger(r.Pool.QueryRow(ctx, query, ledgerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ledger by ID %s: %w", ledgerID, err)
	}
	ledger := mapping.ToDomainLedger(m)
	return &ledger, nil
}

// FindLedgerByCode retrieves a ledger account by its code.
func (r *PgxChartRepository) FindLedgerByCode(ctx context.Context, code string) (*domain.AccountLedger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM account_ledgers WHERE code = $1;`
	m, err := scanLedger(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ledger by code %s: %w", code, err)
	}
	ledger := mapping.ToDomainLedger(m)
	return &ledger, nil
}

// FindLedgersByIDs retrieves multiple ledger accounts by their IDs. Missing
// IDs are simply absent from the result map; the caller decides whether that
// is an error.
func (r *PgxChartRepository) FindLedgersByIDs(ctx context.Context, ledgerIDs []string) (map[string]domain.AccountLedger, error) {
	if len(ledgerIDs) == 0 {
		return map[string]domain.AccountLedger{}, nil
	}

	query := `SELECT ` + ledgerColumns + ` FROM account_ledgers WHERE ledger_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, ledgerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledgers by IDs: %w", err)
	}
	defer rows.Close()

	ledgers := make(map[string]domain.AccountLedger)
	for rows.Next() {
		m, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger row during batch fetch: %w", err)
		}
		ledgers[m.LedgerID] = mapping.ToDomainLedger(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger rows during batch fetch: %w", err)
	}
	return ledgers, nil
}

// ListLedgers retrieves a paginated list of active ledger accounts.
func (r *PgxChartRepository) ListLedgers(ctx context.Context, limit int, offset int) ([]domain.AccountLedger, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + ledgerColumns + `
		FROM account_ledgers
		WHERE is_active = TRUE
		ORDER BY code
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledgers: %w", err)
	}
	defer rows.Close()

	ledgers := []models.AccountLedger{}
	for rows.Next() {
		m, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		ledgers = append(ledgers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger rows: %w", err)
	}
	return mapping.ToDomainLedgerSlice(ledgers), nil
}

// ListLedgersBySubGroupID retrieves all ledgers belonging to a sub-group.
func (r *PgxChartRepository) ListLedgersBySubGroupID(ctx context.Context, subGroupID string) ([]domain.AccountLedger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM account_ledgers WHERE sub_group_id = $1 ORDER BY code;`
	rows, err := r.Pool.Query(ctx, query, subGroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledgers for sub-group %s: %w", subGroupID, err)
	}
	defer rows.Close()

	ledgers := []models.AccountLedger{}
	for rows.Next() {
		m, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger row for sub-group %s: %w", subGroupID, err)
		}
		ledgers = append(ledgers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger rows for sub-group %s: %w", subGroupID, err)
	}
	return mapping.ToDomainLedgerSlice(ledgers), nil
}

// FindLedgerHierarchy resolves the group and sub-group chain of a ledger in
// one query.
func (r *PgxChartRepository) FindLedgerHierarchy(ctx context.Context, ledgerID string) (*domain.LedgerHierarchy, error) {
	query := `
		SELECT
			l.ledger_id, l.code, l.name, l.sub_group_id, l.balance_type, l.opening_balance, l.current_balance,
			l.currency_code, l.description, l.is_active, l.created_at, l.created_by, l.last_updated_at, l.last_updated_by,
			sg.sub_group_id, sg.code, sg.name, sg.group_id, sg.parent_sub_group_id, sg.level, sg.is_active,
			sg.created_at, sg.created_by, sg.last_updated_at, sg.last_updated_by,
			g.group_id, g.code, g.name, g.group_type, g.description, g.is_active,
			g.created_at, g.created_by, g.last_updated_at, g.last_updated_by
		FROM account_ledgers l
		JOIN account_sub_groups sg ON l.sub_group_id = sg.sub_group_id
		JOIN account_groups g ON sg.group_id = g.group_id
		WHERE l.ledger_id = $1;
	`
	var ml models.AccountLedger
	var msg models.AccountSubGroup
	var mg models.AccountGroup

	err := r.Pool.QueryRow(ctx, query, ledgerID).Scan(
		&ml.LedgerID, &ml.Code, &ml.Name, &ml.SubGroupID, &ml.BalanceType, &ml.OpeningBalance, &ml.CurrentBalance,
		&ml.CurrencyCode, &ml.Description, &ml.IsActive, &ml.CreatedAt, &ml.CreatedBy, &ml.LastUpdatedAt, &ml.LastUpdatedBy,
		&msg.SubGroupID, &msg.Code, &msg.Name, &msg.GroupID, &msg.ParentSubGroupID, &msg.Level, &msg.IsActive,
		&msg.CreatedAt, &msg.CreatedBy, &msg.LastUpdatedAt, &msg.LastUpdatedBy,
		&mg.GroupID, &mg.Code, &mg.Name, &mg.GroupType, &mg.Description, &mg.IsActive,
		&mg.CreatedAt, &mg.CreatedBy, &mg.LastUpdatedAt, &mg.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve hierarchy for ledger %s: %w", ledgerID, err)
	}

	return &domain.LedgerHierarchy{
		Group:    mapping.ToDomainGroup(mg),
		SubGroup: mapping.ToDomainSubGroup(msg),
		Ledger:   mapping.ToDomainLedger(ml),
	}, nil
}

// UpdateLedger updates a ledger's mutable details. Balances are never written
// here.
func (r *PgxChartRepository) UpdateLedger(ctx context.Context, ledger domain.AccountLedger) error {
	m := mapping.ToModelLedger(ledger)
	query := `
		UPDATE account_ledgers
		SET name = $2, description = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE ledger_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, m.LedgerID, m.Name, m.Description, m.IsActive, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update ledger %s: %w", m.LedgerID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateLedger marks a ledger as inactive. Its rows in journal_lines stay
// untouched.
func (r *PgxChartRepository) DeactivateLedger(ctx context.Context, ledgerID string, userID string, now time.Time) error {
	query := `
		UPDATE account_ledgers
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE ledger_id = $1 AND is_active = TRUE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, ledgerID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate ledger %s: %w", ledgerID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, findErr := r.FindLedgerByID(ctx, ledgerID); errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return fmt.Errorf("failed to check ledger status after deactivation attempt for %s: %w", ledgerID, findErr)
		}
		return fmt.Errorf("%w: ledger %s is already inactive", apperrors.ErrValidation, ledgerID)
	}
	return nil
}

// SetLedgerBalance overwrites a ledger's stored balance. Only the balance
// repair flow calls this.
func (r *PgxChartRepository) SetLedgerBalance(ctx context.Context, ledgerID string, balance decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE account_ledgers
		SET current_balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE ledger_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, ledgerID, balance, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set balance for ledger %s: %w", ledgerID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindLedgersByIDsForUpdate retrieves ledgers by IDs and locks the rows for
// update. Rows are locked in ID order so concurrent postings touching the same
// ledgers cannot deadlock. Must be called within a transaction.
func (r *PgxChartRepository) FindLedgersByIDsForUpdate(ctx context.Context, tx pgx.Tx, ledgerIDs []string) (map[string]domain.AccountLedger, error) {
	if len(ledgerIDs) == 0 {
		return map[string]domain.AccountLedger{}, nil
	}

	sorted := make([]string, len(ledgerIDs))
	copy(sorted, ledgerIDs)
	sort.Strings(sorted)

	query := `
		SELECT ` + ledgerColumns + `
		FROM account_ledgers
		WHERE ledger_id = ANY($1)
		ORDER BY ledger_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledgers for update: %w", err)
	}
	defer rows.Close()

	ledgers := make(map[string]domain.AccountLedger)
	for rows.Next() {
		m, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked ledger row: %w", err)
		}
		ledgers[m.LedgerID] = mapping.ToDomainLedger(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked ledger rows: %w", err)
	}

	if len(ledgers) != len(sorted) {
		missing := []string{}
		for _, id := range sorted {
			if _, found := ledgers[id]; !found {
				missing = append(missing, id)
			}
		}
		slog.WarnContext(ctx, "Some ledgers requested for update lock were not found", "missing_ledgers", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested ledgers, missing: %v", apperrors.ErrNotFound, missing)
	}

	return ledgers, nil
}

// UpdateLedgerBalancesInTx applies balance deltas to multiple ledgers within a
// transaction.
func (r *PgxChartRepository) UpdateLedgerBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}

	query := `
		UPDATE account_ledgers
		SET current_balance = current_balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE ledger_id = $1;
	`

	batch := &pgx.Batch{}
	ledgerIDs := make([]string, 0, len(balanceChanges))
	for ledgerID, delta := range balanceChanges {
		if !delta.IsZero() {
			batch.Queue(query, ledgerID, delta, now, userID)
			ledgerIDs = append(ledgerIDs, ledgerID)
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance for ledger %s: %w", ledgerIDs[i], err)
			}
		} else if ct.RowsAffected() == 0 {
			if batchErr == nil {
				batchErr = fmt.Errorf("%w: ledger %s not found during balance update", apperrors.ErrNotFound, ledgerIDs[i])
			}
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}
	return batchErr
}
