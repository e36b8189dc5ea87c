package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// GetLedgerBalancesAsOf replays every active ledger's balance as of a date.
// The signed balance is the opening balance plus all journal line activity up
// to the cutoff, netted to the ledger's natural side.
func (r *reportingRepository) GetLedgerBalancesAsOf(ctx context.Context, asOf time.Time) ([]domain.LedgerBalanceSnapshot, error) {
	query := `
		SELECT
			l.ledger_id,
			l.code,
			l.name,
			g.group_type,
			g.name AS group_name,
			l.balance_type,
			l.opening_balance + COALESCE(SUM(
				CASE WHEN l.balance_type = 'DEBIT'
					THEN jl.debit - jl.credit
					ELSE jl.credit - jl.debit
				END
			), 0) AS balance
		FROM account_ledgers l
		JOIN account_sub_groups sg ON l.sub_group_id = sg.sub_group_id
		JOIN account_groups g ON sg.group_id = g.group_id
		LEFT JOIN (
			SELECT il.ledger_id, il.debit, il.credit
			FROM journal_lines il
			JOIN journal_entries ie ON ie.entry_id = il.entry_id
			WHERE ie.entry_date <= $1
		) jl ON jl.ledger_id = l.ledger_id
		WHERE l.is_active = TRUE
		GROUP BY l.ledger_id, l.code, l.name, g.group_type, g.name, l.balance_type, l.opening_balance
		ORDER BY l.code
	`

	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("error querying ledger balances: %w", err)
	}
	defer rows.Close()

	var result []domain.LedgerBalanceSnapshot
	for rows.Next() {
		var snap domain.LedgerBalanceSnapshot
		var groupType, nature string

		if err := rows.Scan(
			&snap.LedgerID,
			&snap.Code,
			&snap.Name,
			&groupType,
			&snap.GroupName,
			&nature,
			&snap.Balance,
		); err != nil {
			return nil, fmt.Errorf("error scanning ledger balance row: %w", err)
		}

		snap.GroupType = domain.GroupType(groupType)
		snap.Nature = domain.BalanceType(nature)
		result = append(result, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger balance rows: %w", err)
	}

	if len(result) == 0 {
		// Return empty slice instead of nil
		return []domain.LedgerBalanceSnapshot{}, nil
	}

	return result, nil
}
