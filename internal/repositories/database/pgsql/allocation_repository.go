package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
	"github.com/fincore-erp/gl_budget_engine/internal/models"
	"github.com/fincore-erp/gl_budget_engine/internal/utils/mapping"
)

// PgxAllocationRepository persists cost allocations. Rules and computed shares
// are stored as JSONB documents on the allocation row.
type PgxAllocationRepository struct {
	BaseRepository
}

// newPgxAllocationRepository creates a new repository for cost allocations.
func newPgxAllocationRepository(pool *pgxpool.Pool) portsrepo.AllocationRepositoryFacade {
	return &PgxAllocationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAllocationRepository implements portsrepo.AllocationRepositoryFacade
var _ portsrepo.AllocationRepositoryFacade = (*PgxAllocationRepository)(nil)

const allocationColumns = `allocation_id, source_cost_center_id, amount, rules, shares, description, status, created_at, created_by, last_updated_at, last_updated_by`

func scanAllocation(row pgx.Row) (models.CostAllocation, error) {
	var m models.CostAllocation
	err := row.Scan(
		&m.AllocationID,
		&m.SourceCostCenterID,
		&m.Amount,
		&m.Rules,
		&m.Shares,
		&m.Description,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveAllocation inserts a new allocation with its computed shares.
func (r *PgxAllocationRepository) SaveAllocation(ctx context.Context, allocation domain.CostAllocation) error {
	m, err := mapping.ToModelAllocation(allocation)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO cost_allocations (` + allocationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = r.Pool.Exec(ctx, query,
		m.AllocationID, m.SourceCostCenterID, m.Amount, m.Rules, m.Shares, m.Description, m.Status,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: allocation %s already exists", apperrors.ErrDuplicate, m.AllocationID)
		}
		return fmt.Errorf("failed to save allocation %s: %w", m.AllocationID, err)
	}
	return nil
}

// FindAllocationByID retrieves an allocation by its ID.
func (r *PgxAllocationRepository) FindAllocationByID(ctx context.Context, allocationID string) (*domain.CostAllocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM cost_allocations WHERE allocation_id = $1;`
	m, err := scanAllocation(r.Pool.QueryRow(ctx, query, allocationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find allocation %s: %w", allocationID, err)
	}
	allocation, err := mapping.ToDomainAllocation(m)
	if err != nil {
		return nil, err
	}
	return &allocation, nil
}

// ListAllocationsBySourceID retrieves allocations originating from a cost
// center, newest first.
func (r *PgxAllocationRepository) ListAllocationsBySourceID(ctx context.Context, sourceCostCenterID string, limit int, offset int) ([]domain.CostAllocation, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + allocationColumns + `
		FROM cost_allocations
		WHERE source_cost_center_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, sourceCostCenterID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations for cost center %s: %w", sourceCostCenterID, err)
	}
	defer rows.Close()

	allocations := []domain.CostAllocation{}
	for rows.Next() {
		m, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation row: %w", err)
		}
		allocation, err := mapping.ToDomainAllocation(m)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, allocation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation rows: %w", err)
	}
	return allocations, nil
}

// UpdateAllocationStatus moves an allocation between lifecycle states.
func (r *PgxAllocationRepository) UpdateAllocationStatus(ctx context.Context, allocationID string, status domain.AllocationStatus, userID string, now time.Time) error {
	query := `
		UPDATE cost_allocations
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE allocation_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, allocationID, string(status), now, userID)
	if err != nil {
		return fmt.Errorf("failed to update status of allocation %s: %w", allocationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
