package services

import (
	"context"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
)

// AllocationSvc defines the cost allocation workflow
type AllocationSvc interface {
	// CreateAllocation validates the rules and persists an allocation with its
	// computed shares.
	CreateAllocation(ctx context.Context, req dto.CreateAllocationRequest, userID string) (*domain.CostAllocation, error)

	// GetAllocationByID retrieves a specific allocation.
	GetAllocationByID(ctx context.Context, allocationID string) (*domain.CostAllocation, error)

	// ListAllocationsBySource retrieves allocations originating from a cost center.
	ListAllocationsBySource(ctx context.Context, sourceCostCenterID string, limit, offset int) ([]domain.CostAllocation, error)

	// CompleteAllocation marks a pending allocation completed.
	CompleteAllocation(ctx context.Context, allocationID string, userID string) (*domain.CostAllocation, error)

	// CancelAllocation marks a pending allocation cancelled.
	CancelAllocation(ctx context.Context, allocationID string, userID string) (*domain.CostAllocation, error)
}
