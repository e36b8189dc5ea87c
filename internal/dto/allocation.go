package dto

import (
	"time"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AllocationRuleInput defines one percentage rule of an allocation request.
type AllocationRuleInput struct {
	TargetCostCenterID string          `json:"targetCostCenterID" binding:"required"`
	Percentage         decimal.Decimal `json:"percentage" binding:"required"`
}

// CreateAllocationRequest defines the data needed to create a cost allocation.
type CreateAllocationRequest struct {
	SourceCostCenterID string                `json:"sourceCostCenterID" binding:"required"`
	Amount             decimal.Decimal       `json:"amount" binding:"required"`
	Description        string                `json:"description"`
	Rules              []AllocationRuleInput `json:"rules" binding:"required,min=1,dive"`
}

// AllocationShareResponse is the computed amount for one rule.
type AllocationShareResponse struct {
	TargetCostCenterID string          `json:"targetCostCenterID"`
	Percentage         decimal.Decimal `json:"percentage"`
	Amount             decimal.Decimal `json:"amount"`
}

// AllocationResponse defines the data returned for a cost allocation.
type AllocationResponse struct {
	AllocationID       string                    `json:"allocationID"`
	SourceCostCenterID string                    `json:"sourceCostCenterID"`
	Amount             decimal.Decimal           `json:"amount"`
	Description        string                    `json:"description"`
	Status             domain.AllocationStatus   `json:"status"`
	Shares             []AllocationShareResponse `json:"shares"`
	CreatedAt          time.Time                 `json:"createdAt"`
	CreatedBy          string                    `json:"createdBy"`
}

// ToAllocationResponse converts a domain.CostAllocation to its DTO
func ToAllocationResponse(a *domain.CostAllocation) AllocationResponse {
	shares := make([]AllocationShareResponse, len(a.Shares))
	for i, s := range a.Shares {
		shares[i] = AllocationShareResponse{
			TargetCostCenterID: s.TargetCostCenterID,
			Percentage:         s.Percentage,
			Amount:             s.Amount,
		}
	}
	return AllocationResponse{
		AllocationID:       a.AllocationID,
		SourceCostCenterID: a.SourceCostCenterID,
		Amount:             a.Amount,
		Description:        a.Description,
		Status:             a.Status,
		Shares:             shares,
		CreatedAt:          a.CreatedAt,
		CreatedBy:          a.CreatedBy,
	}
}

// ToListAllocationResponse converts a slice of domain.CostAllocation to DTOs
func ToListAllocationResponse(allocations []domain.CostAllocation) []AllocationResponse {
	res := make([]AllocationResponse, len(allocations))
	for i := range allocations {
		res[i] = ToAllocationResponse(&allocations[i])
	}
	return res
}
