package domain

import (
	"github.com/shopspring/decimal"
)

// AllocationStatus is the state of a cost allocation. Completed and cancelled
// are terminal.
type AllocationStatus string

const (
	AllocationPending   AllocationStatus = "PENDING"
	AllocationCompleted AllocationStatus = "COMPLETED"
	AllocationCancelled AllocationStatus = "CANCELLED"
)

// AllocationRule sends a percentage of the source amount to one target cost
// center. No two rules in a set share a target.
type AllocationRule struct {
	TargetCostCenterID string          `json:"targetCostCenterID"`
	Percentage         decimal.Decimal `json:"percentage"` // within [0,100]
}

// AllocationShare is the computed amount for one rule.
type AllocationShare struct {
	TargetCostCenterID string          `json:"targetCostCenterID"`
	Percentage         decimal.Decimal `json:"percentage"`
	Amount             decimal.Decimal `json:"amount"`
}

// CostAllocation redistributes an amount from a source cost center to targets
// by percentage rule. Shares are computed once at creation; the residual cent
// from rounding is assigned to the last rule so the shares always sum to the
// allocated portion exactly.
type CostAllocation struct {
	AllocationID       string           `json:"allocationID"`
	SourceCostCenterID string           `json:"sourceCostCenterID"`
	Amount             decimal.Decimal  `json:"amount"`
	Rules              []AllocationRule `json:"rules"`
	Shares             []AllocationShare `json:"shares"`
	Description        string           `json:"description"`
	Status             AllocationStatus `json:"status"`
	AuditFields
}
