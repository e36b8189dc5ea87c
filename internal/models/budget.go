package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is the row shape of the budgets table. Categories is the JSONB
// category breakdown; rollup columns mirror the derived fields so list
// queries never need to unmarshal it.
type Budget struct {
	BudgetID     string          `db:"budget_id"`
	Name         string          `db:"name"`
	FiscalYear   int             `db:"fiscal_year"`
	DepartmentID *string         `db:"department_id"`
	ProjectID    *string         `db:"project_id"`
	Kind         string          `db:"kind"`
	Status       string          `db:"status"`
	CurrencyCode string          `db:"currency_code"`
	TotalBudget  decimal.Decimal `db:"total_budget"`
	ActualSpent  decimal.Decimal `db:"actual_spent"`
	Remaining    decimal.Decimal `db:"remaining"`
	Utilization  decimal.Decimal `db:"utilization"`
	Categories   []byte          `db:"categories"`
	AuditFields
}

// BudgetTransfer is the row shape of the budget_transfers table.
type BudgetTransfer struct {
	TransferID      string          `db:"transfer_id"`
	TransferNumber  string          `db:"transfer_number"`
	FromBudgetID    string          `db:"from_budget_id"`
	ToBudgetID      string          `db:"to_budget_id"`
	Amount          decimal.Decimal `db:"amount"`
	FiscalYear      int             `db:"fiscal_year"`
	Reason          string          `db:"reason"`
	Status          string          `db:"status"`
	RequestedBy     string          `db:"requested_by"`
	DecidedBy       *string         `db:"decided_by"`
	DecidedAt       *time.Time      `db:"decided_at"`
	RejectionReason *string         `db:"rejection_reason"`
	AuditFields
}

// CostAllocation is the row shape of the cost_allocations table. Rules and
// Shares are JSONB.
type CostAllocation struct {
	AllocationID       string          `db:"allocation_id"`
	SourceCostCenterID string          `db:"source_cost_center_id"`
	Amount             decimal.Decimal `db:"amount"`
	Rules              []byte          `db:"rules"`
	Shares             []byte          `db:"shares"`
	Description        string          `db:"description"`
	Status             string          `db:"status"`
	AuditFields
}
