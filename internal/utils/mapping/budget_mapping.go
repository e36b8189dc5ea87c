package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/fincore-erp/gl_budget_engine/internal/models"
)

// ToModelBudget converts a domain Budget to its row model, marshalling the
// category breakdown to JSON.
func ToModelBudget(d domain.Budget) (models.Budget, error) {
	categories, err := json.Marshal(d.Categories)
	if err != nil {
		return models.Budget{}, fmt.Errorf("failed to marshal budget categories: %w", err)
	}
	return models.Budget{
		BudgetID:     d.BudgetID,
		Name:         d.Name,
		FiscalYear:   d.FiscalYear,
		DepartmentID: d.DepartmentID,
		ProjectID:    d.ProjectID,
		Kind:         string(d.Kind),
		Status:       string(d.Status),
		CurrencyCode: d.CurrencyCode,
		TotalBudget:  d.TotalBudget,
		ActualSpent:  d.ActualSpent,
		Remaining:    d.Remaining,
		Utilization:  d.Utilization,
		Categories:   categories,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainBudget converts a budgets row to a domain Budget
func ToDomainBudget(m models.Budget) (domain.Budget, error) {
	var categories []domain.BudgetCategory
	if len(m.Categories) > 0 {
		if err := json.Unmarshal(m.Categories, &categories); err != nil {
			return domain.Budget{}, fmt.Errorf("failed to unmarshal categories for budget %s: %w", m.BudgetID, err)
		}
	}
	return domain.Budget{
		BudgetID:     m.BudgetID,
		Name:         m.Name,
		FiscalYear:   m.FiscalYear,
		DepartmentID: m.DepartmentID,
		ProjectID:    m.ProjectID,
		Kind:         domain.BudgetKind(m.Kind),
		Status:       domain.BudgetStatus(m.Status),
		CurrencyCode: m.CurrencyCode,
		TotalBudget:  m.TotalBudget,
		ActualSpent:  m.ActualSpent,
		Remaining:    m.Remaining,
		Utilization:  m.Utilization,
		Categories:   categories,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}, nil
}

// ToModelTransfer converts a domain BudgetTransfer to its row model. Empty
// decision fields become NULLs.
func ToModelTransfer(d domain.BudgetTransfer) models.BudgetTransfer {
	m := models.BudgetTransfer{
		TransferID:     d.TransferID,
		TransferNumber: d.TransferNumber,
		FromBudgetID:   d.FromBudgetID,
		ToBudgetID:     d.ToBudgetID,
		Amount:         d.Amount,
		FiscalYear:     d.FiscalYear,
		Reason:         d.Reason,
		Status:         string(d.Status),
		RequestedBy:    d.RequestedBy,
		DecidedAt:      d.DecidedAt,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
	if d.DecidedBy != "" {
		m.DecidedBy = &d.DecidedBy
	}
	if d.RejectionReason != "" {
		m.RejectionReason = &d.RejectionReason
	}
	return m
}

// ToDomainTransfer converts a budget_transfers row to a domain BudgetTransfer
func ToDomainTransfer(m models.BudgetTransfer) domain.BudgetTransfer {
	d := domain.BudgetTransfer{
		TransferID:     m.TransferID,
		TransferNumber: m.TransferNumber,
		FromBudgetID:   m.FromBudgetID,
		ToBudgetID:     m.ToBudgetID,
		Amount:         m.Amount,
		FiscalYear:     m.FiscalYear,
		Reason:         m.Reason,
		Status:         domain.TransferStatus(m.Status),
		RequestedBy:    m.RequestedBy,
		DecidedAt:      m.DecidedAt,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
	if m.DecidedBy != nil {
		d.DecidedBy = *m.DecidedBy
	}
	if m.RejectionReason != nil {
		d.RejectionReason = *m.RejectionReason
	}
	return d
}

// ToModelAllocation converts a domain CostAllocation to its row model,
// marshalling rules and shares to JSON.
func ToModelAllocation(d domain.CostAllocation) (models.CostAllocation, error) {
	rules, err := json.Marshal(d.Rules)
	if err != nil {
		return models.CostAllocation{}, fmt.Errorf("failed to marshal allocation rules: %w", err)
	}
	shares, err := json.Marshal(d.Shares)
	if err != nil {
		return models.CostAllocation{}, fmt.Errorf("failed to marshal allocation shares: %w", err)
	}
	return models.CostAllocation{
		AllocationID:       d.AllocationID,
		SourceCostCenterID: d.SourceCostCenterID,
		Amount:             d.Amount,
		Rules:              rules,
		Shares:             shares,
		Description:        d.Description,
		Status:             string(d.Status),
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainAllocation converts a cost_allocations row to a domain CostAllocation
func ToDomainAllocation(m models.CostAllocation) (domain.CostAllocation, error) {
	var rules []domain.AllocationRule
	if len(m.Rules) > 0 {
		if err := json.Unmarshal(m.Rules, &rules); err != nil {
			return domain.CostAllocation{}, fmt.Errorf("failed to unmarshal rules for allocation %s: %w", m.AllocationID, err)
		}
	}
	var shares []domain.AllocationShare
	if len(m.Shares) > 0 {
		if err := json.Unmarshal(m.Shares, &shares); err != nil {
			return domain.CostAllocation{}, fmt.Errorf("failed to unmarshal shares for allocation %s: %w", m.AllocationID, err)
		}
	}
	return domain.CostAllocation{
		AllocationID:       m.AllocationID,
		SourceCostCenterID: m.SourceCostCenterID,
		Amount:             m.Amount,
		Rules:              rules,
		Shares:             shares,
		Description:        m.Description,
		Status:             domain.AllocationStatus(m.Status),
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}, nil
}
