package dto

import (
	"time"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BudgetItemInput is one line of a category's allocation breakdown. TotalCost
// is derived from quantity and unit cost; a supplied value is ignored.
type BudgetItemInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost    decimal.Decimal `json:"unitCost" binding:"required"`
}

// BudgetCategoryInput defines one category of a budget request.
type BudgetCategoryInput struct {
	Name            string            `json:"name" binding:"required"`
	Type            domain.CategoryType `json:"type" binding:"required,oneof=LABOR MATERIALS EQUIPMENT OVERHEAD"`
	AllocatedAmount decimal.Decimal   `json:"allocatedAmount" binding:"required"`
	Items           []BudgetItemInput `json:"items" binding:"omitempty,dive"`
}

// CreateBudgetRequest defines the data needed to create a budget.
type CreateBudgetRequest struct {
	Name         string                `json:"name" binding:"required"`
	FiscalYear   int                   `json:"fiscalYear" binding:"required,min=1900,max=9999"`
	DepartmentID *string               `json:"departmentID"`
	ProjectID    *string               `json:"projectID"`
	Kind         domain.BudgetKind     `json:"kind" binding:"omitempty,oneof=EXPENSE REVENUE"`
	CurrencyCode string                `json:"currencyCode" binding:"required,len=3"`
	TotalBudget  decimal.Decimal       `json:"totalBudget"`
	Categories   []BudgetCategoryInput `json:"categories" binding:"required,min=1,dive"`
}

// UpdateBudgetRequest defines the data allowed for updating a budget.
type UpdateBudgetRequest struct {
	Name       *string               `json:"name"`
	Status     *domain.BudgetStatus  `json:"status" binding:"omitempty,oneof=DRAFT PENDING APPROVED ACTIVE CLOSED"`
	Categories []BudgetCategoryInput `json:"categories" binding:"omitempty,dive"`
}

// RecordSpendRequest records actual spending against one budget category.
type RecordSpendRequest struct {
	CategoryName string          `json:"categoryName" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Reference    string          `json:"reference"`
}

// BudgetItemResponse defines the data returned for a budget item.
type BudgetItemResponse struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	TotalCost   decimal.Decimal `json:"totalCost"`
}

// BudgetCategoryResponse defines the data returned for a budget category.
type BudgetCategoryResponse struct {
	Name            string               `json:"name"`
	Type            domain.CategoryType  `json:"type"`
	AllocatedAmount decimal.Decimal      `json:"allocatedAmount"`
	SpentAmount     decimal.Decimal      `json:"spentAmount"`
	Items           []BudgetItemResponse `json:"items,omitempty"`
}

// BudgetResponse defines the data returned for a budget.
type BudgetResponse struct {
	BudgetID      string                   `json:"budgetID"`
	Name          string                   `json:"name"`
	FiscalYear    int                      `json:"fiscalYear"`
	DepartmentID  *string                  `json:"departmentID,omitempty"`
	ProjectID     *string                  `json:"projectID,omitempty"`
	Kind          domain.BudgetKind        `json:"kind"`
	Status        domain.BudgetStatus      `json:"status"`
	CurrencyCode  string                   `json:"currencyCode"`
	TotalBudget   decimal.Decimal          `json:"totalBudget"`
	ActualSpent   decimal.Decimal          `json:"actualSpent"`
	Remaining     decimal.Decimal          `json:"remaining"`
	Utilization   decimal.Decimal          `json:"utilization"`
	Categories    []BudgetCategoryResponse `json:"categories"`
	CreatedAt     time.Time                `json:"createdAt"`
	CreatedBy     string                   `json:"createdBy"`
	LastUpdatedAt time.Time                `json:"lastUpdatedAt"`
	LastUpdatedBy string                   `json:"lastUpdatedBy"`
}

// ToBudgetResponse converts a domain.Budget to BudgetResponse DTO
func ToBudgetResponse(b *domain.Budget) BudgetResponse {
	categories := make([]BudgetCategoryResponse, len(b.Categories))
	for i, cat := range b.Categories {
		items := make([]BudgetItemResponse, len(cat.Items))
		for j, item := range cat.Items {
			items[j] = BudgetItemResponse{
				Name:        item.Name,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitCost:    item.UnitCost,
				TotalCost:   item.TotalCost,
			}
		}
		categories[i] = BudgetCategoryResponse{
			Name:            cat.Name,
			Type:            cat.Type,
			AllocatedAmount: cat.AllocatedAmount,
			SpentAmount:     cat.SpentAmount,
			Items:           items,
		}
	}
	return BudgetResponse{
		BudgetID:      b.BudgetID,
		Name:          b.Name,
		FiscalYear:    b.FiscalYear,
		DepartmentID:  b.DepartmentID,
		ProjectID:     b.ProjectID,
		Kind:          b.Kind,
		Status:        b.Status,
		CurrencyCode:  b.CurrencyCode,
		TotalBudget:   b.TotalBudget,
		ActualSpent:   b.ActualSpent,
		Remaining:     b.Remaining,
		Utilization:   b.Utilization,
		Categories:    categories,
		CreatedAt:     b.CreatedAt,
		CreatedBy:     b.CreatedBy,
		LastUpdatedAt: b.LastUpdatedAt,
		LastUpdatedBy: b.LastUpdatedBy,
	}
}

// ToListBudgetResponse converts a slice of domain.Budget to DTOs
func ToListBudgetResponse(budgets []domain.Budget) []BudgetResponse {
	res := make([]BudgetResponse, len(budgets))
	for i := range budgets {
		res[i] = ToBudgetResponse(&budgets[i])
	}
	return res
}

// ListBudgetsParams defines query parameters for listing budgets.
type ListBudgetsParams struct {
	FiscalYear *int `form:"fiscalYear"`
	Limit      int  `form:"limit,default=20"`
	Offset     int  `form:"offset,default=0"`
}

// CreateTransferRequest defines the data needed to request a budget transfer.
type CreateTransferRequest struct {
	FromBudgetID string          `json:"fromBudgetID" binding:"required"`
	ToBudgetID   string          `json:"toBudgetID" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Reason       string          `json:"reason" binding:"required"`
}

// RejectTransferRequest carries the reason for rejecting a transfer.
type RejectTransferRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// TransferResponse defines the data returned for a budget transfer.
type TransferResponse struct {
	TransferID      string                `json:"transferID"`
	TransferNumber  string                `json:"transferNumber"`
	FromBudgetID    string                `json:"fromBudgetID"`
	ToBudgetID      string                `json:"toBudgetID"`
	Amount          decimal.Decimal       `json:"amount"`
	FiscalYear      int                   `json:"fiscalYear"`
	Reason          string                `json:"reason"`
	Status          domain.TransferStatus `json:"status"`
	RequestedBy     string                `json:"requestedBy"`
	DecidedBy       string                `json:"decidedBy,omitempty"`
	DecidedAt       *time.Time            `json:"decidedAt,omitempty"`
	RejectionReason string                `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
}

// ToTransferResponse converts a domain.BudgetTransfer to TransferResponse DTO
func ToTransferResponse(t *domain.BudgetTransfer) TransferResponse {
	return TransferResponse{
		TransferID:      t.TransferID,
		TransferNumber:  t.TransferNumber,
		FromBudgetID:    t.FromBudgetID,
		ToBudgetID:      t.ToBudgetID,
		Amount:          t.Amount,
		FiscalYear:      t.FiscalYear,
		Reason:          t.Reason,
		Status:          t.Status,
		RequestedBy:     t.RequestedBy,
		DecidedBy:       t.DecidedBy,
		DecidedAt:       t.DecidedAt,
		RejectionReason: t.RejectionReason,
		CreatedAt:       t.CreatedAt,
	}
}

// ToListTransferResponse converts a slice of domain.BudgetTransfer to DTOs
func ToListTransferResponse(transfers []domain.BudgetTransfer) []TransferResponse {
	res := make([]TransferResponse, len(transfers))
	for i := range transfers {
		res[i] = ToTransferResponse(&transfers[i])
	}
	return res
}
