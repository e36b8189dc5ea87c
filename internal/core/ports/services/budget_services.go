package services

import (
	"context"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
)

// BudgetReaderSvc defines read operations for budgets
type BudgetReaderSvc interface {
	// GetBudgetByID retrieves a specific budget with recomputed rollups.
	GetBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)

	// ListBudgets retrieves a paginated list of budgets.
	ListBudgets(ctx context.Context, params dto.ListBudgetsParams) ([]domain.Budget, error)
}

// BudgetWriterSvc defines write operations for budgets
type BudgetWriterSvc interface {
	// CreateBudget persists a new budget with derived item costs and rollups.
	CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error)

	// UpdateBudget updates a budget's details or categories.
	UpdateBudget(ctx context.Context, budgetID string, req dto.UpdateBudgetRequest, userID string) (*domain.Budget, error)

	// RecordSpend records actual spending against one category and refreshes
	// the budget's rollups.
	RecordSpend(ctx context.Context, budgetID string, req dto.RecordSpendRequest, userID string) (*domain.Budget, error)
}

// BudgetSvcFacade combines all budget service interfaces
type BudgetSvcFacade interface {
	BudgetReaderSvc
	BudgetWriterSvc
}

// TransferSvc defines the budget transfer workflow
type TransferSvc interface {
	// RequestTransfer creates a pending transfer after checking both budgets
	// share a fiscal year and the source holds enough remaining funds.
	RequestTransfer(ctx context.Context, req dto.CreateTransferRequest, userID string) (*domain.BudgetTransfer, error)

	// ApproveTransfer re-checks the source's remaining funds under lock and
	// moves the amount between the budgets atomically.
	ApproveTransfer(ctx context.Context, transferID string, userID string) (*domain.BudgetTransfer, error)

	// RejectTransfer marks a pending transfer rejected. No funds move.
	RejectTransfer(ctx context.Context, transferID string, req dto.RejectTransferRequest, userID string) (*domain.BudgetTransfer, error)

	// GetTransferByID retrieves a specific transfer.
	GetTransferByID(ctx context.Context, transferID string) (*domain.BudgetTransfer, error)

	// ListTransfersByBudget retrieves transfers touching a budget on either side.
	ListTransfersByBudget(ctx context.Context, budgetID string, limit, offset int) ([]domain.BudgetTransfer, error)
}
