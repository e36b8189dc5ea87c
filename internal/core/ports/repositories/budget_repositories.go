package repositories

import (
	"context"
	"time"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// BudgetReader defines read operations for budgets
type BudgetReader interface {
	// FindBudgetByID retrieves a specific budget by its unique identifier.
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)

	// ListBudgets retrieves a paginated list of budgets, optionally filtered
	// by fiscal year.
	ListBudgets(ctx context.Context, fiscalYear *int, limit int, offset int) ([]domain.Budget, error)

	// ListBudgetIDs retrieves the IDs of all budgets in the given statuses.
	// Used by the background variance refresher.
	ListBudgetIDs(ctx context.Context, statuses []domain.BudgetStatus) ([]string, error)
}

// BudgetWriter defines write operations for budgets
type BudgetWriter interface {
	// SaveBudget persists a new budget.
	SaveBudget(ctx context.Context, budget domain.Budget) error

	// UpdateBudget updates an existing budget, including its categories and
	// recomputed rollups.
	UpdateBudget(ctx context.Context, budget domain.Budget) error
}

// BudgetTransactionSupport defines operations used inside transfer transactions
type BudgetTransactionSupport interface {
	// FindBudgetsByIDsForUpdate selects budgets and locks them for update
	// within a transaction. IDs are locked in sorted order to avoid deadlocks.
	FindBudgetsByIDsForUpdate(ctx context.Context, tx pgx.Tx, budgetIDs []string) (map[string]domain.Budget, error)

	// UpdateBudgetsInTx writes multiple budgets within a given transaction.
	UpdateBudgetsInTx(ctx context.Context, tx pgx.Tx, budgets []domain.Budget) error
}

// BudgetRepositoryFacade combines all budget repository interfaces
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetWriter
	BudgetTransactionSupport
}

// BudgetRepositoryWithTx extends BudgetRepositoryFacade with transaction capabilities
type BudgetRepositoryWithTx interface {
	BudgetRepositoryFacade
	TransactionManager
}

// TransferReader defines read operations for budget transfers
type TransferReader interface {
	// FindTransferByID retrieves a specific transfer by its unique identifier.
	FindTransferByID(ctx context.Context, transferID string) (*domain.BudgetTransfer, error)

	// ListTransfersByBudgetID retrieves all transfers touching a budget on
	// either side.
	ListTransfersByBudgetID(ctx context.Context, budgetID string, limit int, offset int) ([]domain.BudgetTransfer, error)
}

// TransferWriter defines write operations for budget transfers
type TransferWriter interface {
	// SaveTransfer persists a new transfer request. The transfer number is
	// drawn from the per-year transfer sequence.
	SaveTransfer(ctx context.Context, transfer domain.BudgetTransfer) (string, error)

	// UpdateTransferInTx writes a transfer's decision fields within a given
	// transaction, alongside the budget updates of an approval.
	UpdateTransferInTx(ctx context.Context, tx pgx.Tx, transfer domain.BudgetTransfer) error

	// UpdateTransfer writes a transfer's decision fields outside any caller
	// transaction. Used for rejections, which touch no budget.
	UpdateTransfer(ctx context.Context, transfer domain.BudgetTransfer) error
}

// TransferRepositoryFacade combines all transfer repository interfaces
type TransferRepositoryFacade interface {
	TransferReader
	TransferWriter
}

// AllocationReader defines read operations for cost allocations
type AllocationReader interface {
	// FindAllocationByID retrieves a specific allocation by its unique identifier.
	FindAllocationByID(ctx context.Context, allocationID string) (*domain.CostAllocation, error)

	// ListAllocationsBySourceID retrieves allocations originating from a cost center.
	ListAllocationsBySourceID(ctx context.Context, sourceCostCenterID string, limit int, offset int) ([]domain.CostAllocation, error)
}

// AllocationWriter defines write operations for cost allocations
type AllocationWriter interface {
	// SaveAllocation persists a new allocation with its computed shares.
	SaveAllocation(ctx context.Context, allocation domain.CostAllocation) error

	// UpdateAllocationStatus moves an allocation between lifecycle states.
	UpdateAllocationStatus(ctx context.Context, allocationID string, status domain.AllocationStatus, userID string, now time.Time) error
}

// AllocationRepositoryFacade combines all allocation repository interfaces
type AllocationRepositoryFacade interface {
	AllocationReader
	AllocationWriter
}
