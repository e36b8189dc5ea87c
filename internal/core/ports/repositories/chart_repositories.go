package repositories

import (
	"context"
	"time"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// GroupReader defines read operations for account groups
type GroupReader interface {
	// FindGroupByID retrieves a specific account group by its unique identifier.
	FindGroupByID(ctx context.Context, groupID string) (*domain.AccountGroup, error)

	// FindGroupByCode retrieves an account group by its code.
	FindGroupByCode(ctx context.Context, code string) (*domain.AccountGroup, error)

	// ListGroups retrieves all account groups, optionally including inactive ones.
	ListGroups(ctx context.Context, includeInactive bool) ([]domain.AccountGroup, error)
}

// GroupWriter defines write operations for account groups
type GroupWriter interface {
	// SaveGroup persists a new account group.
	SaveGroup(ctx context.Context, group domain.AccountGroup) error

	// UpdateGroup updates an existing group's details.
	UpdateGroup(ctx context.Context, group domain.AccountGroup) error

	// DeactivateGroup marks a group as inactive.
	DeactivateGroup(ctx context.Context, groupID string, userID string, now time.Time) error

	// CountSubGroupsByGroupID counts sub-groups referencing a group, for
	// referential checks before deactivation.
	CountSubGroupsByGroupID(ctx context.Context, groupID string) (int, error)
}

// SubGroupReader defines read operations for account sub-groups
type SubGroupReader interface {
	// FindSubGroupByID retrieves a specific sub-group by its unique identifier.
	FindSubGroupByID(ctx context.Context, subGroupID string) (*domain.AccountSubGroup, error)

	// FindSubGroupByCode retrieves a sub-group by its code.
	FindSubGroupByCode(ctx context.Context, code string) (*domain.AccountSubGroup, error)

	// ListSubGroupsByGroupID retrieves all sub-groups belonging to a group.
	ListSubGroupsByGroupID(ctx context.Context, groupID string) ([]domain.AccountSubGroup, error)
}

// SubGroupWriter defines write operations for account sub-groups
type SubGroupWriter interface {
	// SaveSubGroup persists a new sub-group.
	SaveSubGroup(ctx context.Context, subGroup domain.AccountSubGroup) error

	// UpdateSubGroup updates an existing sub-group's details.
	UpdateSubGroup(ctx context.Context, subGroup domain.AccountSubGroup) error

	// DeactivateSubGroup marks a sub-group as inactive.
	DeactivateSubGroup(ctx context.Context, subGroupID string, userID string, now time.Time) error

	// CountLedgersBySubGroupID counts ledgers referencing a sub-group.
	CountLedgersBySubGroupID(ctx context.Context, subGroupID string) (int, error)

	// CountChildSubGroups counts sub-groups nested under a parent sub-group.
	CountChildSubGroups(ctx context.Context, parentSubGroupID string) (int, error)
}

// LedgerReader defines read operations for ledger accounts
type LedgerReader interface {
	// FindLedgerByID retrieves a specific ledger account by its unique identifier.
	FindLedgerByID(ctx context.Context, ledgerID string) (*domain.AccountLedger, error)

	// FindLedgerByCode retrieves a ledger account by its code.
	FindLedgerByCode(ctx context.Context, code string) (*domain.AccountLedger, error)

	// FindLedgersByIDs retrieves multiple ledger accounts by their IDs.
	FindLedgersByIDs(ctx context.Context, ledgerIDs []string) (map[string]domain.AccountLedger, error)

	// ListLedgers retrieves a paginated list of ledger accounts.
	ListLedgers(ctx context.Context, limit int, offset int) ([]domain.AccountLedger, error)

	// ListLedgersBySubGroupID retrieves all ledgers belonging to a sub-group.
	ListLedgersBySubGroupID(ctx context.Context, subGroupID string) ([]domain.AccountLedger, error)

	// FindLedgerHierarchy resolves the group and sub-group chain of a ledger.
	FindLedgerHierarchy(ctx context.Context, ledgerID string) (*domain.LedgerHierarchy, error)
}

// LedgerWriter defines write operations for ledger accounts
type LedgerWriter interface {
	// SaveLedger persists a new ledger account.
	SaveLedger(ctx context.Context, ledger domain.AccountLedger) error

	// UpdateLedger updates an existing ledger's details.
	UpdateLedger(ctx context.Context, ledger domain.AccountLedger) error

	// DeactivateLedger marks a ledger as inactive. Posting history is retained.
	DeactivateLedger(ctx context.Context, ledgerID string, userID string, now time.Time) error

	// SetLedgerBalance overwrites a ledger's stored balance. Used only by the
	// balance repair flow.
	SetLedgerBalance(ctx context.Context, ledgerID string, balance decimal.Decimal, userID string, now time.Time) error
}

// LedgerTransactionSupport defines operations used inside posting transactions
type LedgerTransactionSupport interface {
	// FindLedgersByIDsForUpdate selects ledgers and locks them for update within
	// a transaction. IDs are locked in sorted order to avoid deadlocks.
	FindLedgersByIDsForUpdate(ctx context.Context, tx pgx.Tx, ledgerIDs []string) (map[string]domain.AccountLedger, error)

	// UpdateLedgerBalancesInTx applies balance deltas to multiple ledgers within
	// a given transaction.
	UpdateLedgerBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// ChartRepositoryFacade combines all chart-of-accounts repository interfaces
// This is a facade for clients that need access to all operations
type ChartRepositoryFacade interface {
	GroupReader
	GroupWriter
	SubGroupReader
	SubGroupWriter
	LedgerReader
	LedgerWriter
	LedgerTransactionSupport
}

// ChartRepositoryWithTx extends ChartRepositoryFacade with transaction capabilities
type ChartRepositoryWithTx interface {
	ChartRepositoryFacade
	TransactionManager
}
