package services

import (
	"context"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
)

// GroupSvc defines operations on account groups
type GroupSvc interface {
	// CreateGroup persists a new account group.
	CreateGroup(ctx context.Context, req dto.CreateGroupRequest, userID string) (*domain.AccountGroup, error)

	// GetGroupByID retrieves a specific group by its unique identifier.
	GetGroupByID(ctx context.Context, groupID string) (*domain.AccountGroup, error)

	// ListGroups retrieves all account groups.
	ListGroups(ctx context.Context, includeInactive bool) ([]domain.AccountGroup, error)

	// UpdateGroup updates an existing group's details.
	UpdateGroup(ctx context.Context, groupID string, req dto.UpdateGroupRequest, userID string) (*domain.AccountGroup, error)

	// DeactivateGroup marks a group as inactive. Fails while sub-groups still
	// reference it.
	DeactivateGroup(ctx context.Context, groupID string, userID string) error
}

// SubGroupSvc defines operations on account sub-groups
type SubGroupSvc interface {
	// CreateSubGroup persists a new sub-group under a group, optionally nested
	// under a parent sub-group.
	CreateSubGroup(ctx context.Context, req dto.CreateSubGroupRequest, userID string) (*domain.AccountSubGroup, error)

	// GetSubGroupByID retrieves a specific sub-group.
	GetSubGroupByID(ctx context.Context, subGroupID string) (*domain.AccountSubGroup, error)

	// ListSubGroups retrieves all sub-groups of a group.
	ListSubGroups(ctx context.Context, groupID string) ([]domain.AccountSubGroup, error)

	// UpdateSubGroup updates a sub-group, re-validating the parent chain when
	// it is re-parented.
	UpdateSubGroup(ctx context.Context, subGroupID string, req dto.UpdateSubGroupRequest, userID string) (*domain.AccountSubGroup, error)

	// DeactivateSubGroup marks a sub-group as inactive. Fails while ledgers or
	// child sub-groups still reference it.
	DeactivateSubGroup(ctx context.Context, subGroupID string, userID string) error
}

// LedgerSvc defines operations on ledger accounts
type LedgerSvc interface {
	// CreateLedger persists a new ledger account under a sub-group.
	CreateLedger(ctx context.Context, req dto.CreateLedgerRequest, userID string) (*domain.AccountLedger, error)

	// GetLedgerByID retrieves a specific ledger account.
	GetLedgerByID(ctx context.Context, ledgerID string) (*domain.AccountLedger, error)

	// GetLedgerHierarchy resolves the full group to ledger path of an account.
	GetLedgerHierarchy(ctx context.Context, ledgerID string) (*domain.LedgerHierarchy, error)

	// ListLedgers retrieves a paginated list of ledger accounts.
	ListLedgers(ctx context.Context, params dto.ListLedgersParams) ([]domain.AccountLedger, error)

	// UpdateLedger updates an existing ledger's details.
	UpdateLedger(ctx context.Context, ledgerID string, req dto.UpdateLedgerRequest, userID string) (*domain.AccountLedger, error)

	// DeactivateLedger marks a ledger as inactive. Its posting history stays
	// available to reporting.
	DeactivateLedger(ctx context.Context, ledgerID string, userID string) error
}

// ChartSvcFacade combines all chart-of-accounts service interfaces
// This is a facade for clients that need access to all operations
type ChartSvcFacade interface {
	GroupSvc
	SubGroupSvc
	LedgerSvc
}
