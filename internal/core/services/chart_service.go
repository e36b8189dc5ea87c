package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
)

var (
	ErrGroupInactive       = errors.New("account group is inactive")
	ErrGroupHasSubGroups   = errors.New("group still has sub-groups referencing it")
	ErrSubGroupInactive    = errors.New("account sub-group is inactive")
	ErrSubGroupHasLedgers  = errors.New("sub-group still has ledger accounts referencing it")
	ErrSubGroupHasChildren = errors.New("sub-group still has child sub-groups referencing it")
	ErrParentGroupMismatch = errors.New("parent sub-group belongs to a different group")
)

// chartService manages the three-level chart of accounts.
type chartService struct {
	BaseService
	chartRepo portsrepo.ChartRepositoryFacade
}

// NewChartService creates a new ChartService.
func NewChartService(chartRepo portsrepo.ChartRepositoryFacade) portssvc.ChartSvcFacade {
	return &chartService{chartRepo: chartRepo}
}

// Ensure chartService implements the portssvc.ChartSvcFacade interface
var _ portssvc.ChartSvcFacade = (*chartService)(nil)

// ensureGroupCodeFree rejects a code already used by another group.
func (s *chartService) ensureGroupCodeFree(ctx context.Context, code string) error {
	existing, err := s.chartRepo.FindGroupByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check group code uniqueness: %w", err)
	}
	if existing != nil {
		return &apperrors.DuplicateCodeError{Code: code}
	}
	return nil
}

// CreateGroup persists a new account group after validating its type and code.
func (s *chartService) CreateGroup(ctx context.Context, req dto.CreateGroupRequest, userID string) (*domain.AccountGroup, error) {
	if !domain.ValidGroupType(req.Type) {
		return nil, fmt.Errorf("%w: unknown group type %q", apperrors.ErrValidation, req.Type)
	}
	if err := s.ensureGroupCodeFree(ctx, req.Code); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	group := domain.AccountGroup{
		GroupID:     uuid.NewString(),
		Code:        req.Code,
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(userID, now),
	}

	if err := s.chartRepo.SaveGroup(ctx, group); err != nil {
		s.LogError(ctx, err, "Failed to save account group", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save account group: %w", err)
	}

	s.LogInfo(ctx, "Account group created", slog.String("group_id", group.GroupID), slog.String("code", group.Code))
	return &group, nil
}

// GetGroupByID retrieves a specific group.
func (s *chartService) GetGroupByID(ctx context.Context, groupID string) (*domain.AccountGroup, error) {
	group, err := s.chartRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find group", slog.String("group_id", groupID))
		}
		return nil, err
	}
	return group, nil
}

// ListGroups retrieves all account groups.
func (s *chartService) ListGroups(ctx context.Context, includeInactive bool) ([]domain.AccountGroup, error) {
	groups, err := s.chartRepo.ListGroups(ctx, includeInactive)
	if err != nil {
		s.LogError(ctx, err, "Failed to list groups")
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// UpdateGroup updates an existing group's details.
func (s *chartService) UpdateGroup(ctx context.Context, groupID string, req dto.UpdateGroupRequest, userID string) (*domain.AccountGroup, error) {
	group, err := s.chartRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		group.Name = *req.Name
		updated = true
	}
	if req.Description != nil {
		group.Description = *req.Description
		updated = true
	}
	if req.IsActive != nil {
		group.IsActive = *req.IsActive
		updated = true
	}
	if !updated {
		return group, nil
	}

	group.Touch(userID, time.Now().UTC())
	if err := s.chartRepo.UpdateGroup(ctx, *group); err != nil {
		s.LogError(ctx, err, "Failed to update group", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	s.LogInfo(ctx, "Account group updated", slog.String("group_id", groupID))
	return group, nil
}

// DeactivateGroup marks a group inactive once nothing references it.
func (s *chartService) DeactivateGroup(ctx context.Context, groupID string, userID string) error {
	if _, err := s.chartRepo.FindGroupByID(ctx, groupID); err != nil {
		return err
	}

	count, err := s.chartRepo.CountSubGroupsByGroupID(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count sub-groups", slog.String("group_id", groupID))
		return fmt.Errorf("failed to count sub-groups: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %w", apperrors.ErrConflict, ErrGroupHasSubGroups)
	}

	if err := s.chartRepo.DeactivateGroup(ctx, groupID, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate group", slog.String("group_id", groupID))
		return fmt.Errorf("failed to deactivate group: %w", err)
	}

	s.LogInfo(ctx, "Account group deactivated", slog.String("group_id", groupID))
	return nil
}

// resolveParentLevel walks the parent chain upward and returns the new child's
// level. The walk is bounded so a corrupted chain cannot loop forever.
func (s *chartService) resolveParentLevel(ctx context.Context, parentID string, selfID string) (int, error) {
	level := 0
	current := parentID
	for depth := 0; depth < domain.MaxSubGroupDepth; depth++ {
		if current == selfID {
			return 0, &apperrors.CycleError{SubGroupID: selfID, Depth: depth}
		}
		parent, err := s.chartRepo.FindSubGroupByID(ctx, current)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve parent sub-group %s: %w", current, err)
		}
		if depth == 0 {
			level = parent.Level + 1
		}
		if parent.ParentSubGroupID == nil {
			return level, nil
		}
		current = *parent.ParentSubGroupID
	}
	return 0, &apperrors.CycleError{SubGroupID: selfID, Depth: domain.MaxSubGroupDepth}
}

// CreateSubGroup persists a new sub-group under a group.
func (s *chartService) CreateSubGroup(ctx context.Context, req dto.CreateSubGroupRequest, userID string) (*domain.AccountSubGroup, error) {
	group, err := s.chartRepo.FindGroupByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.IsActive {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrGroupInactive)
	}

	existing, err := s.chartRepo.FindSubGroupByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check sub-group code uniqueness: %w", err)
	}
	if existing != nil {
		return nil, &apperrors.DuplicateCodeError{Code: req.Code}
	}

	subGroupID := uuid.NewString()
	level := 0
	if req.ParentSubGroupID != nil {
		parent, err := s.chartRepo.FindSubGroupByID(ctx, *req.ParentSubGroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to find parent sub-group: %w", err)
		}
		if parent.GroupID != req.GroupID {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrParentGroupMismatch)
		}
		level, err = s.resolveParentLevel(ctx, *req.ParentSubGroupID, subGroupID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	subGroup := domain.AccountSubGroup{
		SubGroupID:       subGroupID,
		Code:             req.Code,
		Name:             req.Name,
		GroupID:          req.GroupID,
		ParentSubGroupID: req.ParentSubGroupID,
		Level:            level,
		IsActive:         true,
		AuditFields:      domain.NewAuditFields(userID, now),
	}

	if err := s.chartRepo.SaveSubGroup(ctx, subGroup); err != nil {
		s.LogError(ctx, err, "Failed to save sub-group", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save sub-group: %w", err)
	}

	s.LogInfo(ctx, "Account sub-group created", slog.String("sub_group_id", subGroup.SubGroupID), slog.Int("level", level))
	return &subGroup, nil
}

// GetSubGroupByID retrieves a specific sub-group.
func (s *chartService) GetSubGroupByID(ctx context.Context, subGroupID string) (*domain.AccountSubGroup, error) {
	return s.chartRepo.FindSubGroupByID(ctx, subGroupID)
}

// ListSubGroups retrieves all sub-groups of a group.
func (s *chartService) ListSubGroups(ctx context.Context, groupID string) ([]domain.AccountSubGroup, error) {
	subGroups, err := s.chartRepo.ListSubGroupsByGroupID(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list sub-groups", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to list sub-groups: %w", err)
	}
	return subGroups, nil
}

// UpdateSubGroup updates a sub-group. Re-parenting re-walks the chain so a
// sub-group can never become its own ancestor, and re-levels the whole
// subtree underneath the moved node.
func (s *chartService) UpdateSubGroup(ctx context.Context, subGroupID string, req dto.UpdateSubGroupRequest, userID string) (*domain.AccountSubGroup, error) {
	subGroup, err := s.chartRepo.FindSubGroupByID(ctx, subGroupID)
	if err != nil {
		return nil, err
	}

	updated := false
	reparented := false
	if req.Name != nil {
		subGroup.Name = *req.Name
		updated = true
	}
	if req.IsActive != nil {
		subGroup.IsActive = *req.IsActive
		updated = true
	}
	if req.ParentSubGroupID != nil {
		newParentID := *req.ParentSubGroupID
		if newParentID == subGroupID {
			return nil, &apperrors.CycleError{SubGroupID: subGroupID, Depth: 0}
		}
		parent, err := s.chartRepo.FindSubGroupByID(ctx, newParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to find parent sub-group: %w", err)
		}
		if parent.GroupID != subGroup.GroupID {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrParentGroupMismatch)
		}
		level, err := s.resolveParentLevel(ctx, newParentID, subGroupID)
		if err != nil {
			return nil, err
		}
		subGroup.ParentSubGroupID = &newParentID
		reparented = subGroup.Level != level
		subGroup.Level = level
		updated = true
	}
	if !updated {
		return subGroup, nil
	}

	now := time.Now().UTC()
	subGroup.Touch(userID, now)
	if err := s.chartRepo.UpdateSubGroup(ctx, *subGroup); err != nil {
		s.LogError(ctx, err, "Failed to update sub-group", slog.String("sub_group_id", subGroupID))
		return nil, fmt.Errorf("failed to update sub-group: %w", err)
	}

	if reparented {
		if err := s.relevelDescendants(ctx, subGroup, userID, now); err != nil {
			s.LogError(ctx, err, "Failed to re-level sub-group descendants", slog.String("sub_group_id", subGroupID))
			return nil, fmt.Errorf("failed to re-level descendant sub-groups: %w", err)
		}
	}

	s.LogInfo(ctx, "Account sub-group updated", slog.String("sub_group_id", subGroupID))
	return subGroup, nil
}

// relevelDescendants walks the moved sub-group's subtree breadth first and
// rewrites each descendant's level relative to its parent's new depth.
func (s *chartService) relevelDescendants(ctx context.Context, root *domain.AccountSubGroup, userID string, now time.Time) error {
	siblings, err := s.chartRepo.ListSubGroupsByGroupID(ctx, root.GroupID)
	if err != nil {
		return fmt.Errorf("failed to list sub-groups of group %s: %w", root.GroupID, err)
	}

	children := make(map[string][]domain.AccountSubGroup, len(siblings))
	for _, sg := range siblings {
		if sg.ParentSubGroupID != nil {
			children[*sg.ParentSubGroupID] = append(children[*sg.ParentSubGroupID], sg)
		}
	}

	type frontier struct {
		id    string
		level int
	}
	queue := []frontier{{id: root.SubGroupID, level: root.Level}}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, child := range children[parent.id] {
			if child.Level != parent.level+1 {
				child.Level = parent.level + 1
				child.Touch(userID, now)
				if err := s.chartRepo.UpdateSubGroup(ctx, child); err != nil {
					return fmt.Errorf("failed to update level of sub-group %s: %w", child.SubGroupID, err)
				}
			}
			queue = append(queue, frontier{id: child.SubGroupID, level: parent.level + 1})
		}
	}
	return nil
}

// DeactivateSubGroup marks a sub-group inactive once nothing references it.
func (s *chartService) DeactivateSubGroup(ctx context.Context, subGroupID string, userID string) error {
	if _, err := s.chartRepo.FindSubGroupByID(ctx, subGroupID); err != nil {
		return err
	}

	ledgerCount, err := s.chartRepo.CountLedgersBySubGroupID(ctx, subGroupID)
	if err != nil {
		return fmt.Errorf("failed to count ledgers: %w", err)
	}
	if ledgerCount > 0 {
		return fmt.Errorf("%w: %w", apperrors.ErrConflict, ErrSubGroupHasLedgers)
	}

	childCount, err := s.chartRepo.CountChildSubGroups(ctx, subGroupID)
	if err != nil {
		return fmt.Errorf("failed to count child sub-groups: %w", err)
	}
	if childCount > 0 {
		return fmt.Errorf("%w: %w", apperrors.ErrConflict, ErrSubGroupHasChildren)
	}

	if err := s.chartRepo.DeactivateSubGroup(ctx, subGroupID, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate sub-group", slog.String("sub_group_id", subGroupID))
		return fmt.Errorf("failed to deactivate sub-group: %w", err)
	}

	s.LogInfo(ctx, "Account sub-group deactivated", slog.String("sub_group_id", subGroupID))
	return nil
}

// CreateLedger persists a new ledger account under a sub-group. A missing
// balance type defaults to the natural side of the owning group's type.
func (s *chartService) CreateLedger(ctx context.Context, req dto.CreateLedgerRequest, userID string) (*domain.AccountLedger, error) {
	subGroup, err := s.chartRepo.FindSubGroupByID(ctx, req.SubGroupID)
	if err != nil {
		return nil, err
	}
	if !subGroup.IsActive {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrSubGroupInactive)
	}

	existing, err := s.chartRepo.FindLedgerByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check ledger code uniqueness: %w", err)
	}
	if existing != nil {
		return nil, &apperrors.DuplicateCodeError{Code: req.Code}
	}

	balanceType := domain.DebitBalance
	if req.BalanceType != nil {
		balanceType = *req.BalanceType
	} else {
		group, err := s.chartRepo.FindGroupByID(ctx, subGroup.GroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve owning group: %w", err)
		}
		balanceType = domain.NaturalBalanceType(group.Type)
	}

	now := time.Now().UTC()
	ledger := domain.AccountLedger{
		LedgerID:       uuid.NewString(),
		Code:           req.Code,
		Name:           req.Name,
		SubGroupID:     req.SubGroupID,
		BalanceType:    balanceType,
		OpeningBalance: req.OpeningBalance,
		CurrentBalance: req.OpeningBalance,
		CurrencyCode:   req.CurrencyCode,
		Description:    req.Description,
		IsActive:       true,
		AuditFields:    domain.NewAuditFields(userID, now),
	}

	if err := s.chartRepo.SaveLedger(ctx, ledger); err != nil {
		s.LogError(ctx, err, "Failed to save ledger", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save ledger: %w", err)
	}

	s.LogInfo(ctx, "Ledger account created", slog.String("ledger_id", ledger.LedgerID), slog.String("code", ledger.Code))
	return &ledger, nil
}

// GetLedgerByID retrieves a specific ledger account.
func (s *chartService) GetLedgerByID(ctx context.Context, ledgerID string) (*domain.AccountLedger, error) {
	ledger, err := s.chartRepo.FindLedgerByID(ctx, ledgerID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find ledger", slog.String("ledger_id", ledgerID))
		}
		return nil, err
	}
	return ledger, nil
}

// GetLedgerHierarchy resolves the group to ledger path of an account.
func (s *chartService) GetLedgerHierarchy(ctx context.Context, ledgerID string) (*domain.LedgerHierarchy, error) {
	hierarchy, err := s.chartRepo.FindLedgerHierarchy(ctx, ledgerID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to resolve ledger hierarchy", slog.String("ledger_id", ledgerID))
		}
		return nil, err
	}
	return hierarchy, nil
}

// ListLedgers retrieves a paginated list of ledger accounts.
func (s *chartService) ListLedgers(ctx context.Context, params dto.ListLedgersParams) ([]domain.AccountLedger, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	ledgers, err := s.chartRepo.ListLedgers(ctx, limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledgers")
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	return ledgers, nil
}

// UpdateLedger updates an existing ledger's details. Balances are never
// touched here.
func (s *chartService) UpdateLedger(ctx context.Context, ledgerID string, req dto.UpdateLedgerRequest, userID string) (*domain.AccountLedger, error) {
	ledger, err := s.chartRepo.FindLedgerByID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		ledger.Name = *req.Name
		updated = true
	}
	if req.Description != nil {
		ledger.Description = *req.Description
		updated = true
	}
	if req.IsActive != nil {
		ledger.IsActive = *req.IsActive
		updated = true
	}
	if !updated {
		return ledger, nil
	}

	ledger.Touch(userID, time.Now().UTC())
	if err := s.chartRepo.UpdateLedger(ctx, *ledger); err != nil {
		s.LogError(ctx, err, "Failed to update ledger", slog.String("ledger_id", ledgerID))
		return nil, fmt.Errorf("failed to update ledger: %w", err)
	}

	s.LogInfo(ctx, "Ledger account updated", slog.String("ledger_id", ledgerID))
	return ledger, nil
}

// DeactivateLedger soft deletes a ledger. Its posting history stays available
// to reporting.
func (s *chartService) DeactivateLedger(ctx context.Context, ledgerID string, userID string) error {
	if _, err := s.chartRepo.FindLedgerByID(ctx, ledgerID); err != nil {
		return err
	}

	if err := s.chartRepo.DeactivateLedger(ctx, ledgerID, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate ledger", slog.String("ledger_id", ledgerID))
		return fmt.Errorf("failed to deactivate ledger: %w", err)
	}

	s.LogInfo(ctx, "Ledger account deactivated", slog.String("ledger_id", ledgerID))
	return nil
}
