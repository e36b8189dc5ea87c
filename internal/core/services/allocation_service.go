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
	"github.com/fincore-erp/gl_budget_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

var (
	ErrAllocationNotPositive = errors.New("allocation amount must be positive")
	ErrRulePercentageRange   = errors.New("rule percentage must be greater than zero and at most 100")
	ErrDuplicateTarget       = errors.New("each target cost center may appear in at most one rule")
	ErrTargetIsSource        = errors.New("a rule cannot target the source cost center")
	ErrAllocationNotPending  = errors.New("allocation is not pending")
)

// allocationService runs the cost allocation workflow.
type allocationService struct {
	BaseService
	allocationRepo portsrepo.AllocationRepositoryFacade
}

// NewAllocationService creates a new AllocationService.
func NewAllocationService(allocationRepo portsrepo.AllocationRepositoryFacade) portssvc.AllocationSvc {
	return &allocationService{allocationRepo: allocationRepo}
}

// Ensure allocationService implements the portssvc.AllocationSvc interface
var _ portssvc.AllocationSvc = (*allocationService)(nil)

// validateRules enforces percentage ranges, unique targets and the 100%
// ceiling across the rule set.
func validateRules(sourceID string, inputs []dto.AllocationRuleInput) ([]domain.AllocationRule, error) {
	hundred := decimal.NewFromInt(100)
	total := decimal.Zero
	targets := make(map[string]struct{}, len(inputs))
	rules := make([]domain.AllocationRule, len(inputs))

	for i, in := range inputs {
		if in.TargetCostCenterID == sourceID {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrTargetIsSource)
		}
		if _, dup := targets[in.TargetCostCenterID]; dup {
			return nil, fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrDuplicateTarget, in.TargetCostCenterID)
		}
		targets[in.TargetCostCenterID] = struct{}{}

		if !in.Percentage.IsPositive() || in.Percentage.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrRulePercentageRange, in.Percentage)
		}
		total = total.Add(in.Percentage)
		rules[i] = domain.AllocationRule{
			TargetCostCenterID: in.TargetCostCenterID,
			Percentage:         in.Percentage,
		}
	}

	if total.GreaterThan(hundred) {
		return nil, &apperrors.OverAllocationError{TotalPercent: total}
	}
	return rules, nil
}

// CreateAllocation validates the rules and persists an allocation with its
// computed shares.
func (s *allocationService) CreateAllocation(ctx context.Context, req dto.CreateAllocationRequest, userID string) (*domain.CostAllocation, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrAllocationNotPositive)
	}

	rules, err := validateRules(req.SourceCostCenterID, req.Rules)
	if err != nil {
		return nil, err
	}

	amount := accounting.Round(req.Amount)
	now := time.Now().UTC()
	allocation := domain.CostAllocation{
		AllocationID:       uuid.NewString(),
		SourceCostCenterID: req.SourceCostCenterID,
		Amount:             amount,
		Rules:              rules,
		Shares:             accounting.ComputeAllocationShares(amount, rules),
		Description:        req.Description,
		Status:             domain.AllocationPending,
		AuditFields:        domain.NewAuditFields(userID, now),
	}

	if err := s.allocationRepo.SaveAllocation(ctx, allocation); err != nil {
		s.LogError(ctx, err, "Failed to save allocation", slog.String("source", req.SourceCostCenterID))
		return nil, fmt.Errorf("failed to save allocation: %w", err)
	}

	s.LogInfo(ctx, "Cost allocation created",
		slog.String("allocation_id", allocation.AllocationID),
		slog.String("amount", amount.String()),
		slog.Int("rules", len(rules)),
	)
	return &allocation, nil
}

// GetAllocationByID retrieves a specific allocation.
func (s *allocationService) GetAllocationByID(ctx context.Context, allocationID string) (*domain.CostAllocation, error) {
	allocation, err := s.allocationRepo.FindAllocationByID(ctx, allocationID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find allocation", slog.String("allocation_id", allocationID))
		}
		return nil, err
	}
	return allocation, nil
}

// ListAllocationsBySource retrieves allocations originating from a cost center.
func (s *allocationService) ListAllocationsBySource(ctx context.Context, sourceCostCenterID string, limit, offset int) ([]domain.CostAllocation, error) {
	if limit <= 0 {
		limit = 20
	}
	allocations, err := s.allocationRepo.ListAllocationsBySourceID(ctx, sourceCostCenterID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list allocations", slog.String("source", sourceCostCenterID))
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	return allocations, nil
}

// transition moves a pending allocation to a terminal state.
func (s *allocationService) transition(ctx context.Context, allocationID string, target domain.AllocationStatus, userID string) (*domain.CostAllocation, error) {
	allocation, err := s.allocationRepo.FindAllocationByID(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	if allocation.Status != domain.AllocationPending {
		return nil, fmt.Errorf("%w: %w: status is %s", apperrors.ErrWorkflow, ErrAllocationNotPending, allocation.Status)
	}

	now := time.Now().UTC()
	if err := s.allocationRepo.UpdateAllocationStatus(ctx, allocationID, target, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to update allocation status", slog.String("allocation_id", allocationID))
		return nil, fmt.Errorf("failed to update allocation status: %w", err)
	}

	allocation.Status = target
	allocation.Touch(userID, now)
	s.LogInfo(ctx, "Cost allocation transitioned",
		slog.String("allocation_id", allocationID),
		slog.String("status", string(target)),
	)
	return allocation, nil
}

// CompleteAllocation marks a pending allocation completed.
func (s *allocationService) CompleteAllocation(ctx context.Context, allocationID string, userID string) (*domain.CostAllocation, error) {
	return s.transition(ctx, allocationID, domain.AllocationCompleted, userID)
}

// CancelAllocation marks a pending allocation cancelled.
func (s *allocationService) CancelAllocation(ctx context.Context, allocationID string, userID string) (*domain.CostAllocation, error) {
	return s.transition(ctx, allocationID, domain.AllocationCancelled, userID)
}
