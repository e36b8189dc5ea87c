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
	ErrDuplicateCategoryName = errors.New("budget category names must be unique")
	ErrCategoryNotFound      = errors.New("budget category not found")
	ErrBudgetClosed          = errors.New("budget is closed")
	ErrSpendNotPositive      = errors.New("spend amount must be positive")
	ErrAllocationNegative    = errors.New("category allocation must not be negative")
)

// budgetService manages budget lifecycle, categories and actuals rollups.
type budgetService struct {
	BaseService
	budgetRepo portsrepo.BudgetRepositoryFacade
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(budgetRepo portsrepo.BudgetRepositoryFacade) portssvc.BudgetSvcFacade {
	return &budgetService{budgetRepo: budgetRepo}
}

// Ensure budgetService implements the portssvc.BudgetSvcFacade interface
var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

// buildCategories converts category inputs to domain categories, deriving
// item totals and validating types and name uniqueness. Existing spent
// amounts are carried over by category name so edits never erase actuals.
func buildCategories(inputs []dto.BudgetCategoryInput, existingSpent map[string]decimal.Decimal) ([]domain.BudgetCategory, error) {
	names := make(map[string]struct{}, len(inputs))
	categories := make([]domain.BudgetCategory, len(inputs))
	for i, in := range inputs {
		if !domain.ValidCategoryType(in.Type) {
			return nil, fmt.Errorf("%w: unknown category type %q", apperrors.ErrValidation, in.Type)
		}
		if _, dup := names[in.Name]; dup {
			return nil, fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrDuplicateCategoryName, in.Name)
		}
		names[in.Name] = struct{}{}
		if in.AllocatedAmount.IsNegative() {
			return nil, fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrAllocationNegative, in.Name)
		}

		items := make([]domain.BudgetItem, len(in.Items))
		for j, item := range in.Items {
			if item.Quantity.IsNegative() || item.UnitCost.IsNegative() {
				return nil, fmt.Errorf("%w: item %q quantity and unit cost must not be negative", apperrors.ErrValidation, item.Name)
			}
			items[j] = domain.BudgetItem{
				Name:        item.Name,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitCost:    item.UnitCost,
				TotalCost:   accounting.Round(item.Quantity.Mul(item.UnitCost)),
			}
		}

		spent := decimal.Zero
		if existingSpent != nil {
			if prev, ok := existingSpent[in.Name]; ok {
				spent = prev
			}
		}
		categories[i] = domain.BudgetCategory{
			Name:            in.Name,
			Type:            in.Type,
			AllocatedAmount: accounting.Round(in.AllocatedAmount),
			SpentAmount:     spent,
			Items:           items,
		}
	}
	return categories, nil
}

// CreateBudget persists a new budget with derived item costs and rollups.
func (s *budgetService) CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error) {
	if req.TotalBudget.IsNegative() {
		return nil, fmt.Errorf("%w: total budget must not be negative", apperrors.ErrValidation)
	}

	categories, err := buildCategories(req.Categories, nil)
	if err != nil {
		return nil, err
	}

	kind := req.Kind
	if kind == "" {
		kind = domain.BudgetKindExpense
	}

	now := time.Now().UTC()
	budget := domain.Budget{
		BudgetID:     uuid.NewString(),
		Name:         req.Name,
		FiscalYear:   req.FiscalYear,
		DepartmentID: req.DepartmentID,
		ProjectID:    req.ProjectID,
		Kind:         kind,
		Status:       domain.BudgetDraft,
		CurrencyCode: req.CurrencyCode,
		TotalBudget:  accounting.Round(req.TotalBudget),
		Categories:   categories,
		AuditFields:  domain.NewAuditFields(userID, now),
	}
	// An omitted total starts out as the sum of category allocations. After
	// creation the total only moves through updates and transfers.
	if budget.TotalBudget.IsZero() {
		budget.TotalBudget = budget.AllocatedTotal()
	}
	budget.Recalculate()

	for _, cat := range budget.Categories {
		if cat.OverAllocated() {
			s.LogInfo(ctx, "Category items exceed allocation",
				slog.String("budget_id", budget.BudgetID),
				slog.String("category", cat.Name),
				slog.String("item_total", cat.ItemTotal().String()),
				slog.String("allocated", cat.AllocatedAmount.String()),
			)
		}
	}

	if err := s.budgetRepo.SaveBudget(ctx, budget); err != nil {
		s.LogError(ctx, err, "Failed to save budget", slog.String("name", req.Name))
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	s.LogInfo(ctx, "Budget created",
		slog.String("budget_id", budget.BudgetID),
		slog.Int("fiscal_year", budget.FiscalYear),
		slog.String("total", budget.TotalBudget.String()),
	)
	return &budget, nil
}

// GetBudgetByID retrieves a specific budget.
func (s *budgetService) GetBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find budget", slog.String("budget_id", budgetID))
		}
		return nil, err
	}
	return budget, nil
}

// ListBudgets retrieves a paginated list of budgets.
func (s *budgetService) ListBudgets(ctx context.Context, params dto.ListBudgetsParams) ([]domain.Budget, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	budgets, err := s.budgetRepo.ListBudgets(ctx, params.FiscalYear, limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list budgets")
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

// UpdateBudget updates a budget's details or categories and refreshes the
// rollups. Spent amounts survive category edits; they only move through
// RecordSpend.
func (s *budgetService) UpdateBudget(ctx context.Context, budgetID string, req dto.UpdateBudgetRequest, userID string) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget.Status == domain.BudgetClosed {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrWorkflow, ErrBudgetClosed)
	}

	updated := false
	if req.Name != nil {
		budget.Name = *req.Name
		updated = true
	}
	if req.Status != nil {
		budget.Status = *req.Status
		updated = true
	}
	if len(req.Categories) > 0 {
		existingSpent := make(map[string]decimal.Decimal, len(budget.Categories))
		for _, cat := range budget.Categories {
			existingSpent[cat.Name] = cat.SpentAmount
		}
		categories, err := buildCategories(req.Categories, existingSpent)
		if err != nil {
			return nil, err
		}
		budget.Categories = categories
		// A category rewrite re-bases the total on the new allocations.
		budget.TotalBudget = budget.AllocatedTotal()
		updated = true
	}
	if !updated {
		return budget, nil
	}

	budget.Recalculate()
	budget.Touch(userID, time.Now().UTC())
	if err := s.budgetRepo.UpdateBudget(ctx, *budget); err != nil {
		s.LogError(ctx, err, "Failed to update budget", slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}

	s.LogInfo(ctx, "Budget updated", slog.String("budget_id", budgetID))
	return budget, nil
}

// RecordSpend records actual spending against one category. Spent amounts are
// monotonic: negative adjustments go through a journal reversal and a fresh
// recording, never a direct decrement.
func (s *budgetService) RecordSpend(ctx context.Context, budgetID string, req dto.RecordSpendRequest, userID string) (*domain.Budget, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrSpendNotPositive)
	}

	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget.Status == domain.BudgetClosed {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrWorkflow, ErrBudgetClosed)
	}

	found := false
	for i := range budget.Categories {
		if budget.Categories[i].Name == req.CategoryName {
			budget.Categories[i].SpentAmount = budget.Categories[i].SpentAmount.Add(accounting.Round(req.Amount))
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %w: %s", apperrors.ErrNotFound, ErrCategoryNotFound, req.CategoryName)
	}

	budget.Recalculate()
	budget.Touch(userID, time.Now().UTC())
	if err := s.budgetRepo.UpdateBudget(ctx, *budget); err != nil {
		s.LogError(ctx, err, "Failed to record spend", slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to record spend: %w", err)
	}

	s.LogInfo(ctx, "Spend recorded",
		slog.String("budget_id", budgetID),
		slog.String("category", req.CategoryName),
		slog.String("amount", req.Amount.String()),
		slog.String("reference", req.Reference),
	)
	return budget, nil
}
