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
	"github.com/shopspring/decimal"
)

// varianceService computes and stores budget-to-actual variance snapshots.
type varianceService struct {
	BaseService
	budgetRepo   portsrepo.BudgetRepositoryFacade
	varianceRepo portsrepo.VarianceRepository
	// neutralThreshold is the relative band, in percent, inside which a
	// variance counts as neutral rather than favorable or unfavorable.
	neutralThreshold decimal.Decimal
}

// NewVarianceService creates a new VarianceService.
func NewVarianceService(budgetRepo portsrepo.BudgetRepositoryFacade, varianceRepo portsrepo.VarianceRepository, neutralThreshold decimal.Decimal) portssvc.VarianceSvc {
	return &varianceService{
		budgetRepo:       budgetRepo,
		varianceRepo:     varianceRepo,
		neutralThreshold: neutralThreshold,
	}
}

// Ensure varianceService implements the portssvc.VarianceSvc interface
var _ portssvc.VarianceSvc = (*varianceService)(nil)

// classify determines the variance status. The variance amount is always
// actual minus budgeted; for expense budgets a negative variance (underspend)
// is favorable, for revenue budgets the sign convention flips.
func (s *varianceService) classify(budgeted, variance decimal.Decimal, percent *decimal.Decimal, kind domain.BudgetKind) domain.VarianceStatus {
	if percent != nil {
		if percent.Abs().LessThanOrEqual(s.neutralThreshold) {
			return domain.VarianceNeutral
		}
	} else if variance.IsZero() {
		// Zero budget and zero actual.
		return domain.VarianceNeutral
	}

	favorable := variance.IsNegative()
	if kind == domain.BudgetKindRevenue {
		favorable = !favorable
	}
	if favorable {
		return domain.VarianceFavorable
	}
	return domain.VarianceUnfavorable
}

// variancePercent returns variance relative to budget in percent, or nil when
// the budgeted amount is zero and the ratio is undefined.
func variancePercent(budgeted, variance decimal.Decimal) *decimal.Decimal {
	if budgeted.IsZero() {
		return nil
	}
	pct := variance.Div(budgeted).Mul(decimal.NewFromInt(100))
	return &pct
}

// ComputeVariance computes and stores a variance snapshot for one budget.
// The snapshot is keyed on (budget, period, as-of date); recomputation
// replaces the stored snapshot instead of duplicating it.
func (s *varianceService) ComputeVariance(ctx context.Context, budgetID string, req dto.ComputeVarianceRequest, userID string) (*domain.BudgetVariance, error) {
	if !domain.ValidVariancePeriod(req.Period) {
		return nil, fmt.Errorf("%w: unknown variance period %q", apperrors.ErrValidation, req.Period)
	}

	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	categories := make([]domain.CategoryVariance, len(budget.Categories))
	for i, cat := range budget.Categories {
		variance := cat.SpentAmount.Sub(cat.AllocatedAmount)
		percent := variancePercent(cat.AllocatedAmount, variance)
		categories[i] = domain.CategoryVariance{
			Name:            cat.Name,
			Type:            cat.Type,
			BudgetedAmount:  cat.AllocatedAmount,
			ActualAmount:    cat.SpentAmount,
			VarianceAmount:  variance,
			VariancePercent: percent,
			Status:          s.classify(cat.AllocatedAmount, variance, percent, budget.Kind),
		}
	}

	totalVariance := budget.ActualSpent.Sub(budget.TotalBudget)
	totalPercent := variancePercent(budget.TotalBudget, totalVariance)

	now := time.Now().UTC()
	snapshot := domain.BudgetVariance{
		VarianceID:      uuid.NewString(),
		BudgetID:        budgetID,
		Period:          req.Period,
		AsOfDate:        req.AsOf,
		BudgetedAmount:  budget.TotalBudget,
		ActualAmount:    budget.ActualSpent,
		VarianceAmount:  totalVariance,
		VariancePercent: totalPercent,
		Status:          s.classify(budget.TotalBudget, totalVariance, totalPercent, budget.Kind),
		Categories:      categories,
		AuditFields:     domain.NewAuditFields(userID, now),
	}

	if err := s.varianceRepo.UpsertVariance(ctx, snapshot); err != nil {
		s.LogError(ctx, err, "Failed to store variance snapshot", slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to store variance snapshot: %w", err)
	}

	s.LogInfo(ctx, "Variance computed",
		slog.String("budget_id", budgetID),
		slog.String("period", string(req.Period)),
		slog.String("status", string(snapshot.Status)),
	)
	return &snapshot, nil
}

// GetVariance retrieves a stored variance snapshot.
func (s *varianceService) GetVariance(ctx context.Context, budgetID string, period domain.VariancePeriod, asOf time.Time) (*domain.BudgetVariance, error) {
	snapshot, err := s.varianceRepo.FindVariance(ctx, budgetID, period, asOf)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find variance snapshot", slog.String("budget_id", budgetID))
		}
		return nil, err
	}
	return snapshot, nil
}

// VarianceTrend retrieves a budget's historical variance series, oldest first.
func (s *varianceService) VarianceTrend(ctx context.Context, budgetID string, params dto.VarianceTrendParams) ([]domain.VarianceTrendPoint, error) {
	period := params.Period
	if period == "" {
		period = domain.PeriodMonthly
	}

	from := params.From
	to := params.To
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(-1, 0, 0)
	}

	if _, err := s.budgetRepo.FindBudgetByID(ctx, budgetID); err != nil {
		return nil, err
	}

	points, err := s.varianceRepo.ListVarianceTrend(ctx, budgetID, period, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to list variance trend", slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to retrieve variance trend: %w", err)
	}
	return points, nil
}
