package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/core/services"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
)

// --- Test Suite Setup ---
type VarianceServiceTestSuite struct {
	suite.Suite
	mockBudgetRepo   *MockBudgetRepository
	mockVarianceRepo *MockVarianceRepository
	service          portssvc.VarianceSvc
	userID           string
	asOf             time.Time
}

func (suite *VarianceServiceTestSuite) SetupTest() {
	suite.mockBudgetRepo = new(MockBudgetRepository)
	suite.mockVarianceRepo = new(MockVarianceRepository)
	suite.service = services.NewVarianceService(suite.mockBudgetRepo, suite.mockVarianceRepo, decimal.NewFromFloat(2.0))
	suite.userID = uuid.NewString()
	suite.asOf = time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
}

func (suite *VarianceServiceTestSuite) budgetWith(kind domain.BudgetKind, allocated, spent int64) *domain.Budget {
	budget := &domain.Budget{
		BudgetID:     uuid.NewString(),
		Name:         "FY26",
		FiscalYear:   2026,
		Kind:         kind,
		Status:       domain.BudgetActive,
		CurrencyCode: "USD",
		TotalBudget:  decimal.NewFromInt(allocated),
		Categories: []domain.BudgetCategory{
			{Name: "Main", Type: domain.CategoryOverhead, AllocatedAmount: decimal.NewFromInt(allocated), SpentAmount: decimal.NewFromInt(spent)},
		},
	}
	budget.Recalculate()
	return budget
}

// --- Test Cases ---

func (suite *VarianceServiceTestSuite) TestComputeVariance_UnderspendIsFavorable() {
	ctx := context.Background()
	// Variance is actual minus budgeted, so an underspend comes out negative.
	budget := suite.budgetWith(domain.BudgetKindExpense, 10000, 8500)

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockVarianceRepo.On("UpsertVariance", ctx, mock.AnythingOfType("domain.BudgetVariance")).Return(nil).Once()

	req := dto.ComputeVarianceRequest{Period: domain.PeriodMonthly, AsOf: suite.asOf}
	snapshot, err := suite.service.ComputeVariance(ctx, budget.BudgetID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(snapshot.VarianceAmount.Equal(decimal.NewFromInt(-1500)))
	suite.Require().NotNil(snapshot.VariancePercent)
	suite.True(snapshot.VariancePercent.Equal(decimal.NewFromInt(-15)))
	suite.Equal(domain.VarianceFavorable, snapshot.Status)
	suite.Require().Len(snapshot.Categories, 1)
	suite.True(snapshot.Categories[0].VarianceAmount.Equal(decimal.NewFromInt(-1500)))
	suite.Equal(domain.VarianceFavorable, snapshot.Categories[0].Status)
	suite.mockVarianceRepo.AssertExpectations(suite.T())
}

func (suite *VarianceServiceTestSuite) TestComputeVariance_OverspendIsUnfavorable() {
	ctx := context.Background()
	budget := suite.budgetWith(domain.BudgetKindExpense, 10000, 11000)

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockVarianceRepo.On("UpsertVariance", ctx, mock.AnythingOfType("domain.BudgetVariance")).Return(nil).Once()

	req := dto.ComputeVarianceRequest{Period: domain.PeriodMonthly, AsOf: suite.asOf}
	snapshot, err := suite.service.ComputeVariance(ctx, budget.BudgetID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(snapshot.VarianceAmount.Equal(decimal.NewFromInt(1000)))
	suite.Equal(domain.VarianceUnfavorable, snapshot.Status)
}

func (suite *VarianceServiceTestSuite) TestComputeVariance_SmallGapIsNeutral() {
	ctx := context.Background()
	// 1.5% under budget stays inside the 2% neutral band.
	budget := suite.budgetWith(domain.BudgetKindExpense, 10000, 9850)

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockVarianceRepo.On("UpsertVariance", ctx, mock.AnythingOfType("domain.BudgetVariance")).Return(nil).Once()

	req := dto.ComputeVarianceRequest{Period: domain.PeriodMonthly, AsOf: suite.asOf}
	snapshot, err := suite.service.ComputeVariance(ctx, budget.BudgetID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.VarianceNeutral, snapshot.Status)
}

func (suite *VarianceServiceTestSuite) TestComputeVariance_RevenueFlipsSign() {
	ctx := context.Background()
	// A revenue budget that beats its target (actual above budget) is
	// favorable even though the raw variance is positive.
	budget := suite.budgetWith(domain.BudgetKindRevenue, 10000, 12000)

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockVarianceRepo.On("UpsertVariance", ctx, mock.AnythingOfType("domain.BudgetVariance")).Return(nil).Once()

	req := dto.ComputeVarianceRequest{Period: domain.PeriodQuarterly, AsOf: suite.asOf}
	snapshot, err := suite.service.ComputeVariance(ctx, budget.BudgetID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(snapshot.VarianceAmount.Equal(decimal.NewFromInt(2000)))
	suite.Equal(domain.VarianceFavorable, snapshot.Status)
}

func (suite *VarianceServiceTestSuite) TestComputeVariance_ZeroBudgetNilPercent() {
	ctx := context.Background()
	budget := &domain.Budget{
		BudgetID:   uuid.NewString(),
		Kind:       domain.BudgetKindExpense,
		Status:     domain.BudgetActive,
		FiscalYear: 2026,
		Categories: []domain.BudgetCategory{
			{Name: "Unbudgeted", Type: domain.CategoryOverhead, AllocatedAmount: decimal.Zero, SpentAmount: decimal.NewFromInt(500)},
		},
	}
	budget.Recalculate()

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockVarianceRepo.On("UpsertVariance", ctx, mock.AnythingOfType("domain.BudgetVariance")).Return(nil).Once()

	req := dto.ComputeVarianceRequest{Period: domain.PeriodMonthly, AsOf: suite.asOf}
	snapshot, err := suite.service.ComputeVariance(ctx, budget.BudgetID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Nil(snapshot.VariancePercent)
	suite.True(snapshot.VarianceAmount.Equal(decimal.NewFromInt(500)))
	// Spending against a zero budget is never neutral.
	suite.Equal(domain.VarianceUnfavorable, snapshot.Status)
}

func (suite *VarianceServiceTestSuite) TestComputeVariance_InvalidPeriod() {
	ctx := context.Background()

	req := dto.ComputeVarianceRequest{Period: domain.VariancePeriod("WEEKLY"), AsOf: suite.asOf}
	_, err := suite.service.ComputeVariance(ctx, uuid.NewString(), req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockVarianceRepo.AssertNotCalled(suite.T(), "UpsertVariance", mock.Anything, mock.Anything)
}

func (suite *VarianceServiceTestSuite) TestVarianceTrend_DefaultsWindow() {
	ctx := context.Background()
	budgetID := uuid.NewString()

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budgetID).Return(&domain.Budget{BudgetID: budgetID}, nil).Once()
	suite.mockVarianceRepo.On("ListVarianceTrend", ctx, budgetID, domain.PeriodMonthly, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return([]domain.VarianceTrendPoint{
			{AsOfDate: suite.asOf, Status: domain.VarianceNeutral},
		}, nil).Once()

	points, err := suite.service.VarianceTrend(ctx, budgetID, dto.VarianceTrendParams{})

	suite.Require().NoError(err)
	suite.Len(points, 1)
	suite.mockVarianceRepo.AssertExpectations(suite.T())
}

func TestVarianceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VarianceServiceTestSuite))
}
