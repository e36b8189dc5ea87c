package services_test

import (
	"context"
	"testing"

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
type BudgetServiceTestSuite struct {
	suite.Suite
	mockBudgetRepo *MockBudgetRepository
	service        portssvc.BudgetSvcFacade
	userID         string
}

func (suite *BudgetServiceTestSuite) SetupTest() {
	suite.mockBudgetRepo = new(MockBudgetRepository)
	suite.service = services.NewBudgetService(suite.mockBudgetRepo)
	suite.userID = uuid.NewString()
}

func (suite *BudgetServiceTestSuite) sampleBudget() *domain.Budget {
	budget := &domain.Budget{
		BudgetID:     uuid.NewString(),
		Name:         "Engineering FY26",
		FiscalYear:   2026,
		Kind:         domain.BudgetKindExpense,
		Status:       domain.BudgetActive,
		CurrencyCode: "USD",
		TotalBudget:  decimal.NewFromInt(100000),
		Categories: []domain.BudgetCategory{
			{Name: "Salaries", Type: domain.CategoryLabor, AllocatedAmount: decimal.NewFromInt(80000), SpentAmount: decimal.NewFromInt(20000)},
			{Name: "Laptops", Type: domain.CategoryEquipment, AllocatedAmount: decimal.NewFromInt(20000), SpentAmount: decimal.NewFromInt(5000)},
		},
	}
	budget.Recalculate()
	return budget
}

// --- Test Cases ---

func (suite *BudgetServiceTestSuite) TestCreateBudget_DerivesTotals() {
	ctx := context.Background()
	req := dto.CreateBudgetRequest{
		Name:         "Marketing FY26",
		FiscalYear:   2026,
		CurrencyCode: "USD",
		Categories: []dto.BudgetCategoryInput{
			{
				Name:            "Campaigns",
				Type:            domain.CategoryOverhead,
				AllocatedAmount: decimal.NewFromInt(50000),
				Items: []dto.BudgetItemInput{
					{Name: "Spring launch", Quantity: decimal.NewFromInt(3), UnitCost: decimal.NewFromFloat(1333.333)},
				},
			},
			{Name: "Agency", Type: domain.CategoryLabor, AllocatedAmount: decimal.NewFromInt(30000)},
		},
	}

	var saved domain.Budget
	suite.mockBudgetRepo.On("SaveBudget", ctx, mock.AnythingOfType("domain.Budget")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.Budget)
		}).
		Return(nil).Once()

	budget, err := suite.service.CreateBudget(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.BudgetDraft, budget.Status)
	suite.Equal(domain.BudgetKindExpense, budget.Kind)
	// Total derives from category allocations when not supplied.
	suite.True(budget.TotalBudget.Equal(decimal.NewFromInt(80000)))
	suite.True(budget.Remaining.Equal(decimal.NewFromInt(80000)))
	// Item total cost is quantity x unit cost, rounded to money precision.
	suite.True(saved.Categories[0].Items[0].TotalCost.Equal(decimal.NewFromInt(4000)))
	suite.mockBudgetRepo.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestCreateBudget_DuplicateCategoryName() {
	ctx := context.Background()
	req := dto.CreateBudgetRequest{
		Name:         "Ops FY26",
		FiscalYear:   2026,
		CurrencyCode: "USD",
		Categories: []dto.BudgetCategoryInput{
			{Name: "Hosting", Type: domain.CategoryOverhead, AllocatedAmount: decimal.NewFromInt(100)},
			{Name: "Hosting", Type: domain.CategoryEquipment, AllocatedAmount: decimal.NewFromInt(200)},
		},
	}

	_, err := suite.service.CreateBudget(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrDuplicateCategoryName)
	suite.mockBudgetRepo.AssertNotCalled(suite.T(), "SaveBudget", mock.Anything, mock.Anything)
}

func (suite *BudgetServiceTestSuite) TestCreateBudget_InvalidCategoryType() {
	ctx := context.Background()
	req := dto.CreateBudgetRequest{
		Name:         "Ops FY26",
		FiscalYear:   2026,
		CurrencyCode: "USD",
		Categories: []dto.BudgetCategoryInput{
			{Name: "Misc", Type: domain.CategoryType("TRAVEL"), AllocatedAmount: decimal.NewFromInt(100)},
		},
	}

	_, err := suite.service.CreateBudget(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BudgetServiceTestSuite) TestUpdateBudget_CategoryRewriteKeepsSpend() {
	ctx := context.Background()
	budget := suite.sampleBudget()

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()

	var saved domain.Budget
	suite.mockBudgetRepo.On("UpdateBudget", ctx, mock.AnythingOfType("domain.Budget")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.Budget)
		}).
		Return(nil).Once()

	req := dto.UpdateBudgetRequest{
		Categories: []dto.BudgetCategoryInput{
			{Name: "Salaries", Type: domain.CategoryLabor, AllocatedAmount: decimal.NewFromInt(90000)},
			{Name: "Cloud", Type: domain.CategoryOverhead, AllocatedAmount: decimal.NewFromInt(10000)},
		},
	}

	updated, err := suite.service.UpdateBudget(ctx, budget.BudgetID, req, suite.userID)

	suite.Require().NoError(err)
	// Spend carries over by name; the dropped category's spend is gone, the
	// new category starts at zero.
	suite.True(saved.Categories[0].SpentAmount.Equal(decimal.NewFromInt(20000)))
	suite.True(saved.Categories[1].SpentAmount.IsZero())
	// Total follows the new allocations.
	suite.True(updated.TotalBudget.Equal(decimal.NewFromInt(100000)))
	suite.True(updated.ActualSpent.Equal(decimal.NewFromInt(20000)))
	suite.mockBudgetRepo.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestUpdateBudget_Closed() {
	ctx := context.Background()
	budget := suite.sampleBudget()
	budget.Status = domain.BudgetClosed

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()

	name := "Renamed"
	_, err := suite.service.UpdateBudget(ctx, budget.BudgetID, dto.UpdateBudgetRequest{Name: &name}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrBudgetClosed)
	suite.ErrorIs(err, apperrors.ErrWorkflow)
	suite.mockBudgetRepo.AssertNotCalled(suite.T(), "UpdateBudget", mock.Anything, mock.Anything)
}

func (suite *BudgetServiceTestSuite) TestRecordSpend_Success() {
	ctx := context.Background()
	budget := suite.sampleBudget()

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockBudgetRepo.On("UpdateBudget", ctx, mock.AnythingOfType("domain.Budget")).Return(nil).Once()

	req := dto.RecordSpendRequest{CategoryName: "Laptops", Amount: decimal.NewFromInt(3000), Reference: "PO-1881"}
	updated, err := suite.service.RecordSpend(ctx, budget.BudgetID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(updated.Categories[1].SpentAmount.Equal(decimal.NewFromInt(8000)))
	suite.True(updated.ActualSpent.Equal(decimal.NewFromInt(28000)))
	suite.True(updated.Remaining.Equal(decimal.NewFromInt(72000)))
	suite.mockBudgetRepo.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestRecordSpend_NegativeAmount() {
	ctx := context.Background()

	req := dto.RecordSpendRequest{CategoryName: "Laptops", Amount: decimal.NewFromInt(-50)}
	_, err := suite.service.RecordSpend(ctx, uuid.NewString(), req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrSpendNotPositive)
	suite.mockBudgetRepo.AssertNotCalled(suite.T(), "FindBudgetByID", mock.Anything, mock.Anything)
}

func (suite *BudgetServiceTestSuite) TestRecordSpend_UnknownCategory() {
	ctx := context.Background()
	budget := suite.sampleBudget()

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()

	req := dto.RecordSpendRequest{CategoryName: "Travel", Amount: decimal.NewFromInt(100)}
	_, err := suite.service.RecordSpend(ctx, budget.BudgetID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrCategoryNotFound)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *BudgetServiceTestSuite) TestListBudgets_DefaultsLimit() {
	ctx := context.Background()
	suite.mockBudgetRepo.On("ListBudgets", ctx, (*int)(nil), 20, 0).
		Return([]domain.Budget{*suite.sampleBudget()}, nil).Once()

	budgets, err := suite.service.ListBudgets(ctx, dto.ListBudgetsParams{})

	suite.Require().NoError(err)
	suite.Len(budgets, 1)
	suite.mockBudgetRepo.AssertExpectations(suite.T())
}

func TestBudgetServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetServiceTestSuite))
}
