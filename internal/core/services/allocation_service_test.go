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
type AllocationServiceTestSuite struct {
	suite.Suite
	mockAllocationRepo *MockAllocationRepository
	service            portssvc.AllocationSvc
	sourceID           string
	userID             string
}

func (suite *AllocationServiceTestSuite) SetupTest() {
	suite.mockAllocationRepo = new(MockAllocationRepository)
	suite.service = services.NewAllocationService(suite.mockAllocationRepo)
	suite.sourceID = uuid.NewString()
	suite.userID = uuid.NewString()
}

// --- Test Cases ---

func (suite *AllocationServiceTestSuite) TestCreateAllocation_ResidualToLastShare() {
	ctx := context.Background()
	targetA := uuid.NewString()
	targetB := uuid.NewString()
	targetC := uuid.NewString()

	req := dto.CreateAllocationRequest{
		SourceCostCenterID: suite.sourceID,
		Amount:             decimal.NewFromInt(1000),
		Description:        "Shared IT costs",
		Rules: []dto.AllocationRuleInput{
			{TargetCostCenterID: targetA, Percentage: decimal.NewFromInt(33)},
			{TargetCostCenterID: targetB, Percentage: decimal.NewFromInt(33)},
			{TargetCostCenterID: targetC, Percentage: decimal.NewFromInt(34)},
		},
	}

	suite.mockAllocationRepo.On("SaveAllocation", ctx, mock.AnythingOfType("domain.CostAllocation")).Return(nil).Once()

	allocation, err := suite.service.CreateAllocation(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.AllocationPending, allocation.Status)
	suite.Require().Len(allocation.Shares, 3)
	suite.True(allocation.Shares[0].Amount.Equal(decimal.NewFromInt(330)))
	suite.True(allocation.Shares[1].Amount.Equal(decimal.NewFromInt(330)))
	suite.True(allocation.Shares[2].Amount.Equal(decimal.NewFromInt(340)))

	// Shares sum to the allocated portion exactly.
	sum := decimal.Zero
	for _, share := range allocation.Shares {
		sum = sum.Add(share.Amount)
	}
	suite.True(sum.Equal(decimal.NewFromInt(1000)))
	suite.mockAllocationRepo.AssertExpectations(suite.T())
}

func (suite *AllocationServiceTestSuite) TestCreateAllocation_PartialDistribution() {
	ctx := context.Background()
	target := uuid.NewString()

	req := dto.CreateAllocationRequest{
		SourceCostCenterID: suite.sourceID,
		Amount:             decimal.NewFromInt(900),
		Rules: []dto.AllocationRuleInput{
			{TargetCostCenterID: target, Percentage: decimal.NewFromInt(40)},
		},
	}

	suite.mockAllocationRepo.On("SaveAllocation", ctx, mock.AnythingOfType("domain.CostAllocation")).Return(nil).Once()

	allocation, err := suite.service.CreateAllocation(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(allocation.Shares, 1)
	// 60% stays at the source; only the ruled portion is distributed.
	suite.True(allocation.Shares[0].Amount.Equal(decimal.NewFromInt(360)))
}

func (suite *AllocationServiceTestSuite) TestCreateAllocation_OverAllocation() {
	ctx := context.Background()

	req := dto.CreateAllocationRequest{
		SourceCostCenterID: suite.sourceID,
		Amount:             decimal.NewFromInt(1000),
		Rules: []dto.AllocationRuleInput{
			{TargetCostCenterID: uuid.NewString(), Percentage: decimal.NewFromInt(70)},
			{TargetCostCenterID: uuid.NewString(), Percentage: decimal.NewFromInt(40)},
		},
	}

	_, err := suite.service.CreateAllocation(ctx, req, suite.userID)

	suite.Require().Error(err)
	var over *apperrors.OverAllocationError
	suite.Require().ErrorAs(err, &over)
	suite.True(over.TotalPercent.Equal(decimal.NewFromInt(110)))
	suite.mockAllocationRepo.AssertNotCalled(suite.T(), "SaveAllocation", mock.Anything, mock.Anything)
}

func (suite *AllocationServiceTestSuite) TestCreateAllocation_DuplicateTarget() {
	ctx := context.Background()
	target := uuid.NewString()

	req := dto.CreateAllocationRequest{
		SourceCostCenterID: suite.sourceID,
		Amount:             decimal.NewFromInt(1000),
		Rules: []dto.AllocationRuleInput{
			{TargetCostCenterID: target, Percentage: decimal.NewFromInt(30)},
			{TargetCostCenterID: target, Percentage: decimal.NewFromInt(30)},
		},
	}

	_, err := suite.service.CreateAllocation(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrDuplicateTarget)
}

func (suite *AllocationServiceTestSuite) TestCreateAllocation_TargetIsSource() {
	ctx := context.Background()

	req := dto.CreateAllocationRequest{
		SourceCostCenterID: suite.sourceID,
		Amount:             decimal.NewFromInt(1000),
		Rules: []dto.AllocationRuleInput{
			{TargetCostCenterID: suite.sourceID, Percentage: decimal.NewFromInt(50)},
		},
	}

	_, err := suite.service.CreateAllocation(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrTargetIsSource)
}

func (suite *AllocationServiceTestSuite) TestCreateAllocation_ZeroPercentage() {
	ctx := context.Background()

	req := dto.CreateAllocationRequest{
		SourceCostCenterID: suite.sourceID,
		Amount:             decimal.NewFromInt(1000),
		Rules: []dto.AllocationRuleInput{
			{TargetCostCenterID: uuid.NewString(), Percentage: decimal.Zero},
		},
	}

	_, err := suite.service.CreateAllocation(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrRulePercentageRange)
}

func (suite *AllocationServiceTestSuite) TestCompleteAllocation_Success() {
	ctx := context.Background()
	allocation := &domain.CostAllocation{
		AllocationID:       uuid.NewString(),
		SourceCostCenterID: suite.sourceID,
		Amount:             decimal.NewFromInt(500),
		Status:             domain.AllocationPending,
	}

	suite.mockAllocationRepo.On("FindAllocationByID", ctx, allocation.AllocationID).Return(allocation, nil).Once()
	suite.mockAllocationRepo.On("UpdateAllocationStatus", ctx, allocation.AllocationID, domain.AllocationCompleted, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	completed, err := suite.service.CompleteAllocation(ctx, allocation.AllocationID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.AllocationCompleted, completed.Status)
	suite.mockAllocationRepo.AssertExpectations(suite.T())
}

func (suite *AllocationServiceTestSuite) TestCancelAllocation_AlreadyCompleted() {
	ctx := context.Background()
	allocation := &domain.CostAllocation{
		AllocationID: uuid.NewString(),
		Status:       domain.AllocationCompleted,
	}

	suite.mockAllocationRepo.On("FindAllocationByID", ctx, allocation.AllocationID).Return(allocation, nil).Once()

	_, err := suite.service.CancelAllocation(ctx, allocation.AllocationID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAllocationNotPending)
	suite.ErrorIs(err, apperrors.ErrWorkflow)
	suite.mockAllocationRepo.AssertNotCalled(suite.T(), "UpdateAllocationStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAllocationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AllocationServiceTestSuite))
}
