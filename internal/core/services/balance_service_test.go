package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fincore-erp/gl_budget_engine/internal/cache"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/core/services"
)

// --- Test Suite Setup ---
type BalanceServiceTestSuite struct {
	suite.Suite
	mockChartRepo   *MockChartRepository
	mockJournalRepo *MockJournalRepository
	balanceCache    *cache.TTLCache[string, decimal.Decimal]
	service         portssvc.BalanceSvc
	ledger          domain.AccountLedger
	userID          string
}

func (suite *BalanceServiceTestSuite) SetupTest() {
	suite.mockChartRepo = new(MockChartRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.balanceCache = cache.NewTTLCache[string, decimal.Decimal](time.Minute)
	suite.service = services.NewBalanceService(suite.mockChartRepo, suite.mockJournalRepo, suite.balanceCache)

	suite.userID = uuid.NewString()
	suite.ledger = domain.AccountLedger{
		LedgerID:       uuid.NewString(),
		Code:           "1010",
		Name:           "Cash",
		BalanceType:    domain.DebitBalance,
		OpeningBalance: decimal.NewFromInt(1000),
		CurrentBalance: decimal.NewFromInt(1500),
		CurrencyCode:   "USD",
		IsActive:       true,
	}
}

// --- Test Cases ---

func (suite *BalanceServiceTestSuite) TestGetBalance_CurrentHitsRepoThenCache() {
	ctx := context.Background()

	suite.mockChartRepo.On("FindLedgerByID", ctx, suite.ledger.LedgerID).Return(&suite.ledger, nil).Once()

	first, err := suite.service.GetBalance(ctx, suite.ledger.LedgerID, nil)
	suite.Require().NoError(err)
	suite.True(first.Balance.Equal(decimal.NewFromInt(1500)))

	// Second read is served from the cache; the single Once expectation
	// would fail if the repo were hit again.
	second, err := suite.service.GetBalance(ctx, suite.ledger.LedgerID, nil)
	suite.Require().NoError(err)
	suite.True(second.Balance.Equal(decimal.NewFromInt(1500)))

	suite.mockChartRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestGetBalance_AsOfReplaysLines() {
	ctx := context.Background()
	asOf := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	lines := []domain.JournalLine{
		{LineID: uuid.NewString(), LedgerID: suite.ledger.LedgerID, Debit: decimal.NewFromInt(300), Credit: decimal.Zero},
		{LineID: uuid.NewString(), LedgerID: suite.ledger.LedgerID, Debit: decimal.Zero, Credit: decimal.NewFromInt(100)},
	}

	suite.mockChartRepo.On("FindLedgerByID", ctx, suite.ledger.LedgerID).Return(&suite.ledger, nil).Once()
	suite.mockJournalRepo.On("FindLinesByLedgerIDUpTo", ctx, suite.ledger.LedgerID, asOf).Return(lines, nil).Once()

	balance, err := suite.service.GetBalance(ctx, suite.ledger.LedgerID, &asOf)

	suite.Require().NoError(err)
	// Opening 1000, +300 debit, -100 credit on a debit-natured account.
	suite.True(balance.Balance.Equal(decimal.NewFromInt(1200)))
	suite.Equal(asOf, balance.AsOf)
}

func (suite *BalanceServiceTestSuite) TestRecomputeBalance_NoDrift() {
	ctx := context.Background()
	lines := []domain.JournalLine{
		{LineID: uuid.NewString(), LedgerID: suite.ledger.LedgerID, Debit: decimal.NewFromInt(500), Credit: decimal.Zero},
	}

	suite.mockChartRepo.On("FindLedgerByID", ctx, suite.ledger.LedgerID).Return(&suite.ledger, nil).Once()
	suite.mockJournalRepo.On("FindLinesByLedgerIDUpTo", ctx, suite.ledger.LedgerID, mock.AnythingOfType("time.Time")).Return(lines, nil).Once()

	resp, err := suite.service.RecomputeBalance(ctx, suite.ledger.LedgerID, true, suite.userID)

	suite.Require().NoError(err)
	suite.False(resp.Drifted)
	suite.False(resp.Repaired)
	suite.True(resp.Stored.Equal(resp.Replayed))
	suite.mockChartRepo.AssertNotCalled(suite.T(), "SetLedgerBalance",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BalanceServiceTestSuite) TestRecomputeBalance_DriftReported() {
	ctx := context.Background()
	// Replay yields 1000 + 200 = 1200, stored says 1500.
	lines := []domain.JournalLine{
		{LineID: uuid.NewString(), LedgerID: suite.ledger.LedgerID, Debit: decimal.NewFromInt(200), Credit: decimal.Zero},
	}

	suite.mockChartRepo.On("FindLedgerByID", ctx, suite.ledger.LedgerID).Return(&suite.ledger, nil).Once()
	suite.mockJournalRepo.On("FindLinesByLedgerIDUpTo", ctx, suite.ledger.LedgerID, mock.AnythingOfType("time.Time")).Return(lines, nil).Once()

	resp, err := suite.service.RecomputeBalance(ctx, suite.ledger.LedgerID, false, suite.userID)

	suite.Require().NoError(err)
	suite.True(resp.Drifted)
	suite.False(resp.Repaired)
	suite.True(resp.Stored.Equal(decimal.NewFromInt(1500)))
	suite.True(resp.Replayed.Equal(decimal.NewFromInt(1200)))
	suite.mockChartRepo.AssertNotCalled(suite.T(), "SetLedgerBalance",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BalanceServiceTestSuite) TestRecomputeBalance_DriftRepaired() {
	ctx := context.Background()
	lines := []domain.JournalLine{
		{LineID: uuid.NewString(), LedgerID: suite.ledger.LedgerID, Debit: decimal.NewFromInt(200), Credit: decimal.Zero},
	}

	// Seed the cache with the stale value so the repair's invalidation is
	// observable.
	suite.balanceCache.Set(suite.ledger.LedgerID, decimal.NewFromInt(1500))

	suite.mockChartRepo.On("FindLedgerByID", ctx, suite.ledger.LedgerID).Return(&suite.ledger, nil).Once()
	suite.mockJournalRepo.On("FindLinesByLedgerIDUpTo", ctx, suite.ledger.LedgerID, mock.AnythingOfType("time.Time")).Return(lines, nil).Once()
	suite.mockChartRepo.On("SetLedgerBalance", ctx, suite.ledger.LedgerID, decimal.NewFromInt(1200), suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	resp, err := suite.service.RecomputeBalance(ctx, suite.ledger.LedgerID, true, suite.userID)

	suite.Require().NoError(err)
	suite.True(resp.Drifted)
	suite.True(resp.Repaired)

	_, cached := suite.balanceCache.Get(suite.ledger.LedgerID)
	suite.False(cached)
	suite.mockChartRepo.AssertExpectations(suite.T())
}

func TestBalanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BalanceServiceTestSuite))
}
