package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
	"github.com/fincore-erp/gl_budget_engine/internal/jobs"
)

type MockBudgetReader struct {
	mock.Mock
}

func (m *MockBudgetReader) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetReader) ListBudgets(ctx context.Context, fiscalYear *int, limit int, offset int) ([]domain.Budget, error) {
	args := m.Called(ctx, fiscalYear, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *MockBudgetReader) ListBudgetIDs(ctx context.Context, statuses []domain.BudgetStatus) ([]string, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockVarianceSvc struct {
	mock.Mock
}

func (m *MockVarianceSvc) ComputeVariance(ctx context.Context, budgetID string, req dto.ComputeVarianceRequest, userID string) (*domain.BudgetVariance, error) {
	args := m.Called(ctx, budgetID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetVariance), args.Error(1)
}

func (m *MockVarianceSvc) GetVariance(ctx context.Context, budgetID string, period domain.VariancePeriod, asOf time.Time) (*domain.BudgetVariance, error) {
	args := m.Called(ctx, budgetID, period, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetVariance), args.Error(1)
}

func (m *MockVarianceSvc) VarianceTrend(ctx context.Context, budgetID string, params dto.VarianceTrendParams) ([]domain.VarianceTrendPoint, error) {
	args := m.Called(ctx, budgetID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VarianceTrendPoint), args.Error(1)
}

func TestVarianceRefresher_SweepsEligibleBudgets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	budgetRepo := new(MockBudgetReader)
	varianceSvc := new(MockVarianceSvc)

	healthyID := uuid.NewString()
	goneID := uuid.NewString()
	ids := []string{healthyID, goneID}

	done := make(chan struct{})
	budgetRepo.On("ListBudgetIDs", mock.Anything, []domain.BudgetStatus{domain.BudgetApproved, domain.BudgetActive}).
		Return(ids, nil).Once()
	varianceSvc.On("ComputeVariance", mock.Anything, healthyID, mock.AnythingOfType("dto.ComputeVarianceRequest"), mock.AnythingOfType("string")).
		Return(&domain.BudgetVariance{BudgetID: healthyID}, nil).Once()
	// A budget deleted mid-sweep is skipped, not fatal.
	varianceSvc.On("ComputeVariance", mock.Anything, goneID, mock.AnythingOfType("dto.ComputeVarianceRequest"), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { close(done) }).
		Return(nil, apperrors.ErrNotFound).Once()

	refresher := jobs.NewVarianceRefresher(budgetRepo, varianceSvc, 10*time.Millisecond, nil)
	go refresher.Run(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not complete a sweep in time")
	}
	cancel()

	budgetRepo.AssertExpectations(t)
	varianceSvc.AssertExpectations(t)
}

func TestVarianceRefresher_DisabledReturnsImmediately(t *testing.T) {
	budgetRepo := new(MockBudgetReader)
	varianceSvc := new(MockVarianceSvc)

	refresher := jobs.NewVarianceRefresher(budgetRepo, varianceSvc, 0, nil)

	finished := make(chan struct{})
	go func() {
		refresher.Run(context.Background())
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("disabled refresher should return without a cancel")
	}
	budgetRepo.AssertNotCalled(t, "ListBudgetIDs", mock.Anything, mock.Anything)
}
