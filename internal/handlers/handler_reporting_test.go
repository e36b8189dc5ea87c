package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
	"github.com/fincore-erp/gl_budget_engine/internal/handlers"
	"github.com/fincore-erp/gl_budget_engine/internal/platform/config"
)

// --- Mock TrialBalanceService ---
type MockTrialBalanceService struct {
	mock.Mock
}

func (m *MockTrialBalanceService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalanceReport), args.Error(1)
}

var _ portssvc.TrialBalanceSvc = (*MockTrialBalanceService)(nil)

// --- Test Suite ---
type ReportingHandlerTestSuite struct {
	suite.Suite
	router                  *gin.Engine
	mockTrialBalanceService *MockTrialBalanceService
}

func (suite *ReportingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.mockTrialBalanceService = new(MockTrialBalanceService)

	services := &portssvc.ServiceContainer{
		TrialBalance: suite.mockTrialBalanceService,
	}
	handlers.RegisterRoutes(suite.router, &config.Config{}, services)
}

// --- Test Cases ---

func (suite *ReportingHandlerTestSuite) TestGetTrialBalance_Success() {
	report := &domain.TrialBalanceReport{
		AsOf: time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		Rows: []domain.TrialBalanceRow{
			{Code: "1010", Name: "Cash", GroupType: domain.GroupAssets, Debit: decimal.NewFromInt(1000)},
			{Code: "2010", Name: "Payables", GroupType: domain.GroupLiabilities, Credit: decimal.NewFromInt(1000)},
		},
		TotalDebit:  decimal.NewFromInt(1000),
		TotalCredit: decimal.NewFromInt(1000),
		Balanced:    true,
	}
	suite.mockTrialBalanceService.On("TrialBalance", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(report, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/reports/trial-balance?asOf=2026-06-30", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.TrialBalanceResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Balanced)
	suite.Len(resp.Rows, 2)
	suite.mockTrialBalanceService.AssertExpectations(suite.T())
}

func (suite *ReportingHandlerTestSuite) TestGetTrialBalance_MismatchIsAnError() {
	mismatch := &apperrors.TrialBalanceMismatchError{
		TotalDebit:  decimal.NewFromInt(1000),
		TotalCredit: decimal.NewFromInt(900),
	}
	suite.mockTrialBalanceService.On("TrialBalance", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(nil, mismatch).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/reports/trial-balance?asOf=2026-06-30", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	// Corrupted books are a server-side defect, never a 200.
	suite.Equal(http.StatusInternalServerError, w.Code)

	var resp struct {
		Error       string          `json:"error"`
		TotalDebit  decimal.Decimal `json:"totalDebit"`
		TotalCredit decimal.Decimal `json:"totalCredit"`
	}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Contains(resp.Error, "trial balance mismatch")
	suite.True(resp.TotalDebit.Equal(decimal.NewFromInt(1000)))
	suite.True(resp.TotalCredit.Equal(decimal.NewFromInt(900)))
	suite.mockTrialBalanceService.AssertExpectations(suite.T())
}

func (suite *ReportingHandlerTestSuite) TestGetTrialBalance_BadDate() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/reports/trial-balance?asOf=June-30", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTrialBalanceService.AssertNotCalled(suite.T(), "TrialBalance", mock.Anything, mock.Anything)
}

// --- Run Test Suite ---
func TestReportingHandler(t *testing.T) {
	suite.Run(t, new(ReportingHandlerTestSuite))
}
