package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
)

// --- Mock ChartRepository ---
type MockChartRepository struct {
	mock.Mock
}

// Ensure MockChartRepository implements the full interface
var _ portsrepo.ChartRepositoryFacade = (*MockChartRepository)(nil)

func (m *MockChartRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.AccountGroup, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountGroup), args.Error(1)
}

func (m *MockChartRepository) FindGroupByCode(ctx context.Context, code string) (*domain.AccountGroup, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountGroup), args.Error(1)
}

func (m *MockChartRepository) ListGroups(ctx context.Context, includeInactive bool) ([]domain.AccountGroup, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountGroup), args.Error(1)
}

func (m *MockChartRepository) SaveGroup(ctx context.Context, group domain.AccountGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockChartRepository) UpdateGroup(ctx context.Context, group domain.AccountGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockChartRepository) DeactivateGroup(ctx context.Context, groupID string, userID string, now time.Time) error {
	args := m.Called(ctx, groupID, userID, now)
	return args.Error(0)
}

func (m *MockChartRepository) CountSubGroupsByGroupID(ctx context.Context, groupID string) (int, error) {
	args := m.Called(ctx, groupID)
	return args.Int(0), args.Error(1)
}

func (m *MockChartRepository) FindSubGroupByID(ctx context.Context, subGroupID string) (*domain.AccountSubGroup, error) {
	args := m.Called(ctx, subGroupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountSubGroup), args.Error(1)
}

func (m *MockChartRepository) FindSubGroupByCode(ctx context.Context, code string) (*domain.AccountSubGroup, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountSubGroup), args.Error(1)
}

func (m *MockChartRepository) ListSubGroupsByGroupID(ctx context.Context, groupID string) ([]domain.AccountSubGroup, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountSubGroup), args.Error(1)
}

func (m *MockChartRepository) SaveSubGroup(ctx context.Context, subGroup domain.AccountSubGroup) error {
	args := m.Called(ctx, subGroup)
	return args.Error(0)
}

func (m *MockChartRepository) UpdateSubGroup(ctx context.Context, subGroup domain.AccountSubGroup) error {
	args := m.Called(ctx, subGroup)
	return args.Error(0)
}

func (m *MockChartRepository) DeactivateSubGroup(ctx context.Context, subGroupID string, userID string, now time.Time) error {
	args := m.Called(ctx, subGroupID, userID, now)
	return args.Error(0)
}

func (m *MockChartRepository) CountLedgersBySubGroupID(ctx context.Context, subGroupID string) (int, error) {
	args := m.Called(ctx, subGroupID)
	return args.Int(0), args.Error(1)
}

func (m *MockChartRepository) CountChildSubGroups(ctx context.Context, parentSubGroupID string) (int, error) {
	args := m.Called(ctx, parentSubGroupID)
	return args.Int(0), args.Error(1)
}

func (m *MockChartRepository) FindLedgerByID(ctx context.Context, ledgerID string) (*domain.AccountLedger, error) {
	args := m.Called(ctx, ledgerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountLedger), args.Error(1)
}

func (m *MockChartRepository) FindLedgerByCode(ctx context.Context, code string) (*domain.AccountLedger, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountLedger), args.Error(1)
}

func (m *MockChartRepository) FindLedgersByIDs(ctx context.Context, ledgerIDs []string) (map[string]domain.AccountLedger, error) {
	args := m.Called(ctx, ledgerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.AccountLedger), args.Error(1)
}

func (m *MockChartRepository) ListLedgers(ctx context.Context, limit int, offset int) ([]domain.AccountLedger, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountLedger), args.Error(1)
}

func (m *MockChartRepository) ListLedgersBySubGroupID(ctx context.Context, subGroupID string) ([]domain.AccountLedger, error) {
	args := m.Called(ctx, subGroupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountLedger), args.Error(1)
}

func (m *MockChartRepository) FindLedgerHierarchy(ctx context.Context, ledgerID string) (*domain.LedgerHierarchy, error) {
	args := m.Called(ctx, ledgerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerHierarchy), args.Error(1)
}

func (m *MockChartRepository) SaveLedger(ctx context.Context, ledger domain.AccountLedger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockChartRepository) UpdateLedger(ctx context.Context, ledger domain.AccountLedger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockChartRepository) DeactivateLedger(ctx context.Context, ledgerID string, userID string, now time.Time) error {
	args := m.Called(ctx, ledgerID, userID, now)
	return args.Error(0)
}

func (m *MockChartRepository) SetLedgerBalance(ctx context.Context, ledgerID string, balance decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, ledgerID, balance, userID, now)
	return args.Error(0)
}

func (m *MockChartRepository) FindLedgersByIDsForUpdate(ctx context.Context, tx pgx.Tx, ledgerIDs []string) (map[string]domain.AccountLedger, error) {
	args := m.Called(ctx, tx, ledgerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.AccountLedger), args.Error(1)
}

func (m *MockChartRepository) UpdateLedgerBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

// Ensure MockJournalRepository implements the full interface
var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, limit, nextToken, includeReversals)
	var entries []domain.JournalEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.JournalEntry)
	}
	var token *string
	if args.Get(1) != nil {
		t := args.Get(1).(string)
		token = &t
	}
	return entries, token, args.Error(2)
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, balanceChanges map[string]decimal.Decimal) (int64, error) {
	args := m.Called(ctx, entry, balanceChanges)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJournalRepository) UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.JournalStatus, reversingEntryID *string, originalEntryID *string, userID string, now time.Time) error {
	args := m.Called(ctx, entryID, status, reversingEntryID, originalEntryID, userID, now)
	return args.Error(0)
}

func (m *MockJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error) {
	args := m.Called(ctx, entryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) ListLinesByLedgerID(ctx context.Context, ledgerID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	args := m.Called(ctx, ledgerID, limit, nextToken)
	var lines []domain.JournalLine
	if args.Get(0) != nil {
		lines = args.Get(0).([]domain.JournalLine)
	}
	var token *string
	if args.Get(1) != nil {
		t := args.Get(1).(string)
		token = &t
	}
	return lines, token, args.Error(2)
}

func (m *MockJournalRepository) FindLinesByLedgerIDUpTo(ctx context.Context, ledgerID string, asOf time.Time) ([]domain.JournalLine, error) {
	args := m.Called(ctx, ledgerID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

// --- Mock BudgetRepository ---
type MockBudgetRepository struct {
	mock.Mock
}

// Ensure MockBudgetRepository implements the transactional interface
var _ portsrepo.BudgetRepositoryWithTx = (*MockBudgetRepository)(nil)

func (m *MockBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) ListBudgets(ctx context.Context, fiscalYear *int, limit int, offset int) ([]domain.Budget, error) {
	args := m.Called(ctx, fiscalYear, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) ListBudgetIDs(ctx context.Context, statuses []domain.BudgetStatus) ([]string, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepository) FindBudgetsByIDsForUpdate(ctx context.Context, tx pgx.Tx, budgetIDs []string) (map[string]domain.Budget, error) {
	args := m.Called(ctx, tx, budgetIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) UpdateBudgetsInTx(ctx context.Context, tx pgx.Tx, budgets []domain.Budget) error {
	args := m.Called(ctx, tx, budgets)
	return args.Error(0)
}

func (m *MockBudgetRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockBudgetRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockBudgetRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock TransferRepository ---
type MockTransferRepository struct {
	mock.Mock
}

// Ensure MockTransferRepository implements the full interface
var _ portsrepo.TransferRepositoryFacade = (*MockTransferRepository)(nil)

func (m *MockTransferRepository) FindTransferByID(ctx context.Context, transferID string) (*domain.BudgetTransfer, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetTransfer), args.Error(1)
}

func (m *MockTransferRepository) ListTransfersByBudgetID(ctx context.Context, budgetID string, limit int, offset int) ([]domain.BudgetTransfer, error) {
	args := m.Called(ctx, budgetID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetTransfer), args.Error(1)
}

func (m *MockTransferRepository) SaveTransfer(ctx context.Context, transfer domain.BudgetTransfer) (string, error) {
	args := m.Called(ctx, transfer)
	return args.String(0), args.Error(1)
}

func (m *MockTransferRepository) UpdateTransferInTx(ctx context.Context, tx pgx.Tx, transfer domain.BudgetTransfer) error {
	args := m.Called(ctx, tx, transfer)
	return args.Error(0)
}

func (m *MockTransferRepository) UpdateTransfer(ctx context.Context, transfer domain.BudgetTransfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

// --- Mock AllocationRepository ---
type MockAllocationRepository struct {
	mock.Mock
}

// Ensure MockAllocationRepository implements the full interface
var _ portsrepo.AllocationRepositoryFacade = (*MockAllocationRepository)(nil)

func (m *MockAllocationRepository) FindAllocationByID(ctx context.Context, allocationID string) (*domain.CostAllocation, error) {
	args := m.Called(ctx, allocationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CostAllocation), args.Error(1)
}

func (m *MockAllocationRepository) ListAllocationsBySourceID(ctx context.Context, sourceCostCenterID string, limit int, offset int) ([]domain.CostAllocation, error) {
	args := m.Called(ctx, sourceCostCenterID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CostAllocation), args.Error(1)
}

func (m *MockAllocationRepository) SaveAllocation(ctx context.Context, allocation domain.CostAllocation) error {
	args := m.Called(ctx, allocation)
	return args.Error(0)
}

func (m *MockAllocationRepository) UpdateAllocationStatus(ctx context.Context, allocationID string, status domain.AllocationStatus, userID string, now time.Time) error {
	args := m.Called(ctx, allocationID, status, userID, now)
	return args.Error(0)
}

// --- Mock VarianceRepository ---
type MockVarianceRepository struct {
	mock.Mock
}

// Ensure MockVarianceRepository implements the full interface
var _ portsrepo.VarianceRepository = (*MockVarianceRepository)(nil)

func (m *MockVarianceRepository) UpsertVariance(ctx context.Context, variance domain.BudgetVariance) error {
	args := m.Called(ctx, variance)
	return args.Error(0)
}

func (m *MockVarianceRepository) FindVariance(ctx context.Context, budgetID string, period domain.VariancePeriod, asOf time.Time) (*domain.BudgetVariance, error) {
	args := m.Called(ctx, budgetID, period, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetVariance), args.Error(1)
}

func (m *MockVarianceRepository) ListVarianceTrend(ctx context.Context, budgetID string, period domain.VariancePeriod, from, to time.Time) ([]domain.VarianceTrendPoint, error) {
	args := m.Called(ctx, budgetID, period, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VarianceTrendPoint), args.Error(1)
}

// --- Mock ForecastRepository ---
type MockForecastRepository struct {
	mock.Mock
}

// Ensure MockForecastRepository implements the full interface
var _ portsrepo.ForecastRepository = (*MockForecastRepository)(nil)

func (m *MockForecastRepository) SaveForecast(ctx context.Context, forecast domain.BudgetForecast) error {
	args := m.Called(ctx, forecast)
	return args.Error(0)
}

func (m *MockForecastRepository) FindForecastByID(ctx context.Context, forecastID string) (*domain.BudgetForecast, error) {
	args := m.Called(ctx, forecastID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetForecast), args.Error(1)
}

func (m *MockForecastRepository) FindLatestForecast(ctx context.Context, budgetID string, algorithm domain.ForecastAlgorithm) (*domain.BudgetForecast, error) {
	args := m.Called(ctx, budgetID, algorithm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetForecast), args.Error(1)
}

func (m *MockForecastRepository) ListActuals(ctx context.Context, budgetID string, period domain.VariancePeriod, upTo time.Time) ([]domain.ActualPoint, error) {
	args := m.Called(ctx, budgetID, period, upTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ActualPoint), args.Error(1)
}

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

// Ensure MockReportingRepository implements the full interface
var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) GetLedgerBalancesAsOf(ctx context.Context, asOf time.Time) ([]domain.LedgerBalanceSnapshot, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerBalanceSnapshot), args.Error(1)
}
