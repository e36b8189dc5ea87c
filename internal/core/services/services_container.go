package services

import (
	"github.com/fincore-erp/gl_budget_engine/internal/cache"
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/platform/config"
	"github.com/shopspring/decimal"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// One balance cache shared by readers and the posting writers that
	// invalidate it.
	balanceCache := cache.NewTTLCache[string, decimal.Decimal](cfg.BalanceCacheTTL)

	container.Chart = NewChartService(repos.ChartRepo)
	container.Journal = NewJournalService(repos.JournalRepo, repos.ChartRepo, balanceCache)
	container.Balance = NewBalanceService(repos.ChartRepo, repos.JournalRepo, balanceCache)
	container.TrialBalance = NewTrialBalanceService(repos.ReportingRepo)

	container.Budget = NewBudgetService(repos.BudgetRepo)
	if budgetRepoTx, ok := repos.BudgetRepo.(portsrepo.BudgetRepositoryWithTx); ok {
		container.Transfer = NewTransferService(budgetRepoTx, repos.TransferRepo)
	}
	container.Allocation = NewAllocationService(repos.AllocationRepo)
	container.Variance = NewVarianceService(repos.BudgetRepo, repos.VarianceRepo, decimal.NewFromFloat(cfg.NeutralVarianceThreshold))
	container.Forecast = NewForecastService(repos.BudgetRepo, repos.ForecastRepo, ForecastTuning{
		Alpha:  cfg.ForecastDecayFactor,
		ZScore: cfg.ForecastConfidenceZ,
	})

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.ChartSvcFacade   = (*chartService)(nil)
	_ portssvc.JournalSvcFacade = (*journalService)(nil)
	_ portssvc.BudgetSvcFacade  = (*budgetService)(nil)
	_ portssvc.TransferSvc      = (*transferService)(nil)
)
