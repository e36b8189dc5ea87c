package pgsql

import (
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	chartRepo := newPgxChartRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, chartRepo)
	budgetRepo := newPgxBudgetRepository(dbPool)
	transferRepo := newPgxTransferRepository(dbPool)
	allocationRepo := newPgxAllocationRepository(dbPool)
	varianceRepo := newPgxVarianceRepository(dbPool)
	forecastRepo := newPgxForecastRepository(dbPool)
	reportingRepo := newReportingRepository(dbPool)

	return portsrepo.RepositoryProvider{
		ChartRepo:      chartRepo,
		JournalRepo:    journalRepo,
		BudgetRepo:     budgetRepo,
		TransferRepo:   transferRepo,
		AllocationRepo: allocationRepo,
		VarianceRepo:   varianceRepo,
		ForecastRepo:   forecastRepo,
		ReportingRepo:  reportingRepo,
	}
}
