package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	ChartRepo      ChartRepositoryFacade
	JournalRepo    JournalRepositoryFacade
	BudgetRepo     BudgetRepositoryFacade
	TransferRepo   TransferRepositoryFacade
	AllocationRepo AllocationRepositoryFacade
	VarianceRepo   VarianceRepository
	ForecastRepo   ForecastRepository
	ReportingRepo  ReportingRepository
}
