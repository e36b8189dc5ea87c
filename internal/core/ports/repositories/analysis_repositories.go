package repositories

import (
	"context"
	"time"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
)

// VarianceRepository defines storage for budget variance snapshots
type VarianceRepository interface {
	// UpsertVariance stores a variance snapshot, replacing any existing
	// snapshot for the same (budget, period, as-of date) key.
	UpsertVariance(ctx context.Context, variance domain.BudgetVariance) error

	// FindVariance retrieves the snapshot for one (budget, period, as-of) key.
	FindVariance(ctx context.Context, budgetID string, period domain.VariancePeriod, asOf time.Time) (*domain.BudgetVariance, error)

	// ListVarianceTrend retrieves historical snapshots for a budget and period,
	// oldest first.
	ListVarianceTrend(ctx context.Context, budgetID string, period domain.VariancePeriod, from, to time.Time) ([]domain.VarianceTrendPoint, error)
}

// ForecastRepository defines storage for generated budget forecasts
type ForecastRepository interface {
	// SaveForecast persists a generated forecast with its points.
	SaveForecast(ctx context.Context, forecast domain.BudgetForecast) error

	// FindForecastByID retrieves a specific forecast.
	FindForecastByID(ctx context.Context, forecastID string) (*domain.BudgetForecast, error)

	// FindLatestForecast retrieves the most recently generated forecast for a
	// budget and algorithm.
	FindLatestForecast(ctx context.Context, budgetID string, algorithm domain.ForecastAlgorithm) (*domain.BudgetForecast, error)

	// ListActuals retrieves the historical per-period spending series for a
	// budget, oldest first. Built from recorded spend activity.
	ListActuals(ctx context.Context, budgetID string, period domain.VariancePeriod, upTo time.Time) ([]domain.ActualPoint, error)
}
