package services

import (
	"context"
	"time"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
)

// VarianceSvc defines budget variance computation and history
type VarianceSvc interface {
	// ComputeVariance computes and stores a variance snapshot for one budget.
	// Recomputing the same (budget, period, as-of) key replaces the snapshot.
	ComputeVariance(ctx context.Context, budgetID string, req dto.ComputeVarianceRequest, userID string) (*domain.BudgetVariance, error)

	// GetVariance retrieves a stored variance snapshot.
	GetVariance(ctx context.Context, budgetID string, period domain.VariancePeriod, asOf time.Time) (*domain.BudgetVariance, error)

	// VarianceTrend retrieves a budget's historical variance series.
	VarianceTrend(ctx context.Context, budgetID string, params dto.VarianceTrendParams) ([]domain.VarianceTrendPoint, error)
}

// ForecastSvc defines spending forecast generation
type ForecastSvc interface {
	// GenerateForecast runs the requested algorithm over the budget's actual
	// spending history and stores the projection.
	GenerateForecast(ctx context.Context, budgetID string, req dto.GenerateForecastRequest, userID string) (*domain.BudgetForecast, error)

	// GetForecastByID retrieves a specific stored forecast.
	GetForecastByID(ctx context.Context, forecastID string) (*domain.BudgetForecast, error)

	// GetLatestForecast retrieves the newest forecast for a budget and algorithm.
	GetLatestForecast(ctx context.Context, budgetID string, algorithm domain.ForecastAlgorithm) (*domain.BudgetForecast, error)

	// CalculateAccuracy scores a stored forecast against the spending recorded
	// since it was generated.
	CalculateAccuracy(ctx context.Context, forecastID string) (*domain.ForecastEvaluation, error)
}
