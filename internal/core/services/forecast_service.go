package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
	"github.com/fincore-erp/gl_budget_engine/internal/utils/accounting"
	"github.com/fincore-erp/gl_budget_engine/internal/utils/forecasting"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientHistory = errors.New("not enough spending history to forecast")
	ErrNoRealizedPeriods   = errors.New("no spending recorded yet for the forecast's predicted periods")
)

// ForecastTuning carries the statistical knobs of forecast generation.
type ForecastTuning struct {
	// Alpha is the exponential smoothing factor.
	Alpha float64
	// ZScore sets confidence interval width in residual standard deviations.
	ZScore float64
}

// forecastService generates and stores spending forecasts.
type forecastService struct {
	BaseService
	budgetRepo   portsrepo.BudgetRepositoryFacade
	forecastRepo portsrepo.ForecastRepository
	tuning       ForecastTuning
}

// NewForecastService creates a new ForecastService.
func NewForecastService(budgetRepo portsrepo.BudgetRepositoryFacade, forecastRepo portsrepo.ForecastRepository, tuning ForecastTuning) portssvc.ForecastSvc {
	return &forecastService{
		budgetRepo:   budgetRepo,
		forecastRepo: forecastRepo,
		tuning:       tuning,
	}
}

// Ensure forecastService implements the portssvc.ForecastSvc interface
var _ portssvc.ForecastSvc = (*forecastService)(nil)

// cycleLength maps a reporting period to the number of periods in a seasonal
// cycle.
func cycleLength(period domain.VariancePeriod) int {
	switch period {
	case domain.PeriodQuarterly:
		return 4
	case domain.PeriodYearly:
		return 1
	default:
		return 12
	}
}

// advancePeriod returns the start of the period after t.
func advancePeriod(t time.Time, period domain.VariancePeriod) time.Time {
	switch period {
	case domain.PeriodQuarterly:
		return t.AddDate(0, 3, 0)
	case domain.PeriodYearly:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// GenerateForecast runs the requested algorithm over the budget's actual
// spending history and stores the projection.
func (s *forecastService) GenerateForecast(ctx context.Context, budgetID string, req dto.GenerateForecastRequest, userID string) (*domain.BudgetForecast, error) {
	if !domain.ValidForecastAlgorithm(req.Algorithm) {
		return nil, fmt.Errorf("%w: unknown forecast algorithm %q", apperrors.ErrValidation, req.Algorithm)
	}
	period := req.Period
	if period == "" {
		period = domain.PeriodMonthly
	}

	if _, err := s.budgetRepo.FindBudgetByID(ctx, budgetID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	actuals, err := s.forecastRepo.ListActuals(ctx, budgetID, period, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch spending history", slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to retrieve spending history: %w", err)
	}
	if len(actuals) < forecasting.MinHistory {
		return nil, fmt.Errorf("%w: %w: have %d periods, need %d", apperrors.ErrValidation, ErrInsufficientHistory, len(actuals), forecasting.MinHistory)
	}

	history := make([]float64, len(actuals))
	for i, point := range actuals {
		history[i], _ = point.Amount.Float64()
	}

	result, err := forecasting.Forecast(string(req.Algorithm), history, forecasting.Options{
		Horizon:     req.Horizon,
		CycleLength: cycleLength(period),
		Alpha:       s.tuning.Alpha,
		ZScore:      s.tuning.ZScore,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	points := make([]domain.ForecastPoint, len(result.Points))
	periodStart := actuals[len(actuals)-1].PeriodStart
	for i, p := range result.Points {
		periodStart = advancePeriod(periodStart, period)
		points[i] = domain.ForecastPoint{
			PeriodStart: periodStart,
			Predicted:   accounting.Round(decimal.NewFromFloat(p.Predicted)),
			Interval: domain.ConfidenceInterval{
				Lower: accounting.Round(decimal.NewFromFloat(p.Lower)),
				Upper: accounting.Round(decimal.NewFromFloat(p.Upper)),
			},
		}
	}

	accuracy := domain.ForecastAccuracy{
		RMSE: accounting.Round(decimal.NewFromFloat(result.RMSE)),
	}
	if result.MAPE != nil {
		mape := decimal.NewFromFloat(*result.MAPE).Round(2)
		accuracy.MAPE = &mape
	}

	forecast := domain.BudgetForecast{
		ForecastID:    uuid.NewString(),
		BudgetID:      budgetID,
		Algorithm:     req.Algorithm,
		Methodology:   result.Methodology,
		Horizon:       req.Horizon,
		LowConfidence: result.LowConfidence,
		GeneratedAt:   now,
		Points:        points,
		Accuracy:      accuracy,
		AuditFields:   domain.NewAuditFields(userID, now),
	}

	if err := s.forecastRepo.SaveForecast(ctx, forecast); err != nil {
		s.LogError(ctx, err, "Failed to save forecast", slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to save forecast: %w", err)
	}

	s.LogInfo(ctx, "Forecast generated",
		slog.String("forecast_id", forecast.ForecastID),
		slog.String("budget_id", budgetID),
		slog.String("algorithm", string(req.Algorithm)),
		slog.Bool("low_confidence", forecast.LowConfidence),
	)
	return &forecast, nil
}

// inferPeriod recovers the reporting period of a stored forecast from the
// spacing of its points. Single-point forecasts read as monthly.
func inferPeriod(points []domain.ForecastPoint) domain.VariancePeriod {
	if len(points) < 2 {
		return domain.PeriodMonthly
	}
	gap := points[1].PeriodStart.Sub(points[0].PeriodStart)
	switch {
	case gap >= 360*24*time.Hour:
		return domain.PeriodYearly
	case gap >= 80*24*time.Hour:
		return domain.PeriodQuarterly
	default:
		return domain.PeriodMonthly
	}
}

// CalculateAccuracy scores a stored forecast against the spending recorded
// since it was generated. Predicted periods without actuals yet are skipped;
// the metrics cover only the realized overlap.
func (s *forecastService) CalculateAccuracy(ctx context.Context, forecastID string) (*domain.ForecastEvaluation, error) {
	forecast, err := s.forecastRepo.FindForecastByID(ctx, forecastID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find forecast for evaluation", slog.String("forecast_id", forecastID))
		}
		return nil, err
	}

	now := time.Now().UTC()
	period := inferPeriod(forecast.Points)
	actuals, err := s.forecastRepo.ListActuals(ctx, forecast.BudgetID, period, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch spending history", slog.String("budget_id", forecast.BudgetID))
		return nil, fmt.Errorf("failed to retrieve spending history: %w", err)
	}

	actualByPeriod := make(map[string]decimal.Decimal, len(actuals))
	for _, point := range actuals {
		actualByPeriod[point.PeriodStart.UTC().Format("2006-01-02")] = point.Amount
	}

	evaluated := make([]domain.EvaluatedPoint, 0, len(forecast.Points))
	actualSeries := make([]float64, 0, len(forecast.Points))
	predictedSeries := make([]float64, 0, len(forecast.Points))
	for _, point := range forecast.Points {
		actual, ok := actualByPeriod[point.PeriodStart.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		evaluated = append(evaluated, domain.EvaluatedPoint{
			PeriodStart: point.PeriodStart,
			Predicted:   point.Predicted,
			Actual:      actual,
		})
		a, _ := actual.Float64()
		p, _ := point.Predicted.Float64()
		actualSeries = append(actualSeries, a)
		predictedSeries = append(predictedSeries, p)
	}
	if len(evaluated) == 0 {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrWorkflow, ErrNoRealizedPeriods)
	}

	rmse, mape := forecasting.Evaluate(actualSeries, predictedSeries)
	accuracy := domain.ForecastAccuracy{
		RMSE: accounting.Round(decimal.NewFromFloat(rmse)),
	}
	if mape != nil {
		m := decimal.NewFromFloat(*mape).Round(2)
		accuracy.MAPE = &m
	}

	s.LogInfo(ctx, "Forecast accuracy calculated",
		slog.String("forecast_id", forecastID),
		slog.Int("evaluated_periods", len(evaluated)),
		slog.String("rmse", accuracy.RMSE.String()),
	)
	return &domain.ForecastEvaluation{
		ForecastID:  forecast.ForecastID,
		BudgetID:    forecast.BudgetID,
		Algorithm:   forecast.Algorithm,
		EvaluatedAt: now,
		Points:      evaluated,
		Accuracy:    accuracy,
	}, nil
}

// GetForecastByID retrieves a specific stored forecast.
func (s *forecastService) GetForecastByID(ctx context.Context, forecastID string) (*domain.BudgetForecast, error) {
	forecast, err := s.forecastRepo.FindForecastByID(ctx, forecastID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find forecast", slog.String("forecast_id", forecastID))
		}
		return nil, err
	}
	return forecast, nil
}

// GetLatestForecast retrieves the newest forecast for a budget and algorithm.
func (s *forecastService) GetLatestForecast(ctx context.Context, budgetID string, algorithm domain.ForecastAlgorithm) (*domain.BudgetForecast, error) {
	if !domain.ValidForecastAlgorithm(algorithm) {
		return nil, fmt.Errorf("%w: unknown forecast algorithm %q", apperrors.ErrValidation, algorithm)
	}
	forecast, err := s.forecastRepo.FindLatestForecast(ctx, budgetID, algorithm)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find latest forecast", slog.String("budget_id", budgetID))
		}
		return nil, err
	}
	return forecast, nil
}
