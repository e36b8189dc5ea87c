package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
)

// PgxVarianceRepository stores variance snapshots keyed by
// (budget, period, as-of date). Category breakdowns are JSONB documents.
type PgxVarianceRepository struct {
	BaseRepository
}

// newPgxVarianceRepository creates a new repository for variance snapshots.
func newPgxVarianceRepository(pool *pgxpool.Pool) portsrepo.VarianceRepository {
	return &PgxVarianceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxVarianceRepository implements portsrepo.VarianceRepository
var _ portsrepo.VarianceRepository = (*PgxVarianceRepository)(nil)

// UpsertVariance stores a variance snapshot, replacing any existing row for
// the same (budget, period, as-of date) key. The original row's identity and
// creation audit fields survive the replacement.
func (r *PgxVarianceRepository) UpsertVariance(ctx context.Context, variance domain.BudgetVariance) error {
	categories, err := json.Marshal(variance.Categories)
	if err != nil {
		return fmt.Errorf("failed to marshal category variances: %w", err)
	}

	query := `
		INSERT INTO budget_variances (
			variance_id, budget_id, period, as_of_date, budgeted_amount, actual_amount,
			variance_amount, variance_percent, status, categories,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (budget_id, period, as_of_date)
		DO UPDATE SET
			budgeted_amount = EXCLUDED.budgeted_amount,
			actual_amount = EXCLUDED.actual_amount,
			variance_amount = EXCLUDED.variance_amount,
			variance_percent = EXCLUDED.variance_percent,
			status = EXCLUDED.status,
			categories = EXCLUDED.categories,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err = r.Pool.Exec(ctx, query,
		variance.VarianceID, variance.BudgetID, string(variance.Period), variance.AsOfDate,
		variance.BudgetedAmount, variance.ActualAmount, variance.VarianceAmount, variance.VariancePercent,
		string(variance.Status), categories,
		variance.CreatedAt, variance.CreatedBy, variance.LastUpdatedAt, variance.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert variance for budget %s: %w", variance.BudgetID, err)
	}
	return nil
}

// FindVariance retrieves the snapshot for one (budget, period, as-of) key.
func (r *PgxVarianceRepository) FindVariance(ctx context.Context, budgetID string, period domain.VariancePeriod, asOf time.Time) (*domain.BudgetVariance, error) {
	query := `
		SELECT variance_id, budget_id, period, as_of_date, budgeted_amount, actual_amount,
			variance_amount, variance_percent, status, categories,
			created_at, created_by, last_updated_at, last_updated_by
		FROM budget_variances
		WHERE budget_id = $1 AND period = $2 AND as_of_date = $3;
	`
	var v domain.BudgetVariance
	var categories []byte
	err := r.Pool.QueryRow(ctx, query, budgetID, string(period), asOf).Scan(
		&v.VarianceID, &v.BudgetID, &v.Period, &v.AsOfDate, &v.BudgetedAmount, &v.ActualAmount,
		&v.VarianceAmount, &v.VariancePercent, &v.Status, &categories,
		&v.CreatedAt, &v.CreatedBy, &v.LastUpdatedAt, &v.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find variance for budget %s: %w", budgetID, err)
	}
	if len(categories) > 0 {
		if err := json.Unmarshal(categories, &v.Categories); err != nil {
			return nil, fmt.Errorf("failed to unmarshal category variances for %s: %w", v.VarianceID, err)
		}
	}
	return &v, nil
}

// ListVarianceTrend retrieves historical snapshots for a budget and period
// within a date range, oldest first.
func (r *PgxVarianceRepository) ListVarianceTrend(ctx context.Context, budgetID string, period domain.VariancePeriod, from, to time.Time) ([]domain.VarianceTrendPoint, error) {
	query := `
		SELECT as_of_date, budgeted_amount, actual_amount, variance_amount, status
		FROM budget_variances
		WHERE budget_id = $1 AND period = $2 AND as_of_date >= $3 AND as_of_date <= $4
		ORDER BY as_of_date ASC;
	`
	rows, err := r.Pool.Query(ctx, query, budgetID, string(period), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query variance trend for budget %s: %w", budgetID, err)
	}
	defer rows.Close()

	points := []domain.VarianceTrendPoint{}
	for rows.Next() {
		var p domain.VarianceTrendPoint
		if err := rows.Scan(&p.AsOfDate, &p.BudgetedAmount, &p.ActualAmount, &p.VarianceAmount, &p.Status); err != nil {
			return nil, fmt.Errorf("failed to scan variance trend row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variance trend rows: %w", err)
	}
	return points, nil
}

// PgxForecastRepository stores generated forecasts and derives the historical
// actuals series from budget_spend_history.
type PgxForecastRepository struct {
	BaseRepository
}

// newPgxForecastRepository creates a new repository for forecasts.
func newPgxForecastRepository(pool *pgxpool.Pool) portsrepo.ForecastRepository {
	return &PgxForecastRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxForecastRepository implements portsrepo.ForecastRepository
var _ portsrepo.ForecastRepository = (*PgxForecastRepository)(nil)

const forecastColumns = `forecast_id, budget_id, algorithm, methodology, horizon, low_confidence, generated_at, points, mape, rmse, created_at, created_by, last_updated_at, last_updated_by`

// SaveForecast persists a generated forecast with its points.
func (r *PgxForecastRepository) SaveForecast(ctx context.Context, forecast domain.BudgetForecast) error {
	points, err := json.Marshal(forecast.Points)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast points: %w", err)
	}

	query := `
		INSERT INTO budget_forecasts (` + forecastColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = r.Pool.Exec(ctx, query,
		forecast.ForecastID, forecast.BudgetID, string(forecast.Algorithm), forecast.Methodology,
		forecast.Horizon, forecast.LowConfidence, forecast.GeneratedAt, points,
		forecast.Accuracy.MAPE, forecast.Accuracy.RMSE,
		forecast.CreatedAt, forecast.CreatedBy, forecast.LastUpdatedAt, forecast.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save forecast %s: %w", forecast.ForecastID, err)
	}
	return nil
}

func (r *PgxForecastRepository) scanForecast(row pgx.Row) (*domain.BudgetForecast, error) {
	var f domain.BudgetForecast
	var points []byte
	err := row.Scan(
		&f.ForecastID, &f.BudgetID, &f.Algorithm, &f.Methodology,
		&f.Horizon, &f.LowConfidence, &f.GeneratedAt, &points,
		&f.Accuracy.MAPE, &f.Accuracy.RMSE,
		&f.CreatedAt, &f.CreatedBy, &f.LastUpdatedAt, &f.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if len(points) > 0 {
		if err := json.Unmarshal(points, &f.Points); err != nil {
			return nil, fmt.Errorf("failed to unmarshal points for forecast %s: %w", f.ForecastID, err)
		}
	}
	return &f, nil
}

// FindForecastByID retrieves a forecast by its ID.
func (r *PgxForecastRepository) FindForecastByID(ctx context.Context, forecastID string) (*domain.BudgetForecast, error) {
	query := `SELECT ` + forecastColumns + ` FROM budget_forecasts WHERE forecast_id = $1;`
	f, err := r.scanForecast(r.Pool.QueryRow(ctx, query, forecastID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find forecast %s: %w", forecastID, err)
	}
	return f, nil
}

// FindLatestForecast retrieves the most recently generated forecast for a
// budget and algorithm.
func (r *PgxForecastRepository) FindLatestForecast(ctx context.Context, budgetID string, algorithm domain.ForecastAlgorithm) (*domain.BudgetForecast, error) {
	query := `
		SELECT ` + forecastColumns + `
		FROM budget_forecasts
		WHERE budget_id = $1 AND algorithm = $2
		ORDER BY generated_at DESC
		LIMIT 1;
	`
	f, err := r.scanForecast(r.Pool.QueryRow(ctx, query, budgetID, string(algorithm)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest forecast for budget %s: %w", budgetID, err)
	}
	return f, nil
}

// ListActuals aggregates budget_spend_history into a per-period spending
// series, oldest first.
func (r *PgxForecastRepository) ListActuals(ctx context.Context, budgetID string, period domain.VariancePeriod, upTo time.Time) ([]domain.ActualPoint, error) {
	var unit string
	switch period {
	case domain.PeriodMonthly:
		unit = "month"
	case domain.PeriodQuarterly:
		unit = "quarter"
	case domain.PeriodYearly:
		unit = "year"
	default:
		return nil, fmt.Errorf("%w: unsupported period %q", apperrors.ErrValidation, period)
	}

	query := fmt.Sprintf(`
		SELECT date_trunc('%s', occurred_at) AS period_start, SUM(amount)
		FROM budget_spend_history
		WHERE budget_id = $1 AND occurred_at <= $2
		GROUP BY period_start
		ORDER BY period_start ASC;
	`, unit)
	rows, err := r.Pool.Query(ctx, query, budgetID, upTo)
	if err != nil {
		return nil, fmt.Errorf("failed to query spend history for budget %s: %w", budgetID, err)
	}
	defer rows.Close()

	actuals := []domain.ActualPoint{}
	for rows.Next() {
		var p domain.ActualPoint
		if err := rows.Scan(&p.PeriodStart, &p.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan spend history row: %w", err)
		}
		actuals = append(actuals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating spend history rows: %w", err)
	}
	return actuals, nil
}
