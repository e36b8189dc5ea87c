package dto

import (
	"time"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ComputeVarianceRequest defines the parameters of a variance computation.
type ComputeVarianceRequest struct {
	Period domain.VariancePeriod `json:"period" binding:"required,oneof=MONTHLY QUARTERLY YEARLY"`
	AsOf   time.Time             `json:"asOf" binding:"required"`
}

// CategoryVarianceResponse is the budget-to-actual comparison for one category.
type CategoryVarianceResponse struct {
	Name            string                `json:"name"`
	Type            domain.CategoryType   `json:"type"`
	BudgetedAmount  decimal.Decimal       `json:"budgetedAmount"`
	ActualAmount    decimal.Decimal       `json:"actualAmount"`
	VarianceAmount  decimal.Decimal       `json:"varianceAmount"`
	VariancePercent *decimal.Decimal      `json:"variancePercent,omitempty"`
	Status          domain.VarianceStatus `json:"status"`
}

// VarianceResponse defines the data returned for a variance snapshot.
type VarianceResponse struct {
	VarianceID      string                     `json:"varianceID"`
	BudgetID        string                     `json:"budgetID"`
	Period          domain.VariancePeriod      `json:"period"`
	AsOfDate        time.Time                  `json:"asOfDate"`
	BudgetedAmount  decimal.Decimal            `json:"budgetedAmount"`
	ActualAmount    decimal.Decimal            `json:"actualAmount"`
	VarianceAmount  decimal.Decimal            `json:"varianceAmount"`
	VariancePercent *decimal.Decimal           `json:"variancePercent,omitempty"`
	Status          domain.VarianceStatus      `json:"status"`
	Categories      []CategoryVarianceResponse `json:"categories"`
}

// ToVarianceResponse converts a domain.BudgetVariance to its DTO
func ToVarianceResponse(v *domain.BudgetVariance) VarianceResponse {
	categories := make([]CategoryVarianceResponse, len(v.Categories))
	for i, c := range v.Categories {
		categories[i] = CategoryVarianceResponse{
			Name:            c.Name,
			Type:            c.Type,
			BudgetedAmount:  c.BudgetedAmount,
			ActualAmount:    c.ActualAmount,
			VarianceAmount:  c.VarianceAmount,
			VariancePercent: c.VariancePercent,
			Status:          c.Status,
		}
	}
	return VarianceResponse{
		VarianceID:      v.VarianceID,
		BudgetID:        v.BudgetID,
		Period:          v.Period,
		AsOfDate:        v.AsOfDate,
		BudgetedAmount:  v.BudgetedAmount,
		ActualAmount:    v.ActualAmount,
		VarianceAmount:  v.VarianceAmount,
		VariancePercent: v.VariancePercent,
		Status:          v.Status,
		Categories:      categories,
	}
}

// VarianceTrendParams defines query parameters for a variance trend series.
type VarianceTrendParams struct {
	Period domain.VariancePeriod `form:"period,default=MONTHLY" binding:"omitempty,oneof=MONTHLY QUARTERLY YEARLY"`
	From   time.Time             `form:"from" time_format:"2006-01-02"`
	To     time.Time             `form:"to" time_format:"2006-01-02"`
}

// VarianceTrendPointResponse is one period of a variance trend series.
type VarianceTrendPointResponse struct {
	AsOfDate       time.Time             `json:"asOfDate"`
	BudgetedAmount decimal.Decimal       `json:"budgetedAmount"`
	ActualAmount   decimal.Decimal       `json:"actualAmount"`
	VarianceAmount decimal.Decimal       `json:"varianceAmount"`
	Status         domain.VarianceStatus `json:"status"`
}

// ToVarianceTrendResponse converts domain trend points to DTOs
func ToVarianceTrendResponse(points []domain.VarianceTrendPoint) []VarianceTrendPointResponse {
	res := make([]VarianceTrendPointResponse, len(points))
	for i, p := range points {
		res[i] = VarianceTrendPointResponse{
			AsOfDate:       p.AsOfDate,
			BudgetedAmount: p.BudgetedAmount,
			ActualAmount:   p.ActualAmount,
			VarianceAmount: p.VarianceAmount,
			Status:         p.Status,
		}
	}
	return res
}

// GenerateForecastRequest defines the parameters of a forecast generation.
type GenerateForecastRequest struct {
	Algorithm domain.ForecastAlgorithm `json:"algorithm" binding:"required,oneof=LINEAR SEASONAL EXPONENTIAL ML"`
	Period    domain.VariancePeriod    `json:"period" binding:"omitempty,oneof=MONTHLY QUARTERLY YEARLY"`
	Horizon   int                      `json:"horizon" binding:"required,min=1,max=60"`
}

// ForecastPointResponse is one projected period.
type ForecastPointResponse struct {
	PeriodStart time.Time       `json:"periodStart"`
	Predicted   decimal.Decimal `json:"predicted"`
	Lower       decimal.Decimal `json:"lower"`
	Upper       decimal.Decimal `json:"upper"`
}

// ForecastResponse defines the data returned for a generated forecast.
type ForecastResponse struct {
	ForecastID    string                   `json:"forecastID"`
	BudgetID      string                   `json:"budgetID"`
	Algorithm     domain.ForecastAlgorithm `json:"algorithm"`
	Methodology   string                   `json:"methodology"`
	Horizon       int                      `json:"horizon"`
	LowConfidence bool                     `json:"lowConfidence"`
	GeneratedAt   time.Time                `json:"generatedAt"`
	Points        []ForecastPointResponse  `json:"points"`
	MAPE          *decimal.Decimal         `json:"mape,omitempty"`
	RMSE          decimal.Decimal          `json:"rmse"`
}

// ToForecastResponse converts a domain.BudgetForecast to its DTO
func ToForecastResponse(f *domain.BudgetForecast) ForecastResponse {
	points := make([]ForecastPointResponse, len(f.Points))
	for i, p := range f.Points {
		points[i] = ForecastPointResponse{
			PeriodStart: p.PeriodStart,
			Predicted:   p.Predicted,
			Lower:       p.Interval.Lower,
			Upper:       p.Interval.Upper,
		}
	}
	return ForecastResponse{
		ForecastID:    f.ForecastID,
		BudgetID:      f.BudgetID,
		Algorithm:     f.Algorithm,
		Methodology:   f.Methodology,
		Horizon:       f.Horizon,
		LowConfidence: f.LowConfidence,
		GeneratedAt:   f.GeneratedAt,
		Points:        points,
		MAPE:          f.Accuracy.MAPE,
		RMSE:          f.Accuracy.RMSE,
	}
}

// EvaluatedPointResponse is one predicted period alongside what was actually
// spent in it.
type EvaluatedPointResponse struct {
	PeriodStart time.Time       `json:"periodStart"`
	Predicted   decimal.Decimal `json:"predicted"`
	Actual      decimal.Decimal `json:"actual"`
}

// ForecastEvaluationResponse defines the data returned for a retrospective
// forecast accuracy check.
type ForecastEvaluationResponse struct {
	ForecastID  string                   `json:"forecastID"`
	BudgetID    string                   `json:"budgetID"`
	Algorithm   domain.ForecastAlgorithm `json:"algorithm"`
	EvaluatedAt time.Time                `json:"evaluatedAt"`
	Points      []EvaluatedPointResponse `json:"points"`
	MAPE        *decimal.Decimal         `json:"mape,omitempty"`
	RMSE        decimal.Decimal          `json:"rmse"`
}

// ToForecastEvaluationResponse converts a domain.ForecastEvaluation to its DTO
func ToForecastEvaluationResponse(e *domain.ForecastEvaluation) ForecastEvaluationResponse {
	points := make([]EvaluatedPointResponse, len(e.Points))
	for i, p := range e.Points {
		points[i] = EvaluatedPointResponse{
			PeriodStart: p.PeriodStart,
			Predicted:   p.Predicted,
			Actual:      p.Actual,
		}
	}
	return ForecastEvaluationResponse{
		ForecastID:  e.ForecastID,
		BudgetID:    e.BudgetID,
		Algorithm:   e.Algorithm,
		EvaluatedAt: e.EvaluatedAt,
		Points:      points,
		MAPE:        e.Accuracy.MAPE,
		RMSE:        e.Accuracy.RMSE,
	}
}
