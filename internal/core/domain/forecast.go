package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ForecastAlgorithm selects the projection method for a spending forecast.
type ForecastAlgorithm string

const (
	ForecastLinear      ForecastAlgorithm = "LINEAR"
	ForecastSeasonal    ForecastAlgorithm = "SEASONAL"
	ForecastExponential ForecastAlgorithm = "EXPONENTIAL"
	ForecastML          ForecastAlgorithm = "ML"
)

// ValidForecastAlgorithm reports whether a is a supported algorithm.
func ValidForecastAlgorithm(a ForecastAlgorithm) bool {
	switch a {
	case ForecastLinear, ForecastSeasonal, ForecastExponential, ForecastML:
		return true
	}
	return false
}

// ActualPoint is one historical period of observed spending, the input series
// for forecasting. Points are ordered oldest first.
type ActualPoint struct {
	PeriodStart time.Time       `json:"periodStart"`
	Amount      decimal.Decimal `json:"amount"`
}

// ConfidenceInterval bounds a forecast point. Lower is floored at zero since
// spending cannot go negative.
type ConfidenceInterval struct {
	Lower decimal.Decimal `json:"lower"`
	Upper decimal.Decimal `json:"upper"`
}

// ForecastPoint is one projected future period.
type ForecastPoint struct {
	PeriodStart time.Time          `json:"periodStart"`
	Predicted   decimal.Decimal    `json:"predicted"`
	Interval    ConfidenceInterval `json:"interval"`
}

// ForecastAccuracy holds backtest error metrics for a generated forecast.
// MAPE is nil when any historical actual is zero.
type ForecastAccuracy struct {
	MAPE *decimal.Decimal `json:"mape,omitempty"`
	RMSE decimal.Decimal  `json:"rmse"`
}

// BudgetForecast is a stored projection of future spending for a budget. The
// methodology string records which algorithm actually ran, including any
// fallback taken when the history was too short.
type BudgetForecast struct {
	ForecastID    string            `json:"forecastID"`
	BudgetID      string            `json:"budgetID"`
	Algorithm     ForecastAlgorithm `json:"algorithm"`
	Methodology   string            `json:"methodology"`
	Horizon       int               `json:"horizon"` // number of future periods
	LowConfidence bool              `json:"lowConfidence"`
	GeneratedAt   time.Time         `json:"generatedAt"`
	Points        []ForecastPoint   `json:"points"`
	Accuracy      ForecastAccuracy  `json:"accuracy"`
	AuditFields
}

// EvaluatedPoint pairs one forecast point with the spending actually recorded
// for its period.
type EvaluatedPoint struct {
	PeriodStart time.Time       `json:"periodStart"`
	Predicted   decimal.Decimal `json:"predicted"`
	Actual      decimal.Decimal `json:"actual"`
}

// ForecastEvaluation scores a stored forecast against the actuals that arrived
// after it was generated. Only predicted periods with observed spending are
// scored; periods still in the future are skipped.
type ForecastEvaluation struct {
	ForecastID  string            `json:"forecastID"`
	BudgetID    string            `json:"budgetID"`
	Algorithm   ForecastAlgorithm `json:"algorithm"`
	EvaluatedAt time.Time         `json:"evaluatedAt"`
	Points      []EvaluatedPoint  `json:"points"`
	Accuracy    ForecastAccuracy  `json:"accuracy"`
}
