package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VarianceStatus classifies a budget-to-actual gap. A small relative gap on
// either side is neutral.
type VarianceStatus string

const (
	VarianceFavorable   VarianceStatus = "FAVORABLE"
	VarianceUnfavorable VarianceStatus = "UNFAVORABLE"
	VarianceNeutral     VarianceStatus = "NEUTRAL"
)

// VariancePeriod identifies the reporting window a variance snapshot covers.
type VariancePeriod string

const (
	PeriodMonthly   VariancePeriod = "MONTHLY"
	PeriodQuarterly VariancePeriod = "QUARTERLY"
	PeriodYearly    VariancePeriod = "YEARLY"
)

// ValidVariancePeriod reports whether p is a supported reporting period.
func ValidVariancePeriod(p VariancePeriod) bool {
	switch p {
	case PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

// CategoryVariance is the budget-to-actual comparison for one category.
// VariancePercent is nil when the budgeted amount is zero; the magnitude is
// carried by VarianceAmount alone in that case.
type CategoryVariance struct {
	Name            string           `json:"name"`
	Type            CategoryType     `json:"type"`
	BudgetedAmount  decimal.Decimal  `json:"budgetedAmount"`
	ActualAmount    decimal.Decimal  `json:"actualAmount"`
	VarianceAmount  decimal.Decimal  `json:"varianceAmount"`
	VariancePercent *decimal.Decimal `json:"variancePercent,omitempty"`
	Status          VarianceStatus   `json:"status"`
}

// BudgetVariance is an idempotent snapshot of a budget's variance for one
// (budget, period, date) key. Recomputing the same key replaces the snapshot
// rather than duplicating it.
type BudgetVariance struct {
	VarianceID      string             `json:"varianceID"`
	BudgetID        string             `json:"budgetID"`
	Period          VariancePeriod     `json:"period"`
	AsOfDate        time.Time          `json:"asOfDate"`
	BudgetedAmount  decimal.Decimal    `json:"budgetedAmount"`
	ActualAmount    decimal.Decimal    `json:"actualAmount"`
	VarianceAmount  decimal.Decimal    `json:"varianceAmount"`
	VariancePercent *decimal.Decimal   `json:"variancePercent,omitempty"`
	Status          VarianceStatus     `json:"status"`
	Categories      []CategoryVariance `json:"categories"`
	AuditFields
}

// VarianceTrendPoint is one period's variance in a historical trend series.
type VarianceTrendPoint struct {
	AsOfDate       time.Time       `json:"asOfDate"`
	BudgetedAmount decimal.Decimal `json:"budgetedAmount"`
	ActualAmount   decimal.Decimal `json:"actualAmount"`
	VarianceAmount decimal.Decimal `json:"varianceAmount"`
	Status         VarianceStatus  `json:"status"`
}
