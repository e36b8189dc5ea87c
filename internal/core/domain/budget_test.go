package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
)

func TestBudgetRecalculate(t *testing.T) {
	budget := domain.Budget{
		TotalBudget: decimal.NewFromInt(1000),
		Categories: []domain.BudgetCategory{
			{Name: "Labor", Type: domain.CategoryLabor, AllocatedAmount: decimal.NewFromInt(600), SpentAmount: decimal.NewFromInt(250)},
			{Name: "Materials", Type: domain.CategoryMaterials, AllocatedAmount: decimal.NewFromInt(400), SpentAmount: decimal.NewFromInt(150)},
		},
	}
	budget.Recalculate()

	assert.True(t, budget.ActualSpent.Equal(decimal.NewFromInt(400)), "spent should roll up from categories")
	assert.True(t, budget.Remaining.Equal(decimal.NewFromInt(600)))
	assert.True(t, budget.Utilization.Equal(decimal.NewFromInt(40)))
}

func TestBudgetRecalculate_KeepsTotalBudget(t *testing.T) {
	// A transfer can drain a budget to zero while its category allocations
	// stay untouched; the total must not spring back from the allocations.
	budget := domain.Budget{
		TotalBudget: decimal.NewFromInt(100),
		Categories: []domain.BudgetCategory{
			{Name: "Overhead", Type: domain.CategoryOverhead, AllocatedAmount: decimal.NewFromInt(100)},
		},
	}
	budget.TotalBudget = budget.TotalBudget.Sub(decimal.NewFromInt(100))
	budget.Recalculate()

	assert.True(t, budget.TotalBudget.IsZero(), "TotalBudget should be 0 but is %s", budget.TotalBudget)
	assert.True(t, budget.Remaining.IsZero())
	assert.True(t, budget.Utilization.IsZero())
}

func TestBudgetAllocatedTotal(t *testing.T) {
	budget := domain.Budget{
		Categories: []domain.BudgetCategory{
			{Name: "Labor", Type: domain.CategoryLabor, AllocatedAmount: decimal.NewFromInt(600)},
			{Name: "Equipment", Type: domain.CategoryEquipment, AllocatedAmount: decimal.NewFromInt(150)},
		},
	}
	assert.True(t, budget.AllocatedTotal().Equal(decimal.NewFromInt(750)))
}

func TestBudgetCategoryOverAllocated(t *testing.T) {
	cat := domain.BudgetCategory{
		Name:            "Equipment",
		Type:            domain.CategoryEquipment,
		AllocatedAmount: decimal.NewFromInt(1000),
		Items: []domain.BudgetItem{
			{Name: "Workstations", Quantity: decimal.NewFromInt(3), UnitCost: decimal.NewFromInt(400), TotalCost: decimal.NewFromInt(1200)},
		},
	}
	assert.True(t, cat.OverAllocated())
	assert.True(t, cat.ItemTotal().Equal(decimal.NewFromInt(1200)))
}
