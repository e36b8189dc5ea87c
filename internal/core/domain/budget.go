package domain

import (
	"github.com/shopspring/decimal"
)

// BudgetStatus tracks a budget's lifecycle.
type BudgetStatus string

const (
	BudgetDraft    BudgetStatus = "DRAFT"
	BudgetPending  BudgetStatus = "PENDING"
	BudgetApproved BudgetStatus = "APPROVED"
	BudgetActive   BudgetStatus = "ACTIVE"
	BudgetClosed   BudgetStatus = "CLOSED"
)

// CategoryType classifies a budget category's spend.
type CategoryType string

const (
	CategoryLabor     CategoryType = "LABOR"
	CategoryMaterials CategoryType = "MATERIALS"
	CategoryEquipment CategoryType = "EQUIPMENT"
	CategoryOverhead  CategoryType = "OVERHEAD"
)

// ValidCategoryType reports whether t is a supported category type.
func ValidCategoryType(t CategoryType) bool {
	switch t {
	case CategoryLabor, CategoryMaterials, CategoryEquipment, CategoryOverhead:
		return true
	}
	return false
}

// BudgetKind distinguishes what organizational unit a budget funds. Revenue
// budgets flip the variance sign convention.
type BudgetKind string

const (
	BudgetKindExpense BudgetKind = "EXPENSE"
	BudgetKindRevenue BudgetKind = "REVENUE"
)

// BudgetItem is one line of a category's allocation breakdown.
// TotalCost is always quantity x unit cost; it is derived, never supplied.
type BudgetItem struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	TotalCost   decimal.Decimal `json:"totalCost"`
}

// BudgetCategory is a budget's allocation for one spend type. SpentAmount is
// monotonically non-decreasing and only moves via posted actuals.
type BudgetCategory struct {
	Name            string          `json:"name"`
	Type            CategoryType    `json:"type"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	SpentAmount     decimal.Decimal `json:"spentAmount"`
	Items           []BudgetItem    `json:"items,omitempty"`
}

// ItemTotal sums the category's item costs. Items exceeding the allocated
// amount is a soft condition: reported, not blocked.
func (c BudgetCategory) ItemTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalCost)
	}
	return total
}

// OverAllocated reports whether the category's items cost more than its
// allocation.
func (c BudgetCategory) OverAllocated() bool {
	return c.ItemTotal().GreaterThan(c.AllocatedAmount)
}

// Budget is a fiscal-year allocation for a department or project, broken down
// into categories. Rollup fields are recomputed from the categories on every
// mutation; they are never written directly.
type Budget struct {
	BudgetID     string           `json:"budgetID"`
	Name         string           `json:"name"`
	FiscalYear   int              `json:"fiscalYear"`
	DepartmentID *string          `json:"departmentID,omitempty"`
	ProjectID    *string          `json:"projectID,omitempty"`
	Kind         BudgetKind       `json:"kind"`
	Status       BudgetStatus     `json:"status"`
	CurrencyCode string           `json:"currencyCode"`
	TotalBudget  decimal.Decimal  `json:"totalBudget"`
	ActualSpent  decimal.Decimal  `json:"actualSpent"`
	Remaining    decimal.Decimal  `json:"remaining"`
	Utilization  decimal.Decimal  `json:"utilization"` // percent, capped at 100
	Categories   []BudgetCategory `json:"categories"`
	AuditFields
}

// AllocatedTotal sums the category allocations.
func (b *Budget) AllocatedTotal() decimal.Decimal {
	allocated := decimal.Zero
	for _, cat := range b.Categories {
		allocated = allocated.Add(cat.AllocatedAmount)
	}
	return allocated
}

// Recalculate refreshes the rollup fields from the categories. TotalBudget is
// an input here, never derived: transfers move it independently of the
// category allocations, and a drained budget must stay at zero.
func (b *Budget) Recalculate() {
	spent := decimal.Zero
	for _, cat := range b.Categories {
		spent = spent.Add(cat.SpentAmount)
	}
	b.ActualSpent = spent
	b.Remaining = b.TotalBudget.Sub(b.ActualSpent)
	if b.TotalBudget.IsPositive() {
		hundred := decimal.NewFromInt(100)
		util := b.ActualSpent.Div(b.TotalBudget).Mul(hundred)
		if util.GreaterThan(hundred) {
			util = hundred
		}
		b.Utilization = util
	} else {
		b.Utilization = decimal.Zero
	}
}
