package accounting

import (
	"testing"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidateEntryBalance_Balanced(t *testing.T) {
	lines := []domain.JournalLine{
		{LedgerID: "cash", Debit: d("100.00")},
		{LedgerID: "revenue", Credit: d("100.00")},
	}
	debit, credit, err := ValidateEntryBalance(lines)
	require.NoError(t, err)
	assert.True(t, debit.Equal(d("100.00")))
	assert.True(t, credit.Equal(d("100.00")))
}

func TestValidateEntryBalance_Unbalanced(t *testing.T) {
	lines := []domain.JournalLine{
		{LedgerID: "cash", Debit: d("100.00")},
		{LedgerID: "revenue", Credit: d("99.99")},
	}
	_, _, err := ValidateEntryBalance(lines)
	assert.Error(t, err)
}

func TestValidateEntryBalance_SingleLine(t *testing.T) {
	lines := []domain.JournalLine{
		{LedgerID: "cash", Debit: d("100.00")},
	}
	_, _, err := ValidateEntryBalance(lines)
	assert.Error(t, err)
}

func TestValidateEntryBalance_BothSidesSet(t *testing.T) {
	lines := []domain.JournalLine{
		{LedgerID: "cash", Debit: d("50.00"), Credit: d("50.00")},
		{LedgerID: "revenue", Credit: d("0.00")},
	}
	_, _, err := ValidateEntryBalance(lines)
	assert.Error(t, err)
}

func TestValidateEntryBalance_NegativeAmount(t *testing.T) {
	lines := []domain.JournalLine{
		{LedgerID: "cash", Debit: d("-100.00")},
		{LedgerID: "revenue", Credit: d("-100.00")},
	}
	_, _, err := ValidateEntryBalance(lines)
	assert.Error(t, err)
}

func TestApplyLines_DebitNatured(t *testing.T) {
	lines := []domain.JournalLine{
		{Debit: d("500.00")},
		{Credit: d("200.00")},
	}
	got := ApplyLines(d("1000.00"), domain.DebitBalance, lines)
	assert.True(t, got.Equal(d("1300.00")), "got %s", got)
}

func TestApplyLines_CreditNatured(t *testing.T) {
	lines := []domain.JournalLine{
		{Debit: d("500.00")},
		{Credit: d("200.00")},
	}
	got := ApplyLines(d("1000.00"), domain.CreditBalance, lines)
	assert.True(t, got.Equal(d("700.00")), "got %s", got)
}

func TestNormalizeToNaturalSide(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		nature  domain.BalanceType
		debit   string
		credit  string
	}{
		{"debit account positive", "150.00", domain.DebitBalance, "150.00", "0"},
		{"debit account flipped", "-25.00", domain.DebitBalance, "0", "25.00"},
		{"credit account positive", "80.00", domain.CreditBalance, "0", "80.00"},
		{"credit account flipped", "-10.00", domain.CreditBalance, "10.00", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debit, credit := NormalizeToNaturalSide(d(tt.balance), tt.nature)
			assert.True(t, debit.Equal(d(tt.debit)), "debit %s", debit)
			assert.True(t, credit.Equal(d(tt.credit)), "credit %s", credit)
		})
	}
}

func TestComputeAllocationShares_ResidualToLastRule(t *testing.T) {
	rules := []domain.AllocationRule{
		{TargetCostCenterID: "cc-a", Percentage: d("33")},
		{TargetCostCenterID: "cc-b", Percentage: d("33")},
		{TargetCostCenterID: "cc-c", Percentage: d("34")},
	}
	shares := ComputeAllocationShares(d("1000.00"), rules)
	require.Len(t, shares, 3)
	assert.True(t, shares[0].Amount.Equal(d("330.00")))
	assert.True(t, shares[1].Amount.Equal(d("330.00")))
	assert.True(t, shares[2].Amount.Equal(d("340.00")))
}

func TestComputeAllocationShares_RoundingResidual(t *testing.T) {
	rules := []domain.AllocationRule{
		{TargetCostCenterID: "cc-a", Percentage: d("33.33")},
		{TargetCostCenterID: "cc-b", Percentage: d("33.33")},
		{TargetCostCenterID: "cc-c", Percentage: d("33.34")},
	}
	shares := ComputeAllocationShares(d("100.00"), rules)
	require.Len(t, shares, 3)

	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	assert.True(t, total.Equal(d("100.00")), "shares must sum to the full amount, got %s", total)
}

func TestComputeAllocationShares_PartialAllocation(t *testing.T) {
	rules := []domain.AllocationRule{
		{TargetCostCenterID: "cc-a", Percentage: d("25")},
		{TargetCostCenterID: "cc-b", Percentage: d("25")},
	}
	shares := ComputeAllocationShares(d("999.99"), rules)
	require.Len(t, shares, 2)

	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	// Half of 999.99 rounded to cents, residual folded into the last share.
	assert.True(t, total.Equal(d("500.00")), "got %s", total)
}

func TestComputeAllocationShares_NoRules(t *testing.T) {
	assert.Nil(t, ComputeAllocationShares(d("100.00"), nil))
}
