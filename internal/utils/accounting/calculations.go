package accounting

import (
	"fmt"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MoneyPrecision is the decimal scale all monetary amounts are rounded to
// before storage or comparison.
const MoneyPrecision = 2

// Round normalizes an amount to money precision using half-up rounding.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPrecision)
}

// ValidateEntryBalance checks the double-entry invariants of a set of journal
// lines: at least two lines, each line carries exactly one positive side, and
// total debits equal total credits. It returns the totals so callers can store
// them without re-summing.
func ValidateEntryBalance(lines []domain.JournalLine) (totalDebit, totalCredit decimal.Decimal, err error) {
	if len(lines) < 2 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("journal entry must have at least two lines")
	}

	totalDebit = decimal.Zero
	totalCredit = decimal.Zero
	for i, line := range lines {
		debitSet := line.Debit.IsPositive()
		creditSet := line.Credit.IsPositive()
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("line %d: amounts must not be negative", i)
		}
		if debitSet == creditSet {
			return decimal.Zero, decimal.Zero, fmt.Errorf("line %d: exactly one of debit or credit must be positive", i)
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}

	if !totalDebit.Equal(totalCredit) {
		return totalDebit, totalCredit, fmt.Errorf("entry does not balance: debits %s, credits %s", totalDebit, totalCredit)
	}
	return totalDebit, totalCredit, nil
}

// ApplyLines replays journal lines against a starting balance for a ledger of
// the given nature and returns the resulting balance.
func ApplyLines(opening decimal.Decimal, nature domain.BalanceType, lines []domain.JournalLine) decimal.Decimal {
	balance := opening
	for _, line := range lines {
		balance = balance.Add(line.SignedAmount(nature))
	}
	return balance
}

// NormalizeToNaturalSide converts a signed balance into a (debit, credit) pair
// for trial balance presentation. A balance on the account's natural side lands
// in that column; a flipped balance lands in the opposite column as a positive
// amount.
func NormalizeToNaturalSide(balance decimal.Decimal, nature domain.BalanceType) (debit, credit decimal.Decimal) {
	if nature == domain.DebitBalance {
		if balance.IsNegative() {
			return decimal.Zero, balance.Neg()
		}
		return balance, decimal.Zero
	}
	if balance.IsNegative() {
		return balance.Neg(), decimal.Zero
	}
	return decimal.Zero, balance
}

// ComputeAllocationShares splits an amount across percentage rules. Each share
// is rounded to money precision; any rounding residual is folded into the last
// rule's share so the shares sum exactly to the allocated portion of the
// amount. Rules must already be validated (percentages in range, total at most
// 100).
func ComputeAllocationShares(amount decimal.Decimal, rules []domain.AllocationRule) []domain.AllocationShare {
	if len(rules) == 0 {
		return nil
	}

	hundred := decimal.NewFromInt(100)
	totalPercent := decimal.Zero
	for _, rule := range rules {
		totalPercent = totalPercent.Add(rule.Percentage)
	}
	target := Round(amount.Mul(totalPercent).Div(hundred))

	shares := make([]domain.AllocationShare, len(rules))
	running := decimal.Zero
	for i, rule := range rules {
		share := Round(amount.Mul(rule.Percentage).Div(hundred))
		shares[i] = domain.AllocationShare{
			TargetCostCenterID: rule.TargetCostCenterID,
			Percentage:         rule.Percentage,
			Amount:             share,
		}
		running = running.Add(share)
	}

	residual := target.Sub(running)
	if !residual.IsZero() {
		last := len(shares) - 1
		shares[last].Amount = shares[last].Amount.Add(residual)
	}
	return shares
}
