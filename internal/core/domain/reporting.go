package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow is one ledger account's balance normalized to its natural
// side. Exactly one of Debit/Credit is non-zero unless the balance is zero.
type TrialBalanceRow struct {
	LedgerID   string          `json:"ledgerID"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	GroupType  GroupType       `json:"groupType"`
	GroupName  string          `json:"groupName"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
}

// TrialBalanceReport is the full trial balance as of a date. Balanced is false
// only when the books hold a consistency defect.
type TrialBalanceReport struct {
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	Balanced    bool              `json:"balanced"`
}

// LedgerBalanceSnapshot is one ledger's signed balance as of a date, together
// with the chart context needed for reporting. The balance is signed relative
// to the ledger's natural side and not yet normalized into columns.
type LedgerBalanceSnapshot struct {
	LedgerID  string
	Code      string
	Name      string
	GroupType GroupType
	GroupName string
	Nature    BalanceType
	Balance   decimal.Decimal
}

// LedgerBalance is a point-in-time balance for one ledger account.
type LedgerBalance struct {
	LedgerID string          `json:"ledgerID"`
	AsOf     time.Time       `json:"asOf"`
	Balance  decimal.Decimal `json:"balance"`
}
