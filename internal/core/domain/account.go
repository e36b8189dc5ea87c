package domain

import (
	"github.com/shopspring/decimal"
)

// GroupType is the top-level classification of an account group.
type GroupType string

const (
	GroupAssets      GroupType = "ASSETS"
	GroupLiabilities GroupType = "LIABILITIES"
	GroupIncome      GroupType = "INCOME"
	GroupExpenses    GroupType = "EXPENSES"
)

// ValidGroupType reports whether t is one of the four supported group types.
func ValidGroupType(t GroupType) bool {
	switch t {
	case GroupAssets, GroupLiabilities, GroupIncome, GroupExpenses:
		return true
	}
	return false
}

// BalanceType is the natural side of a ledger account: a debit-natured
// account grows with debits, a credit-natured account grows with credits.
type BalanceType string

const (
	DebitBalance  BalanceType = "DEBIT"
	CreditBalance BalanceType = "CREDIT"
)

// NaturalBalanceType returns the conventional balance side for a group type.
func NaturalBalanceType(t GroupType) BalanceType {
	if t == GroupAssets || t == GroupExpenses {
		return DebitBalance
	}
	return CreditBalance
}

// MaxSubGroupDepth bounds the ancestor walk used for cycle detection when
// nesting sub-groups.
const MaxSubGroupDepth = 32

// AccountGroup is a top-level node of the chart of accounts. Its code is
// immutable once a sub-group references it.
type AccountGroup struct {
	GroupID     string    `json:"groupID"`
	Code        string    `json:"code"` // unique across groups
	Name        string    `json:"name"`
	Type        GroupType `json:"type"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	AuditFields
}

// AccountSubGroup is a mid-level node. It belongs to exactly one group and may
// nest under another sub-group of the same group; Level is computed from the
// parent chain, never supplied by the caller.
type AccountSubGroup struct {
	SubGroupID       string  `json:"subGroupID"`
	Code             string  `json:"code"` // unique across sub-groups
	Name             string  `json:"name"`
	GroupID          string  `json:"groupID"`
	ParentSubGroupID *string `json:"parentSubGroupID,omitempty"`
	Level            int     `json:"level"`
	IsActive         bool    `json:"isActive"`
	AuditFields
}

// AccountLedger is a posting-eligible leaf account. CurrentBalance is only
// ever moved by posted journal lines; once a posting exists it is never
// edited directly.
type AccountLedger struct {
	LedgerID       string          `json:"ledgerID"`
	Code           string          `json:"code"` // unique across ledgers
	Name           string          `json:"name"`
	SubGroupID     string          `json:"subGroupID"`
	BalanceType    BalanceType     `json:"balanceType"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	CurrencyCode   string          `json:"currencyCode"`
	Description    string          `json:"description"`
	IsActive       bool            `json:"isActive"` // soft delete; history retained for reporting
	AuditFields
}

// LedgerHierarchy is the resolved group -> sub-group -> ledger path of one
// ledger account.
type LedgerHierarchy struct {
	Group    AccountGroup    `json:"group"`
	SubGroup AccountSubGroup `json:"subGroup"`
	Ledger   AccountLedger   `json:"ledger"`
}
