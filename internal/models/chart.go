package models

import (
	"github.com/shopspring/decimal"
)

// AccountGroup is the row shape of the account_groups table.
type AccountGroup struct {
	GroupID     string `db:"group_id"`
	Code        string `db:"code"`
	Name        string `db:"name"`
	GroupType   string `db:"group_type"`
	Description string `db:"description"`
	IsActive    bool   `db:"is_active"`
	AuditFields
}

// AccountSubGroup is the row shape of the account_sub_groups table.
// ParentSubGroupID is nullable; Level is derived from the parent chain.
type AccountSubGroup struct {
	SubGroupID       string  `db:"sub_group_id"`
	Code             string  `db:"code"`
	Name             string  `db:"name"`
	GroupID          string  `db:"group_id"`
	ParentSubGroupID *string `db:"parent_sub_group_id"`
	Level            int     `db:"level"`
	IsActive         bool    `db:"is_active"`
	AuditFields
}

// AccountLedger is the row shape of the account_ledgers table. CurrentBalance
// is the incrementally maintained balance moved only by posted journal lines.
type AccountLedger struct {
	LedgerID       string          `db:"ledger_id"`
	Code           string          `db:"code"`
	Name           string          `db:"name"`
	SubGroupID     string          `db:"sub_group_id"`
	BalanceType    string          `db:"balance_type"`
	OpeningBalance decimal.Decimal `db:"opening_balance"`
	CurrentBalance decimal.Decimal `db:"current_balance"`
	CurrencyCode   string          `db:"currency_code"`
	Description    string          `db:"description"`
	IsActive       bool            `db:"is_active"`
	AuditFields
}
