package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the state of a budget transfer. Pending is the only
// non-terminal state; transitions are one-way and never reversible.
type TransferStatus string

const (
	TransferPending  TransferStatus = "PENDING"
	TransferApproved TransferStatus = "APPROVED"
	TransferRejected TransferStatus = "REJECTED"
)

// IsTerminal reports whether the status permits no further transitions.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferApproved || s == TransferRejected
}

// BudgetTransfer moves funds between two budgets in the same fiscal year
// under approval control. It references both budgets without owning either.
type BudgetTransfer struct {
	TransferID      string          `json:"transferID"`
	TransferNumber  string          `json:"transferNumber"` // BT-<year>-<seq>
	FromBudgetID    string          `json:"fromBudgetID"`
	ToBudgetID      string          `json:"toBudgetID"`
	Amount          decimal.Decimal `json:"amount"`
	FiscalYear      int             `json:"fiscalYear"`
	Reason          string          `json:"reason"`
	Status          TransferStatus  `json:"status"`
	RequestedBy     string          `json:"requestedBy"`
	DecidedBy       string          `json:"decidedBy,omitempty"`
	DecidedAt       *time.Time      `json:"decidedAt,omitempty"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	AuditFields
}
