package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
// Validation errors are rejected before any state mutation and are safe to
// retry once the caller fixes the input.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates a concurrent modification raced this request.
// The caller should re-fetch and retry once; the engine does not retry itself.
var ErrConflict = errors.New("conflict")

// ErrConsistency indicates corrupted financial history (e.g. a trial balance
// mismatch). It is surfaced to an operator and never auto-repaired.
var ErrConsistency = errors.New("consistency error")

// ErrWorkflow indicates an operation that is invalid for the entity's current
// state (e.g. approving an already-terminal transfer). Terminal for the
// request; retrying without a state change will fail again.
var ErrWorkflow = errors.New("workflow error")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// DuplicateCodeError is returned when a group, sub-group or ledger code is
// already taken.
type DuplicateCodeError struct {
	Code string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("account code %q already exists", e.Code)
}

func (e *DuplicateCodeError) Unwrap() error { return ErrDuplicate }

// CycleError is returned when a sub-group's parent chain would loop back on
// itself, or exceeds the maximum supported nesting depth.
type CycleError struct {
	SubGroupID string
	Depth      int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("sub-group %s: parent chain forms a cycle or exceeds depth %d", e.SubGroupID, e.Depth)
}

func (e *CycleError) Unwrap() error { return ErrValidation }

// InactiveAccountError is returned when a posting references a deactivated
// ledger account.
type InactiveAccountError struct {
	LedgerID string
}

func (e *InactiveAccountError) Error() string {
	return fmt.Sprintf("ledger account %s is inactive and cannot receive postings", e.LedgerID)
}

func (e *InactiveAccountError) Unwrap() error { return ErrWorkflow }

// UnbalancedEntryError is returned when a journal entry's debits and credits
// do not match at the configured precision. Delta is debits minus credits.
type UnbalancedEntryError struct {
	Delta decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("journal entry is not balanced: debit minus credit is %s", e.Delta.String())
}

func (e *UnbalancedEntryError) Unwrap() error { return ErrValidation }

// TrialBalanceMismatchError signals data corruption: the debit-normalized and
// credit-normalized totals of the trial balance disagree.
type TrialBalanceMismatchError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e *TrialBalanceMismatchError) Error() string {
	return fmt.Sprintf("trial balance mismatch: debits %s, credits %s", e.TotalDebit.String(), e.TotalCredit.String())
}

func (e *TrialBalanceMismatchError) Unwrap() error { return ErrConsistency }

// OverAllocationError is returned when allocation rule percentages sum above
// 100.
type OverAllocationError struct {
	TotalPercent decimal.Decimal
}

func (e *OverAllocationError) Error() string {
	return fmt.Sprintf("allocation percentages sum to %s%%, exceeding 100%%", e.TotalPercent.String())
}

func (e *OverAllocationError) Unwrap() error { return ErrValidation }

// InsufficientBudgetError is returned when a transfer's amount exceeds the
// source budget's remaining allocation at approval time. The transfer stays
// pending; it is never auto-rejected.
type InsufficientBudgetError struct {
	BudgetID  string
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *InsufficientBudgetError) Error() string {
	return fmt.Sprintf("budget %s has %s remaining, transfer of %s not approvable", e.BudgetID, e.Remaining.String(), e.Requested.String())
}

func (e *InsufficientBudgetError) Unwrap() error { return ErrConflict }

// BalanceDriftError signals that a full replay of a ledger's postings does
// not reproduce its incrementally maintained balance.
type BalanceDriftError struct {
	LedgerID string
	Stored   decimal.Decimal
	Replayed decimal.Decimal
}

func (e *BalanceDriftError) Error() string {
	return fmt.Sprintf("ledger %s balance drift: stored %s, replayed %s", e.LedgerID, e.Stored.String(), e.Replayed.String())
}

func (e *BalanceDriftError) Unwrap() error { return ErrConsistency }
