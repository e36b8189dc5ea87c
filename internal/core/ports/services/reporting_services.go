package services

import (
	"context"
	"time"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
)

// BalanceSvc defines balance queries and the balance repair flow
type BalanceSvc interface {
	// GetBalance returns a ledger's balance, current or as of a past date.
	// Point-in-time balances are replayed from the posting history.
	GetBalance(ctx context.Context, ledgerID string, asOf *time.Time) (*domain.LedgerBalance, error)

	// RecomputeBalance replays a ledger's full posting history and compares the
	// result with the stored balance, optionally repairing a drift.
	RecomputeBalance(ctx context.Context, ledgerID string, repair bool, userID string) (*dto.RecomputeResponse, error)
}

// TrialBalanceSvc defines trial balance report generation
type TrialBalanceSvc interface {
	// TrialBalance generates a trial balance report as of a specific date.
	// When the normalized debit and credit totals disagree it returns a
	// TrialBalanceMismatchError instead of a report.
	TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error)
}
