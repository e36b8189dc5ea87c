package repositories

import (
	"context"
	"time"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data
type ReportingRepository interface {
	// GetLedgerBalancesAsOf retrieves every active ledger's signed balance as
	// of a date, replayed from posted journal lines over the opening balance.
	GetLedgerBalancesAsOf(ctx context.Context, asOf time.Time) ([]domain.LedgerBalanceSnapshot, error)
}
