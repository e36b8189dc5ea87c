package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/cache"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
	"github.com/fincore-erp/gl_budget_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// balanceService answers balance queries and runs the balance repair flow.
// Current balances are served from a short-lived cache that posting writers
// invalidate; point-in-time balances are always replayed.
type balanceService struct {
	BaseService
	chartRepo    portsrepo.ChartRepositoryFacade
	journalRepo  portsrepo.JournalRepositoryFacade
	balanceCache cache.Cache[string, decimal.Decimal]
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(chartRepo portsrepo.ChartRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade, balanceCache cache.Cache[string, decimal.Decimal]) portssvc.BalanceSvc {
	if balanceCache == nil {
		balanceCache = cache.NoopCache[string, decimal.Decimal]{}
	}
	return &balanceService{
		chartRepo:    chartRepo,
		journalRepo:  journalRepo,
		balanceCache: balanceCache,
	}
}

// Ensure balanceService implements the portssvc.BalanceSvc interface
var _ portssvc.BalanceSvc = (*balanceService)(nil)

// GetBalance returns a ledger's balance, current or as of a past date.
func (s *balanceService) GetBalance(ctx context.Context, ledgerID string, asOf *time.Time) (*domain.LedgerBalance, error) {
	if asOf == nil {
		now := time.Now().UTC()
		if cached, ok := s.balanceCache.Get(ledgerID); ok {
			return &domain.LedgerBalance{LedgerID: ledgerID, AsOf: now, Balance: cached}, nil
		}

		ledger, err := s.chartRepo.FindLedgerByID(ctx, ledgerID)
		if err != nil {
			return nil, err
		}
		s.balanceCache.Set(ledgerID, ledger.CurrentBalance)
		return &domain.LedgerBalance{LedgerID: ledgerID, AsOf: now, Balance: ledger.CurrentBalance}, nil
	}

	balance, _, err := s.replayBalance(ctx, ledgerID, *asOf)
	if err != nil {
		return nil, err
	}
	return &domain.LedgerBalance{LedgerID: ledgerID, AsOf: *asOf, Balance: balance}, nil
}

// replayBalance rebuilds a ledger's balance from its opening balance and all
// lines posted up to the cutoff.
func (s *balanceService) replayBalance(ctx context.Context, ledgerID string, asOf time.Time) (decimal.Decimal, *domain.AccountLedger, error) {
	ledger, err := s.chartRepo.FindLedgerByID(ctx, ledgerID)
	if err != nil {
		return decimal.Zero, nil, err
	}

	lines, err := s.journalRepo.FindLinesByLedgerIDUpTo(ctx, ledgerID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch lines for balance replay", slog.String("ledger_id", ledgerID))
		return decimal.Zero, nil, fmt.Errorf("failed to replay balance: %w", err)
	}

	return accounting.ApplyLines(ledger.OpeningBalance, ledger.BalanceType, lines), ledger, nil
}

// RecomputeBalance replays a ledger's full posting history and compares the
// result with the stored balance. With repair set, a drifted stored balance is
// overwritten by the replayed one.
func (s *balanceService) RecomputeBalance(ctx context.Context, ledgerID string, repair bool, userID string) (*dto.RecomputeResponse, error) {
	now := time.Now().UTC()
	replayed, ledger, err := s.replayBalance(ctx, ledgerID, now)
	if err != nil {
		return nil, err
	}

	resp := &dto.RecomputeResponse{
		LedgerID: ledgerID,
		Stored:   ledger.CurrentBalance,
		Replayed: replayed,
		Drifted:  !ledger.CurrentBalance.Equal(replayed),
	}

	if !resp.Drifted {
		s.LogDebug(ctx, "Balance replay matches stored balance", slog.String("ledger_id", ledgerID))
		return resp, nil
	}

	driftErr := &apperrors.BalanceDriftError{
		LedgerID: ledgerID,
		Stored:   ledger.CurrentBalance,
		Replayed: replayed,
	}
	s.LogError(ctx, driftErr, "Stored balance drifted from posting history", slog.String("ledger_id", ledgerID))

	if !repair {
		return resp, nil
	}

	if err := s.chartRepo.SetLedgerBalance(ctx, ledgerID, replayed, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to repair drifted balance", slog.String("ledger_id", ledgerID))
		return nil, fmt.Errorf("failed to repair balance: %w", err)
	}
	s.balanceCache.Delete(ledgerID)
	resp.Repaired = true

	s.LogInfo(ctx, "Drifted balance repaired",
		slog.String("ledger_id", ledgerID),
		slog.String("stored", resp.Stored.String()),
		slog.String("replayed", replayed.String()),
	)
	return resp, nil
}
